package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qpaper/qpaper/internal/app"
)

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.log.Info("starting tui", zap.String("api", rt.cfg.API.BaseURL))

	return app.Run(app.Options{
		Client:    rt.client,
		EventRepo: rt.store.EventRepo(),
		Logger:    rt.log,
		Status:    rt.apiHost(),
	})
}
