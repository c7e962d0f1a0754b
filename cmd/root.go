package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qpaper/qpaper/internal/api"
	"github.com/qpaper/qpaper/internal/config"
	"github.com/qpaper/qpaper/internal/logging"
	"github.com/qpaper/qpaper/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "qpaper",
	Short: "Terminal client for the Question Paper Generator",
	Long: "qpaper creates exams, generates questions for their sections with the " +
		"Question Paper Generator service, and lets you review and edit them.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides QPAPER_CONFIG env var)")
	rootCmd.PersistentFlags().String("api-url", "", "Base URL of the exam service (overrides QPAPER_API_URL env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite request log (overrides QPAPER_DB env var)")

	rootCmd.AddCommand(examsCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies flags,
// which take the highest priority.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.API.BaseURL = u
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the request log location from flags, environment
// and config file.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	return cfg.ResolveDBPath()
}

// runtime holds the dependencies shared by the TUI and the API subcommands.
type runtime struct {
	cfg    config.Config
	log    *zap.Logger
	store  *store.Store
	client api.Client
}

// openRuntime loads configuration and opens the logger, request log and API
// client. Callers must Close it.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}

	client, err := api.NewClient(cfg.API, st.EventRepo(), log)
	if err != nil {
		st.Close()
		log.Sync()
		return nil, err
	}

	log.Debug("runtime ready",
		zap.String("api", cfg.API.BaseURL),
		zap.String("db", dbPath))

	return &runtime{cfg: cfg, log: log, store: st, client: client}, nil
}

func (r *runtime) Close() {
	r.store.Close()
	r.log.Sync()
}

// apiHost is the short form of the API URL shown in the TUI header.
func (r *runtime) apiHost() string {
	u, err := url.Parse(r.cfg.API.BaseURL)
	if err != nil || u.Host == "" {
		return r.cfg.API.BaseURL
	}
	return u.Host
}
