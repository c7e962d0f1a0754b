package main

import (
	"os"

	"github.com/qpaper/qpaper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
