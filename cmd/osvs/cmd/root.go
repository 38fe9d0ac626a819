// Package cmd provides the CLI commands for osvs.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/osvs/memberportal/internal/config"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "osvs",
	Short: "osvs - member portal client",
	Long: `osvs talks to the member portal backend from the terminal.

It keeps you logged in between runs, renews expired sessions transparently,
and shows backend failures on a short-lived error banner.

Quick start:
  1. Create a config file: osvs.yaml with backend.url
  2. Run: osvs login --email you@example.org

Configuration:
  Config is loaded from osvs.yaml in the current directory,
  $HOME/.osvs/, or /etc/osvs/. A .env file in the current directory is
  read first.

  Environment variables can override config values with the OSVS_ prefix.
  Example: OSVS_BACKEND_URL=http://localhost:3000`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./osvs.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable styled output")
}

func initConfig() {
	config.InitViper(cfgFile)
}
