package main

import (
	"context"

	"github.com/spf13/cobra"

	"StockPulse/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "app",
		Short:         "StockPulse stock snapshot reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "config file path")

	load := func() (*config.Config, error) {
		return config.LoadWithEnv(configPath)
	}
	root.AddCommand(serveCmd(load))
	root.AddCommand(analyzeCmd(load))
	return root
}

type configLoader func() (*config.Config, error)
