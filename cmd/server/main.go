package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avolkov/linechat-server/internal/app"
	"github.com/avolkov/linechat-server/internal/auth"
	"github.com/avolkov/linechat-server/internal/config"
	"github.com/avolkov/linechat-server/internal/log"
)

func main() {
	var (
		configPath string
		overrides  config.Config
		logLevel   string
	)

	root := &cobra.Command{
		Use:          "linechat-server",
		Short:        "Multi-room line-protocol chat server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.New(logLevel)

			cfg, path, err := config.Load(logger, configPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(overrides)
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger = log.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info().
				Str("config", path).
				Str("chat_addr", cfg.ChatAddr).
				Str("http_addr", cfg.HTTPAddr).
				Msg("starting linechat server")

			if err := app.New(cfg, logger).Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to config.yaml")
	root.Flags().StringVar(&overrides.ChatAddr, "addr", "", "TCP chat listen address")
	root.Flags().StringVar(&overrides.HTTPAddr, "http-addr", "", "admin API / WebSocket listen address")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	hashSecret := &cobra.Command{
		Use:   "hash-secret <passphrase>",
		Short: "Print a bcrypt hash of a VIP passphrase for vip_secret in config.yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashSecret(args[0])
			if err != nil {
				return err
			}
			cmd.Println(hash)
			return nil
		},
	}
	root.AddCommand(hashSecret)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
