package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/renaix/chat-client/internal/api"
	"github.com/renaix/chat-client/internal/cache"
	"github.com/renaix/chat-client/internal/config"
	"github.com/renaix/chat-client/internal/logger"
	"github.com/renaix/chat-client/internal/repository"
	"github.com/renaix/chat-client/internal/session"
)

var (
	flagConfig string
	flagToken  string
	flagUserID int

	appLog *zap.SugaredLogger
	repo   repository.ChatRepository
)

var rootCmd = &cobra.Command{
	Use:   "chatctl",
	Short: "Renaix chat and price negotiation from the terminal",
	Long: "chatctl drives the Renaix messaging API: conversations, threads,\n" +
		"unread messages, and the offer / counter-offer negotiation flow.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		appLog, err = logger.New(logger.Config{Development: cfg.Dev})
		if err != nil {
			return err
		}

		tokens, err := tokenProvider(cfg)
		if err != nil {
			return err
		}
		warnIfExpiring(tokens)

		client := api.NewClient(api.Options{
			BaseURL:            cfg.API.BaseURL,
			Timeout:            cfg.Timeout,
			RetryMaxElapsed:    cfg.RetryMaxElapsed,
			RatePerSecond:      cfg.API.RatePerSecond,
			BreakerMaxFailures: cfg.API.BreakerMaxFailures,
			BreakerTimeout:     cfg.BreakerTimeout,
			Tokens:             tokens,
			Logger:             appLog,
		})
		repo = repository.New(client, appLog)

		if cfg.Redis.Addr != "" {
			cc, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.CacheTTL)
			if err != nil {
				appLog.Warnw("redis unavailable, running uncached", "err", err)
			} else {
				repo = repository.NewCached(repo, cc, appLog)
			}
		}
		return nil
	},
}

func tokenProvider(cfg *config.Config) (session.TokenProvider, error) {
	if flagToken != "" {
		return session.Static(flagToken), nil
	}
	if cfg.Auth.Token != "" {
		return session.Static(cfg.Auth.Token), nil
	}
	if cfg.Auth.TokenFile != "" {
		return session.File(cfg.Auth.TokenFile), nil
	}
	return nil, errors.New("no session token: set --token, auth.token or auth.token_file")
}

func warnIfExpiring(tokens session.TokenProvider) {
	tok, err := tokens.Token()
	if err != nil {
		return
	}
	soon, err := session.ExpiresWithin(tok, 5*time.Minute)
	if err == nil && soon {
		appLog.Warn("session token expires within 5 minutes, log in again soon")
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "bearer token (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagUserID, "user", 0, "current user id, used for display only")

	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(threadCmd)
	rootCmd.AddCommand(unreadCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(markReadCmd)
	rootCmd.AddCommand(offerCmd)
	rootCmd.AddCommand(acceptCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(counterCmd)
	rootCmd.AddCommand(watchCmd)
}
