package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/renaix/chat-client/internal/config"
	"github.com/renaix/chat-client/internal/events"
	"github.com/renaix/chat-client/internal/logger"
	"github.com/renaix/chat-client/internal/stub"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Development: cfg.Dev})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	defer log.Sync()

	var prod *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		topic := cfg.Kafka.Topic
		if topic == "" {
			topic = "chat.negotiation"
		}
		prod = events.NewProducer(cfg.Kafka.Brokers, topic)
		defer prod.Close()
		log.Infow("kafka events enabled", "brokers", cfg.Kafka.Brokers, "topic", topic)
	}

	srv := stub.New(stub.Options{Logger: log, Events: prod, Seed: cfg.Stub.SeedFixtures})

	addr := fmt.Sprintf(":%d", cfg.Stub.Port)
	go func() {
		log.Infow("stub api listening", "addr", addr)
		if err := srv.App().Listen(addr); err != nil {
			log.Fatalw("server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown requested")
	_ = srv.App().Shutdown()
	log.Info("stub api stopped")
}
