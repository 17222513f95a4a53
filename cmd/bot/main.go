package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"settlers/internal/bot"
	"settlers/internal/config"
)

func main() {
	url := flag.String("url", "ws://localhost:30000/ws", "Server websocket URL")
	name := flag.String("name", "Bot", "Display name")
	code := flag.String("code", "", "Join code of the game to play")
	strategy := flag.String("strategy", bot.DefaultStrategy, "Rule set: builder or developer")
	token := flag.String("token", "", "Player token from an earlier session")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	slog.SetDefault(config.LogConfig{Level: *level, Format: "text"}.NewLogger(os.Stderr))

	if *code == "" {
		slog.Error("a join code is required")
		os.Exit(2)
	}

	engine, err := bot.ForStrategy(*strategy)
	if err != nil {
		slog.Error("failed to build rules", "strategy", *strategy, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := bot.Dial(ctx, *url, *name, engine)
	if err != nil {
		slog.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer client.Close()
	client.Token = *token

	if err := client.Run(ctx, *code); err != nil && ctx.Err() == nil {
		slog.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}
