package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/halvets/tunerank/config"
	"github.com/halvets/tunerank/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.New()

	srv, err := server.New(cfg)
	if err != nil {
		panic(err)
	}

	if err := srv.Start(); err != nil {
		panic(err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		os.Exit(1)
	}
}
