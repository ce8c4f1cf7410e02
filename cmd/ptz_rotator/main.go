package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/w1xm/ptz_interface/internal/config"
	"github.com/w1xm/ptz_interface/jpth"
	"github.com/w1xm/ptz_interface/rotctld"
)

var configPath = flag.String("config", "config.yaml", "path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := jpth.NewClient(cfg.Motor.URL, cfg.Motor.Timeout.Duration())
	server := NewServer(nil, cfg.Motor.Mount)
	keeper := jpth.NewKeeper(client, cfg.Keeper.Period.Duration(), server.statusCallback)
	server.r = keeper

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return keeper.Run(ctx)
	})
	g.Go(func() error {
		return rotctld.NewServer(keeper, cfg.Motor.Mount).Listen(ctx, cfg.Listen.Rotctld)
	})
	if cfg.Listen.HTTP != "" {
		g.Go(func() error {
			return server.ListenHTTP(ctx, cfg.Listen.HTTP)
		})
	}

	log.Printf("position keeper running against %s", cfg.Motor.URL)
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatal(err)
	}
	log.Print("shutdown complete")
}
