package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/moonhowl/onenight/cmd/onenight/shared"
	"github.com/moonhowl/onenight/internal/server"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Config string `kong:"default='onenight.hcl',help='Path to HCL config file'"`
	Addr   string `kong:"help='Server address, overrides config'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed for all sessions (optional)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel, c.Debug)

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	seed := cfg.Game.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}
	if seed != 0 {
		logger.Info("Using deterministic seed", "seed", seed)
	}

	s := server.NewServer(addr, logger)
	service := server.NewGameService(s, cfg.GameConfig(), cfg.SessionTTL(), seed, quartz.NewReal(), logger)
	s.SetGameService(service)

	logger.Info("Starting one-night server",
		"address", addr,
		"min_players", cfg.Game.MinPlayers,
		"max_players", cfg.Game.MaxPlayers,
		"discussion_seconds", cfg.Game.DiscussionSeconds,
		"session_ttl_minutes", cfg.Game.SessionTTLMinutes,
	)

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		service.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
