package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"taskhub/internal/api"
	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/deadline"
	"taskhub/internal/hub"
	"taskhub/internal/scheduler"
	"taskhub/internal/store"
)

func main() {
	var (
		cfgPath = flag.String("config", "taskhub.yaml", "path to config file")
		addr    = flag.String("addr", "", "HTTP bind address (overrides config)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if cfg.Auth.Secret == "" {
		log.Fatal().Msg("auth.secret is required (set it in the config file or TASKHUB_AUTH_SECRET)")
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("open store")
	}
	defer st.Close()

	notifHub := hub.New()
	authMgr := auth.NewManager(cfg.Auth.Secret, cfg.TokenTTL())

	// Each firing gets a fresh scanner over the shared store handle.
	scan := func(ctx context.Context) (int, error) {
		return deadline.NewScanner(st, st, notifHub, cfg.Deadline.Thresholds, nil).Run(ctx)
	}
	sched, err := scheduler.New(cfg.Deadline.CronExpr, cfg.Deadline.Timezone, cfg.ShutdownGrace(), scan)
	if err != nil {
		log.Fatal().Err(err).Msg("init scheduler")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go sched.Start(ctx)

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewServer(st, authMgr, notifHub, sched, api.Options{
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
		}),
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info().Msg("shutting down")

	sched.Stop()
	notifHub.Shutdown()
	cancel()

	ctxTimeout, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()
	_ = srv.Shutdown(ctxTimeout)
}
