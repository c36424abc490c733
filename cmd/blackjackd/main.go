package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"blackjackd/internal/api"
	"blackjackd/internal/bot"
	"blackjackd/internal/config"
	"blackjackd/internal/database"
	"blackjackd/internal/player"
	"blackjackd/internal/table"
)

const (
	sweepInterval = time.Minute
	sessionTTL    = 30 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.Logging(cfg)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Info("Database connected")

	playerRepo := player.NewRepository(db.DB)
	tbl := table.New(cfg, playerRepo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		tbl.RunSweeper(ctx, sweepInterval, sessionTTL)
	}()

	if cfg.BotToken != "" {
		b, err := bot.New(cfg, tbl)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Run(ctx); err != nil {
				log.Errorf("Bot error: %v", err)
			}
		}()
	} else {
		log.Info("BOT_TOKEN not set, telegram bot disabled")
	}

	router := api.NewRouter(api.NewHandler(tbl), api.RouterOptions{
		AllowedOrigins: cfg.CORSOrigins,
		RateLimit:      cfg.RateLimit,
	})
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("blackjack service running at %s", server.Addr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown failed: %+v", err)
	}
	wg.Wait()
	log.Info("blackjack service stopped")
}
