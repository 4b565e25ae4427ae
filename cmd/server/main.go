package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-esign-auth/actions"
	"github.com/jrsteele09/go-esign-auth/auth"
	"github.com/jrsteele09/go-esign-auth/internal/config"
	"github.com/jrsteele09/go-esign-auth/server"
	"github.com/jrsteele09/go-esign-auth/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const janitorInterval = time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	setupLogging(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	for _, warning := range c.Warnings() {
		log.Warn().Msg(warning)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := sessions.NewInMemoryRepo(c.GetMaxSessionAge())
	authService, err := auth.NewAuthorizationService(ctx, c, repo)
	if err != nil {
		return err
	}
	registry := actions.NewRegistry(actions.SettingsFromConfig(c))

	handler, err := server.New(c, authService, repo, registry)
	if err != nil {
		return err
	}

	go sessionJanitor(ctx, repo, janitorInterval)

	httpServer := &http.Server{
		Addr:              c.GetAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()
	log.Info().Str("url", c.GetBaseURL()).Msg("Open the examples in your browser")

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	return shutdown(httpServer)
}

func setupLogging(env, level string) {
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if lvl, err := zerolog.ParseLevel(level); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
	// Code running outside a request still logs through the global logger.
	zerolog.DefaultContextLogger = &log.Logger
}

// sessionJanitor removes expired sessions until ctx is done.
func sessionJanitor(ctx context.Context, repo sessions.Repo, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteExpired(now)
			if err != nil {
				log.Warn().Err(err).Msg("session cleanup failed")
				continue
			}
			if n > 0 {
				log.Debug().Int("removed", n).Msg("expired sessions removed")
			}
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
