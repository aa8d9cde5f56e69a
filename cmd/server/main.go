package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/config"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/httpapi"
	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/hub"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:           "trivia-server",
		Short:         "Live team trivia backend: rooms, rounds, power-ups, leaderboards.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.String("addr", ":8080", "listen address (env: TRIVIA_ADDR)")
	fs.String("base-url", "http://localhost:8080", "public base url for join links (env: TRIVIA_BASE_URL)")
	fs.Int("rounds-per-game", 10, "rounds per match (env: TRIVIA_ROUNDS_PER_GAME)")
	fs.Int("default-timer-seconds", 30, "answer window per round (env: TRIVIA_DEFAULT_TIMER_SECONDS)")
	fs.Int("players-per-team", 4, "roster size per team (env: TRIVIA_PLAYERS_PER_TEAM)")
	cobra.CheckErr(v.BindPFlags(fs))

	return cmd
}

func run(parent context.Context, v *viper.Viper) error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, cfg, log)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, cfg, log),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		h.Inbox() <- hub.ShutdownHub{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
