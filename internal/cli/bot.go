package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/example/vocabquiz/internal/bot"
	"github.com/example/vocabquiz/internal/database"
	"github.com/example/vocabquiz/internal/metrics"
	"github.com/example/vocabquiz/internal/scheduler"
)

func newBotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Serve the quiz as a Telegram bot",
		Long: `Serve the quiz as a Telegram bot. The token is read from
telegram.token, VOCABQUIZ_TELEGRAM_TOKEN or TELEGRAM_BOT_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runBot(ctx)
		},
	}
}

func (a *app) runBot(ctx context.Context) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	vocab, err := a.vocabulary(ctx, db)
	if err != nil {
		return err
	}
	bookmarkRepo := database.NewBookmarkRepository(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(reg)

	botCfg := bot.DefaultConfig()
	botCfg.Token = a.cfg.Telegram.Token
	botCfg.AdminIDs = a.cfg.Telegram.AdminIDs
	botCfg.ChatIdleTTL = a.cfg.Telegram.ChatIdleTTL
	botCfg.Quiz = a.cfg.QuizConfig()
	botCfg.QuickSize = a.cfg.Quiz.QuickSize

	b, err := bot.New(ctx, botCfg, bot.Deps{
		Catalog:   vocab,
		Bookmarks: bookmarkRepo,
		Results:   database.NewSessionResultRepository(db),
		Observer:  recorder,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}

	if a.cfg.Scheduler.Enabled {
		s := scheduler.New(bookmarkRepo, b, a.logger)
		if err := s.Start(a.cfg.Scheduler.ReminderTime); err != nil {
			return err
		}
		defer s.Stop()
	}

	if a.cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		srv := &http.Server{
			Addr:              a.cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.logger.Info("serving metrics", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return b.Start(ctx)
}
