package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/onboard"
	"github.com/aretw0/onboard/internal/config"
	"github.com/aretw0/onboard/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/onboard/pkg/adapters/redis"
	"github.com/aretw0/onboard/pkg/adapters/slack"
	"github.com/aretw0/onboard/pkg/tutorial"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the event callback server",
	Long: `Loads the tutorial template, provisions the configured teams and serves
platform callbacks on POST /events until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}

		// A missing or broken template is fatal: nothing could be sent.
		tmpl, err := tutorial.Load(cfg.TemplatePath)
		if err != nil {
			return fmt.Errorf("cannot start without a tutorial template: %w", err)
		}

		opts := []onboard.Option{
			onboard.WithLogger(logger),
			onboard.WithDispatchTimeout(cfg.Dispatch.Timeout),
		}

		switch cfg.Dedup.Backend {
		case config.DedupRedis:
			dedup := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				redisAdapter.WithPrefix(cfg.Redis.Prefix))
			defer dedup.Close()
			if err := dedup.Ping(cmd.Context()); err != nil {
				// Dedup fails open, so an unreachable redis only loses redelivery detection.
				logger.Warn("Redis unreachable, redeliveries may be processed twice", "addr", cfg.Redis.Addr, "err", err)
			}
			opts = append(opts, onboard.WithDeduplicator(dedup, cfg.Dedup.TTL))
		case config.DedupNone:
			opts = append(opts, onboard.WithDeduplicator(nil, 0))
		default:
			opts = append(opts, onboard.WithDeduplicator(memory.NewDeduplicator(), cfg.Dedup.TTL))
		}

		if cfg.Metrics.Enabled {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			opts = append(opts, onboard.WithMetrics(reg))
		}

		bot, err := onboard.New(cfg.VerificationToken, tmpl, opts...)
		if err != nil {
			return err
		}

		if err := install(cmd.Context(), bot, cfg, logger); err != nil {
			return err
		}

		return serve(cmd.Context(), bot, cfg, logger)
	},
}

// install provisions every configured team with a Web API client.
func install(ctx context.Context, bot *onboard.Bot, cfg *config.Config, logger *slog.Logger) error {
	for _, team := range cfg.InstalledTeams() {
		var clientOpts []slack.Option
		if cfg.Slack.APIURL != "" {
			clientOpts = append(clientOpts, slack.WithAPIURL(cfg.Slack.APIURL))
		}
		clientOpts = append(clientOpts, slack.WithDebug(cfg.Slack.Debug))
		client := slack.New(team.BotToken, clientOpts...)

		botUserID := team.BotUserID
		if botUserID == "" {
			id, err := client.BotUserID(ctx)
			if err != nil {
				return fmt.Errorf("team %s: cannot resolve bot user: %w", team.Key(), err)
			}
			botUserID = id
		}

		if err := bot.Install(ctx, team.Key(), botUserID, client); err != nil {
			return err
		}
		logger.Info("Team installed", "team_id", team.Key(), "bot_user_id", botUserID)
	}
	return nil
}

func serve(ctx context.Context, bot *onboard.Bot, cfg *config.Config, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: bot.Handler(),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("Starting onboard server", "addr", srv.Addr, "template", cfg.TemplatePath, "version", onboard.Version)
		serverErrors <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Shutdown started")

		// Give outstanding requests and handlers a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				logger.Error("Error killing server", "err", err)
			}
		}
		if err := bot.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Dropping in-flight events", "err", err)
		}
		logger.Info("Onboard server stopped gracefully")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	flags := serveCmd.Flags()
	flags.StringP("addr", "a", ":3000", "Address to listen on")
	flags.String("verification-token", "", "Token expected on every callback (or ONBOARD_VERIFICATION_TOKEN)")
	flags.String("dedup", config.DedupMemory, "Redelivery filter backend (memory, redis, none)")
	flags.Bool("metrics", true, "Serve Prometheus metrics on /metrics")

	mustBind("server.addr", flags.Lookup("addr"))
	mustBind("verification_token", flags.Lookup("verification-token"))
	mustBind("dedup.backend", flags.Lookup("dedup"))
	mustBind("metrics.enabled", flags.Lookup("metrics"))
}
