package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/queue/streams"
	"github.com/mohammad-safakhou/scout/internal/research"
	"github.com/mohammad-safakhou/scout/internal/research/sources"
	"github.com/mohammad-safakhou/scout/internal/store"
	"github.com/mohammad-safakhou/scout/internal/worker"
	"github.com/mohammad-safakhou/scout/provider"
)

func workerCMD() *cobra.Command {
	var cfgPath string
	var cmd = &cobra.Command{
		Use:   "worker",
		Short: "Run research job worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
			if err != nil {
				return fmt.Errorf("worker store init: %w", err)
			}

			llm, err := provider.NewProvider(cfg.LLM)
			if err != nil {
				return fmt.Errorf("worker provider init: %w", err)
			}

			redisAddr := fmt.Sprintf("%s:%s", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port)
			rdb := redis.NewClient(&redis.Options{Addr: redisAddr, Password: cfg.Storage.Redis.Password, DB: cfg.Storage.Redis.DB})
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("worker redis ping: %w", err)
			}
			defer func() { _ = rdb.Close() }()

			if err := streams.EnsureGroup(ctx, rdb, cfg.Queue.Stream, cfg.Queue.Group); err != nil {
				return fmt.Errorf("worker ensure group: %w", err)
			}

			consumerName := fmt.Sprintf("worker-%s", uuid.NewString()[:8])
			consumer := streams.NewConsumer(rdb, cfg.Queue.Group, consumerName)

			orch := research.NewOrchestrator(
				st,
				research.NewExpander(llm, cfg.Pipeline.MaxKeywords),
				research.NewSummarizer(llm),
				[]research.Source{
					sources.NewWikipedia(cfg.Sources.Wikipedia, cfg.Sources.Timeout),
					sources.NewNewsAPI(cfg.Sources.NewsAPI, cfg.Sources.Timeout),
					sources.NewHackerNews(cfg.Sources.HackerNews, cfg.Sources.Timeout),
				},
				cfg.Pipeline.TopK,
				cfg.Pipeline.FanoutTimeout,
			)

			logger := log.New(os.Stdout, "[WORKER] ", log.LstdFlags)
			processor := worker.NewProcessor(logger, orch, consumer, cfg.Queue.Stream,
				otel.Meter("scout/worker"), otel.Tracer("scout/worker"))

			return processor.Start(ctx)
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}
