package worker

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/securecode-ai/securecode/internal/classifier"
	"github.com/securecode-ai/securecode/internal/detect"
	"github.com/securecode-ai/securecode/internal/queue"
	"github.com/securecode-ai/securecode/internal/results"
	"github.com/securecode-ai/securecode/internal/worker"
	"github.com/securecode-ai/securecode/pkg/shared/config"
	"github.com/securecode-ai/securecode/pkg/shared/httpclient"
	"github.com/securecode-ai/securecode/pkg/shared/logger"
)

var AppConfig *config.Config

// Init stores the global configuration for the command.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewWorkerCmd creates the standalone worker command: a consumer pool on the
// analysis stream without the HTTP surface. Results land in the result
// store; no push sessions are attached.
func NewWorkerCmd() *cobra.Command {
	var consumers int

	cmd := &cobra.Command{
		Use:                   "worker",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Run a standalone analysis worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := AppConfig
			if consumers > 0 {
				cfg.Worker.Consumers = consumers
			}
			return runWorker(cfg)
		},
	}
	cmd.Flags().IntVarP(&consumers, "consumers", "j", 0, "number of concurrent consumers (overrides config)")
	return cmd
}

func runWorker(cfg *config.Config) error {
	log := logger.NewLogger(cfg, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	engine := detect.NewEngine(
		newClassifier(cfg, log),
		cfg.Classifier.Threshold,
		cfg.Classifier.Timeout,
		log.Named("detect"),
	)

	pool := worker.New(
		queue.NewRedis(rdb, cfg.Queue.Stream, log.Named("queue")),
		engine,
		results.NewRedis(rdb),
		worker.Discard(),
		worker.Options{
			Group:         cfg.Queue.Group,
			Consumers:     cfg.Worker.Consumers,
			BatchSize:     int64(cfg.Worker.BatchSize),
			BlockTimeout:  cfg.Worker.BlockTimeout,
			RetryDelay:    cfg.Worker.RetryDelay,
			ClaimInterval: cfg.Worker.ClaimInterval,
			ClaimMinIdle:  cfg.Worker.ClaimMinIdle,
			ResultTTL:     cfg.Results.TTL,
		},
		log,
	)

	if err := pool.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newClassifier(cfg *config.Config, log hclog.Logger) classifier.Service {
	if cfg.Classifier.URL == "" {
		log.Info("no classifier configured, running pattern-only")
		return classifier.Disabled()
	}
	httpc := httpclient.InitializeRestyClient(log.Named("classifier"), cfg)
	return classifier.NewHTTPService(httpc, cfg.Classifier.URL, log.Named("classifier"))
}
