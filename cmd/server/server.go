package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/securecode-ai/securecode/internal/api"
	"github.com/securecode-ai/securecode/internal/classifier"
	"github.com/securecode-ai/securecode/internal/detect"
	"github.com/securecode-ai/securecode/internal/gateway"
	"github.com/securecode-ai/securecode/internal/queue"
	"github.com/securecode-ai/securecode/internal/results"
	"github.com/securecode-ai/securecode/internal/scans"
	"github.com/securecode-ai/securecode/internal/worker"
	"github.com/securecode-ai/securecode/internal/ws"
	"github.com/securecode-ai/securecode/pkg/shared/config"
	"github.com/securecode-ai/securecode/pkg/shared/httpclient"
	"github.com/securecode-ai/securecode/pkg/shared/logger"
)

var AppConfig *config.Config

// Init stores the global configuration for the command.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewServerCmd creates the serve command: HTTP API, websocket push layer and
// an in-process worker pool on the shared analysis stream.
func NewServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "server",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Run the analysis API with websocket push and an embedded worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(AppConfig)
		},
	}
}

func runServer(cfg *config.Config) error {
	log := logger.NewLogger(cfg, "server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	svc := newClassifier(cfg, log)
	engine := detect.NewEngine(svc, cfg.Classifier.Threshold, cfg.Classifier.Timeout, log.Named("detect"))

	analysisQueue := queue.NewRedis(rdb, cfg.Queue.Stream, log.Named("queue"))
	resultStore := results.NewRedis(rdb)
	scanStore := scans.NewMemory()

	gw := gateway.New(engine, analysisQueue, resultStore, scanStore, cfg.Results.TTL, log.Named("gateway"))

	hub := ws.NewHub(log.Named("ws"))
	wsHandler := ws.NewHandler(hub, log.Named("ws"))

	pool := worker.New(analysisQueue, engine, resultStore, hub, worker.Options{
		Group:         cfg.Queue.Group,
		Consumers:     cfg.Worker.Consumers,
		BatchSize:     int64(cfg.Worker.BatchSize),
		BlockTimeout:  cfg.Worker.BlockTimeout,
		RetryDelay:    cfg.Worker.RetryDelay,
		ClaimInterval: cfg.Worker.ClaimInterval,
		ClaimMinIdle:  cfg.Worker.ClaimMinIdle,
		ResultTTL:     cfg.Results.TTL,
	}, log.Named("worker"))

	poolDone := make(chan struct{})
	go func() {
		defer close(poolDone)
		if err := pool.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("worker pool stopped", "error", err)
		}
	}()

	apiServer := api.NewServer(gw, hub, log.Named("api"))
	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: apiServer.Routes(wsHandler),
	}

	httpDone := make(chan error, 1)
	go func() {
		log.Info("listening", "address", cfg.Server.Address)
		httpDone <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-httpDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	<-poolDone
	return nil
}

// newClassifier builds the injected classifier handle: an HTTP client when a
// model URL is configured, the explicit disabled variant otherwise.
func newClassifier(cfg *config.Config, log hclog.Logger) classifier.Service {
	if cfg.Classifier.URL == "" {
		log.Info("no classifier configured, running pattern-only")
		return classifier.Disabled()
	}
	httpc := httpclient.InitializeRestyClient(log.Named("classifier"), cfg)
	return classifier.NewHTTPService(httpc, cfg.Classifier.URL, log.Named("classifier"))
}
