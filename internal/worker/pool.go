package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/securecode-ai/securecode/internal/detect"
	"github.com/securecode-ai/securecode/internal/queue"
	"github.com/securecode-ai/securecode/internal/results"
)

// Notifier pushes a completed analysis to the live sessions of a client.
// The websocket hub satisfies it; standalone workers use Discard.
type Notifier interface {
	Broadcast(clientID string, message interface{})
}

type discardNotifier struct{}

func (discardNotifier) Broadcast(clientID string, message interface{}) {}

// Discard returns a Notifier that drops every message.
func Discard() Notifier {
	return discardNotifier{}
}

// resultMessage is the push payload for a finished analysis.
type resultMessage struct {
	Type            string           `json:"type"`
	AnalysisID      string           `json:"analysis_id"`
	Status          string           `json:"status"`
	Vulnerabilities []detect.Finding `json:"vulnerabilities"`
}

// Options tunes the pool. Zero values fall back to the defaults the stream
// contract assumes.
type Options struct {
	Group         string
	Consumers     int
	BatchSize     int64
	BlockTimeout  time.Duration
	RetryDelay    time.Duration
	ClaimInterval time.Duration
	ClaimMinIdle  time.Duration
	ResultTTL     time.Duration
}

func (o *Options) applyDefaults() {
	if o.Group == "" {
		o.Group = "analysis_workers"
	}
	if o.Consumers <= 0 {
		o.Consumers = 1
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.BlockTimeout <= 0 {
		o.BlockTimeout = time.Second
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}
	if o.ClaimInterval <= 0 {
		o.ClaimInterval = 10 * time.Second
	}
	if o.ClaimMinIdle <= 0 {
		o.ClaimMinIdle = 30 * time.Second
	}
	if o.ResultTTL <= 0 {
		o.ResultTTL = time.Hour
	}
}

// Pool runs N independent consumers on one consumer group. Consumers share
// nothing beyond the queue's delivery guarantee: each blocks on a batch
// read, runs detection, persists the outcome, notifies the push layer and
// only then acknowledges. A failed entry stays pending and is reclaimed
// later through the idle-based claim pass.
type Pool struct {
	queue    queue.Queue
	engine   *detect.Engine
	results  results.Store
	notifier Notifier
	opts     Options
	logger   hclog.Logger
}

// New creates a worker pool. Pass Discard() when no push layer is attached.
func New(q queue.Queue, engine *detect.Engine, store results.Store, notifier Notifier, opts Options, logger hclog.Logger) *Pool {
	opts.applyDefaults()
	if notifier == nil {
		notifier = Discard()
	}
	return &Pool{
		queue:    q,
		engine:   engine,
		results:  store,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// Run blocks until ctx is canceled. It ensures the consumer group exists,
// retrying while the queue is unreachable, then starts the consumers.
func (p *Pool) Run(ctx context.Context) error {
	for {
		err := p.queue.EnsureGroup(ctx, p.opts.Group)
		if err == nil {
			break
		}
		p.logger.Error("ensure consumer group failed, retrying", "group", p.opts.Group, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.opts.RetryDelay):
		}
	}

	var wg sync.WaitGroup
	for i := 1; i <= p.opts.Consumers; i++ {
		consumer := fmt.Sprintf("worker-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.runConsumer(ctx, consumer)
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (p *Pool) runConsumer(ctx context.Context, consumer string) {
	logger := p.logger.Named(consumer)
	logger.Info("consumer started", "group", p.opts.Group)

	lastClaim := time.Now()
	for {
		select {
		case <-ctx.Done():
			logger.Info("consumer stopped")
			return
		default:
		}

		messages, err := p.queue.ReadGroup(ctx, p.opts.Group, consumer, p.opts.BatchSize, p.opts.BlockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("consumer stopped")
				return
			}
			logger.Error("queue read failed, backing off", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.opts.RetryDelay):
			}
			continue
		}

		for _, m := range messages {
			p.process(ctx, logger, consumer, m)
		}

		if time.Since(lastClaim) >= p.opts.ClaimInterval {
			lastClaim = time.Now()
			p.reclaim(ctx, logger, consumer)
		}
	}
}

// reclaim pulls entries another consumer left pending beyond the visibility
// timeout and processes them here.
func (p *Pool) reclaim(ctx context.Context, logger hclog.Logger, consumer string) {
	claimed, err := p.queue.Claim(ctx, p.opts.Group, consumer, p.opts.ClaimMinIdle, p.opts.BatchSize)
	if err != nil {
		logger.Error("claim failed", "error", err)
		return
	}
	if len(claimed) == 0 {
		return
	}
	logger.Info("reclaimed orphaned entries", "count", len(claimed))
	for _, m := range claimed {
		p.process(ctx, logger, consumer, m)
	}
}

// process handles one entry. Any failure is isolated: the entry is left
// unacknowledged for redelivery and the loop moves on.
func (p *Pool) process(ctx context.Context, logger hclog.Logger, consumer string, m queue.Message) {
	entry := m.Entry
	logger.Debug("processing analysis", "analysis_id", entry.AnalysisID, "file", entry.FilePath)

	findings := p.engine.Detect(ctx, entry.Code, entry.Language)
	if findings == nil {
		findings = []detect.Finding{}
	}

	outcome := results.Outcome{
		AnalysisID:  entry.AnalysisID,
		ScanID:      entry.ScanID,
		Status:      results.StatusCompleted,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
		Findings:    findings,
		Found:       len(findings),
	}

	// Ack discipline: persist first. If the save fails the entry stays
	// pending and is redelivered, trading duplicates for lost results.
	if err := p.results.SaveResult(ctx, outcome, p.opts.ResultTTL); err != nil {
		logger.Error("result save failed, leaving entry pending",
			"analysis_id", entry.AnalysisID, "entry_id", m.ID, "error", err)
		return
	}

	p.notifier.Broadcast(entry.ProjectID, resultMessage{
		Type:            "analysis_result",
		AnalysisID:      entry.AnalysisID,
		Status:          results.StatusCompleted,
		Vulnerabilities: findings,
	})

	if err := p.queue.Ack(ctx, p.opts.Group, m.ID); err != nil {
		logger.Error("ack failed, entry may be redelivered",
			"analysis_id", entry.AnalysisID, "entry_id", m.ID, "error", err)
		return
	}

	logger.Info("analysis completed",
		"analysis_id", entry.AnalysisID, "findings", len(findings), "consumer", consumer)
}
