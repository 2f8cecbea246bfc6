package scheduler

import (
	"context"
	"fmt"

	"dialer_backend/internal/dnc"
	"dialer_backend/internal/leads/service"
	"dialer_backend/platform/config"
	"dialer_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// NumberLookup checks a single phone number against the DNC registry.
type NumberLookup interface {
	Lookup(ctx context.Context, phoneNumber string) (bool, error)
}

// Worker consumes dialer background tasks: call-outcome persistence and
// per-number DNC re-verification.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	leads  *service.Service
	lookup NumberLookup
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, leads *service.Service, lookup NumberLookup, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		leads:  leads,
		lookup: lookup,
		log:    log,
	}

	mux.HandleFunc(TaskRecordCallOutcome, w.handleRecordCallOutcome)
	mux.HandleFunc(TaskDNCReverify, w.handleDNCReverify)

	return w, nil
}

func (w *Worker) handleRecordCallOutcome(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRecordCallOutcomePayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	return w.leads.RecordOutcome(ctx, leadID, payload.Outcome, payload.DurationSeconds, payload.Notes, payload.EndedAt)
}

func (w *Worker) handleDNCReverify(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDNCReverifyPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	if w.lookup == nil {
		w.log.Warn("dnc reverify skipped: no registry lookup configured", "leadId", payload.LeadID)
		return nil
	}

	listed, err := w.lookup.Lookup(ctx, payload.Phone)
	if err != nil {
		return err
	}

	return w.leads.SetDoNotCall(ctx, leadID, listed)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// Compile-time check that the dnc client satisfies the lookup port.
var _ NumberLookup = (*dnc.Client)(nil)
