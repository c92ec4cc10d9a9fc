package scheduler

import (
	"context"
	"fmt"

	"heatsurvey_backend/internal/heatloss"
	"heatsurvey_backend/platform/apperr"
	"heatsurvey_backend/platform/config"
	"heatsurvey_backend/platform/logger"
	"heatsurvey_backend/platform/metrics"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	recalculator heatloss.Recalculator
	metrics      *metrics.Metrics
	log          *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, recalculator heatloss.Recalculator, m *metrics.Metrics, log *logger.Logger) (*Worker, error) {
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
		server:       server,
		mux:          mux,
		recalculator: recalculator,
		metrics:      m,
		log:          log,
	}

	mux.HandleFunc(TaskHeatLossRecalculate, w.handleHeatLossRecalculate)

	return w, nil
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

// handleHeatLossRecalculate re-evaluates one survey. Missing surveys and
// malformed payloads are not retried.
func (w *Worker) handleHeatLossRecalculate(ctx context.Context, task *asynq.Task) (err error) {
	defer func() {
		w.metrics.Job(TaskHeatLossRecalculate, err)
		if err != nil {
			w.log.WithContext(ctx).JobFailed(TaskHeatLossRecalculate, err)
		}
	}()

	payload, err := ParseHeatLossRecalculatePayload(task)
	if err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	orgID, surveyID, err := payload.IDs()
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.recalculator.Recalculate(ctx, orgID, surveyID); err != nil {
		switch apperr.GetKind(err) {
		case apperr.KindNotFound, apperr.KindValidation:
			return fmt.Errorf("recalculate survey %s: %v: %w", surveyID, err, asynq.SkipRetry)
		default:
			return fmt.Errorf("recalculate survey %s: %w", surveyID, err)
		}
	}
	return nil
}
