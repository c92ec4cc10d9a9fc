package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"heatsurvey_backend/internal/heatloss/repository"
	"heatsurvey_backend/platform/logger"
)

const (
	defaultStaleScanInterval = time.Minute
	staleScanBatchSize       = 50
)

// StaleSurveyLister finds surveys whose evaluation is out of date.
type StaleSurveyLister interface {
	ListStaleSurveys(ctx context.Context, limit int) ([]repository.SurveyRef, error)
}

// RecalculationEnqueuer queues a heat-loss recalculation.
type RecalculationEnqueuer interface {
	EnqueueRecalculation(ctx context.Context, orgID, surveyID uuid.UUID) error
}

// StaleSurveyDispatcher polls for surveys edited since their last evaluation
// and queues a recalculation for each.
type StaleSurveyDispatcher struct {
	surveys  StaleSurveyLister
	enqueuer RecalculationEnqueuer
	log      *logger.Logger
	interval time.Duration
}

func NewStaleSurveyDispatcher(surveys StaleSurveyLister, enqueuer RecalculationEnqueuer, log *logger.Logger, interval time.Duration) *StaleSurveyDispatcher {
	if interval <= 0 {
		interval = defaultStaleScanInterval
	}
	return &StaleSurveyDispatcher{
		surveys:  surveys,
		enqueuer: enqueuer,
		log:      log,
		interval: interval,
	}
}

func (d *StaleSurveyDispatcher) Run(ctx context.Context) {
	if d == nil || d.surveys == nil || d.enqueuer == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.dispatch(ctx)
	}
}

func (d *StaleSurveyDispatcher) dispatch(ctx context.Context) int {
	refs, err := d.surveys.ListStaleSurveys(ctx, staleScanBatchSize)
	if err != nil {
		d.log.Warn("stale survey scan failed", "error", err)
		return 0
	}

	queued := 0
	for _, ref := range refs {
		if err := d.enqueuer.EnqueueRecalculation(ctx, ref.OrganizationID, ref.SurveyID); err != nil {
			d.log.Warn("failed to queue heat-loss recalculation", "surveyId", ref.SurveyID, "error", err)
			continue
		}
		queued++
	}
	if queued > 0 {
		d.log.Info("queued heat-loss recalculations for stale surveys", "count", queued)
	}
	return queued
}
