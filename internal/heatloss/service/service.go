// Package service scores heat-loss surveys, stores evaluation snapshots and
// schedules recalculations.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"heatsurvey_backend/internal/events"
	"heatsurvey_backend/internal/heatloss/confidence"
	"heatsurvey_backend/internal/heatloss/physics"
	"heatsurvey_backend/internal/heatloss/repository"
	"heatsurvey_backend/internal/heatloss/transport"
	"heatsurvey_backend/platform/apperr"
	"heatsurvey_backend/platform/logger"
	"heatsurvey_backend/platform/metrics"
	"heatsurvey_backend/platform/validator"
)

const (
	defaultHistoryLimit = 20
	defaultConcurrency  = 4

	statusQueued = "queued"

	msgInvalidTokens      = "survey contains unknown source or classification values"
	msgQueueNotEnabled    = "background recalculation is not configured"
	msgInvalidPhysicsData = "physics engine returned invalid results"
)

// Service provides business logic for heat-loss evaluation.
type Service struct {
	repo        repository.Repository
	physics     PhysicsClient
	cache       EvaluationCache
	enqueuer    RecalculationEnqueuer
	bus         events.Bus
	val         *validator.Validator
	metrics     *metrics.Metrics
	log         *logger.Logger
	concurrency int
	now         func() time.Time
}

// Options holds the optional collaborators. Nil entries disable the
// features that need them.
type Options struct {
	Physics     PhysicsClient
	Cache       EvaluationCache
	Enqueuer    RecalculationEnqueuer
	Bus         events.Bus
	Metrics     *metrics.Metrics
	Concurrency int
}

// New creates a new heat-loss service.
func New(repo repository.Repository, val *validator.Validator, log *logger.Logger, opts Options) *Service {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Service{
		repo:        repo,
		physics:     opts.Physics,
		cache:       opts.Cache,
		enqueuer:    opts.Enqueuer,
		bus:         opts.Bus,
		val:         val,
		metrics:     opts.Metrics,
		log:         log,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// SetEnqueuer wires the background queue after construction.
func (s *Service) SetEnqueuer(enqueuer RecalculationEnqueuer) {
	s.enqueuer = enqueuer
}

// FieldConfidence scores a single captured value.
func (s *Service) FieldConfidence(req transport.FieldConfidenceRequest) transport.FieldConfidenceResponse {
	score := confidence.FieldConfidence(confidence.ParseSourceType(req.Source), req.RecencyDays)
	return transport.FieldConfidenceResponse{
		Source:      req.Source,
		RecencyDays: req.RecencyDays,
		Score:       score,
		Color:       string(confidence.ConfidenceToColor(score)),
	}
}

// EvaluatePayload evaluates a survey supplied in full by the caller. Nothing
// is stored. When the payload carries no raw results the physics engine is
// asked for them, unless the survey is already INCOMPLETE.
func (s *Service) EvaluatePayload(ctx context.Context, req transport.EvaluateRequest) (transport.EvaluationResponse, error) {
	if req.Strict {
		if problems := transport.ValidateStrict(s.val, req); problems != nil {
			return transport.EvaluationResponse{}, apperr.Validation(msgInvalidTokens).WithDetails(problems)
		}
	}

	audit := transport.CleanAudit(req.Audit)
	if len(req.Results) == 0 && s.needsPhysics(ctx, req) {
		result, err := s.calculate(ctx, physics.Request{
			Rooms:    req.Rooms,
			Surfaces: req.Surfaces,
			Emitters: req.Emitters,
			Design:   req.Design,
		})
		if err != nil {
			return transport.EvaluationResponse{}, err
		}
		req.Results = result.Rooms
		audit = append(append([]transport.AuditEntry{}, audit...), transport.CleanAudit(result.AuditTrail)...)
	}

	started := s.now()
	ev := confidence.Evaluate(transport.ToEvaluationInput(req))
	s.observe(ctx, "", ev, started)

	return transport.FromEvaluation(ev, audit, s.now()), nil
}

// EvaluateSurvey evaluates a stored survey, records a snapshot and refreshes
// the cache.
func (s *Service) EvaluateSurvey(ctx context.Context, orgID, surveyID uuid.UUID) (transport.EvaluationResponse, error) {
	ctx = context.WithValue(ctx, logger.SurveyIDKey, surveyID.String())

	var (
		inputs    repository.SurveyInputs
		prevState string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inputs, err = s.repo.LoadSurveyInputs(gctx, orgID, surveyID)
		return err
	})
	g.Go(func() error {
		prev, err := s.repo.GetLatestSnapshot(gctx, orgID, surveyID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil
			}
			return err
		}
		prevState = prev.ValidationState
		return nil
	})
	if err := g.Wait(); err != nil {
		return transport.EvaluationResponse{}, err
	}

	req := transport.EvaluateRequest{
		Rooms:    toRoomInputs(inputs.Rooms),
		Surfaces: toSurfaceInputs(inputs.Surfaces),
		Emitters: toEmitterInputs(inputs.Emitters),
	}
	var audit []transport.AuditEntry
	if s.needsPhysics(ctx, req) {
		result, err := s.calculate(ctx, physics.Request{
			SurveyID: surveyID.String(),
			Rooms:    req.Rooms,
			Surfaces: req.Surfaces,
			Emitters: req.Emitters,
		})
		if err != nil {
			return transport.EvaluationResponse{}, err
		}
		req.Results = result.Rooms
		audit = transport.CleanAudit(result.AuditTrail)
	}

	started := s.now()
	ev := confidence.Evaluate(transport.ToEvaluationInput(req))
	evaluatedAt := s.now().UTC()
	resp := transport.FromEvaluation(ev, audit, evaluatedAt)

	roomsJSON, err := json.Marshal(resp.Rooms)
	if err != nil {
		return transport.EvaluationResponse{}, fmt.Errorf("encode evaluation rooms: %w", err)
	}
	auditJSON, err := json.Marshal(resp.AuditTrail)
	if err != nil {
		return transport.EvaluationResponse{}, fmt.Errorf("encode audit trail: %w", err)
	}

	snap, err := s.repo.CreateSnapshot(ctx, repository.CreateSnapshotParams{
		SurveyID:         surveyID,
		OrganizationID:   orgID,
		ValidationState:  resp.ValidationState,
		ValidationReason: resp.ValidationReason,
		Confidence:       resp.ResultConfidence,
		TotalHeatLossW:   resp.TotalHeatLossW,
		Rooms:            roomsJSON,
		AuditTrail:       auditJSON,
		CreatedAt:        evaluatedAt,
	})
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("create heat-loss snapshot", err)
		return transport.EvaluationResponse{}, err
	}
	resp.ID = &snap.ID
	resp.SurveyID = &surveyID

	if s.cache != nil {
		if err := s.cache.Set(ctx, orgID, surveyID, resp); err != nil {
			s.log.WithContext(ctx).Warn("failed to cache evaluation", "error", err)
		}
	}

	s.observe(ctx, surveyID.String(), ev, started)
	s.publish(ctx, snap, len(resp.Rooms), prevState)

	return resp, nil
}

// GetLatest returns the most recent evaluation of a survey, from the cache
// when possible.
func (s *Service) GetLatest(ctx context.Context, orgID, surveyID uuid.UUID) (transport.EvaluationResponse, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, orgID, surveyID)
		if err != nil {
			s.log.WithContext(ctx).Warn("evaluation cache read failed", "surveyId", surveyID, "error", err)
		}
		if ok {
			s.metrics.CacheHit()
			return *cached, nil
		}
		s.metrics.CacheMiss()
	}

	snap, err := s.repo.GetLatestSnapshot(ctx, orgID, surveyID)
	if err != nil {
		return transport.EvaluationResponse{}, err
	}
	resp, err := fromSnapshot(snap)
	if err != nil {
		return transport.EvaluationResponse{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, orgID, surveyID, resp); err != nil {
			s.log.WithContext(ctx).Warn("failed to cache evaluation", "surveyId", surveyID, "error", err)
		}
	}
	return resp, nil
}

// ListHistory returns snapshot summaries, newest first.
func (s *Service) ListHistory(ctx context.Context, orgID, surveyID uuid.UUID, req transport.HistoryRequest) (transport.EvaluationHistoryResponse, error) {
	limit := req.Limit
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	snaps, err := s.repo.ListSnapshots(ctx, orgID, surveyID, limit)
	if err != nil {
		return transport.EvaluationHistoryResponse{}, err
	}
	items := make([]transport.EvaluationSummaryResponse, 0, len(snaps))
	for _, snap := range snaps {
		items = append(items, toSummary(snap))
	}
	return transport.EvaluationHistoryResponse{Items: items}, nil
}

// EnqueueRecalculation drops the cached result and schedules a background
// evaluation.
func (s *Service) EnqueueRecalculation(ctx context.Context, orgID, surveyID uuid.UUID) (transport.RecalculateResponse, error) {
	if s.enqueuer == nil {
		return transport.RecalculateResponse{}, apperr.Unavailable(msgQueueNotEnabled)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, orgID, surveyID); err != nil {
			s.log.WithContext(ctx).Warn("failed to invalidate evaluation cache", "surveyId", surveyID, "error", err)
		}
	}
	if err := s.enqueuer.EnqueueRecalculation(ctx, orgID, surveyID); err != nil {
		return transport.RecalculateResponse{}, fmt.Errorf("enqueue recalculation: %w", err)
	}
	return transport.RecalculateResponse{SurveyID: surveyID, Status: statusQueued}, nil
}

// RecalculateMany evaluates several surveys with bounded concurrency. A
// failing survey is reported in its result and does not stop the others.
func (s *Service) RecalculateMany(ctx context.Context, orgID uuid.UUID, surveyIDs []uuid.UUID) transport.RecalculateBatchResponse {
	results := make([]transport.RecalculateResult, len(surveyIDs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, surveyID := range surveyIDs {
		g.Go(func() error {
			result := transport.RecalculateResult{SurveyID: surveyID}
			resp, err := s.EvaluateSurvey(ctx, orgID, surveyID)
			if err != nil {
				result.Error = errorMessage(err)
			} else {
				conf := resp.ResultConfidence
				result.ValidationState = resp.ValidationState
				result.ResultConfidence = &conf
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return transport.RecalculateBatchResponse{Results: results}
}

// Recalculate evaluates a survey for a background job.
func (s *Service) Recalculate(ctx context.Context, orgID, surveyID uuid.UUID) error {
	_, err := s.EvaluateSurvey(ctx, orgID, surveyID)
	return err
}

// needsPhysics reports whether raw results should be requested. Surveys
// without rooms or with invalid geometry are INCOMPLETE whatever the figures,
// and without a physics engine the survey is scored on captured data alone.
func (s *Service) needsPhysics(ctx context.Context, req transport.EvaluateRequest) bool {
	if len(req.Rooms) == 0 {
		return false
	}
	if s.physics == nil {
		s.log.WithContext(ctx).Info("physics engine not configured; scoring without heat-loss figures")
		return false
	}
	v := confidence.InputValidation(transport.ToEvaluationInput(req))
	return v.State != confidence.StateIncomplete
}

func (s *Service) calculate(ctx context.Context, req physics.Request) (*physics.Result, error) {
	result, err := s.physics.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}
	for i, room := range result.Rooms {
		if room.RoomID == "" {
			return nil, apperr.Internal(msgInvalidPhysicsData).WithDetails(map[string]string{
				fmt.Sprintf("rooms[%d].roomId", i): "required",
			})
		}
	}
	return result, nil
}

func (s *Service) observe(ctx context.Context, surveyID string, ev confidence.Evaluation, started time.Time) {
	state := string(ev.Validation.State)
	s.metrics.Evaluation(state, ev.ResultConfidence)
	s.log.WithContext(ctx).HeatLossEvaluated(
		surveyID,
		len(ev.Rooms),
		ev.ResultConfidence,
		state,
		float64(s.now().Sub(started).Microseconds())/1000,
	)
}

func (s *Service) publish(ctx context.Context, snap repository.Snapshot, rooms int, prevState string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.HeatLossEvaluated{
		BaseEvent:        events.NewBaseEvent(),
		EvaluationID:     snap.ID,
		SurveyID:         snap.SurveyID,
		OrganizationID:   snap.OrganizationID,
		ValidationState:  snap.ValidationState,
		ResultConfidence: snap.Confidence,
		TotalHeatLossW:   snap.TotalHeatLossW,
		RoomCount:        rooms,
	})
	if prevState != snap.ValidationState {
		s.bus.Publish(ctx, events.ValidationStateChanged{
			BaseEvent:      events.NewBaseEvent(),
			SurveyID:       snap.SurveyID,
			OrganizationID: snap.OrganizationID,
			From:           prevState,
			To:             snap.ValidationState,
			Reason:         snap.ValidationReason,
		})
	}
}

// errorMessage exposes typed messages and hides everything else.
func errorMessage(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
