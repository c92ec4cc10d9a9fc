package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"heatsurvey_backend/platform/apperr"
)

const (
	surveyNotFoundMessage     = "survey not found"
	evaluationNotFoundMessage = "no evaluation recorded for survey"
)

// Repo implements the heat-loss repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new heat-loss repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// LoadSurveyInputs reads a survey and its rooms, surfaces and emitters in a
// single read-only transaction so the evaluation sees a consistent survey.
func (r *Repo) LoadSurveyInputs(ctx context.Context, organizationID, surveyID uuid.UUID) (SurveyInputs, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return SurveyInputs{}, fmt.Errorf("begin survey read: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var in SurveyInputs
	err = tx.QueryRow(ctx, `
		SELECT id, organization_id, reference, updated_at
		FROM heat_surveys
		WHERE id = $1 AND organization_id = $2`, surveyID, organizationID,
	).Scan(&in.Survey.ID, &in.Survey.OrganizationID, &in.Survey.Reference, &in.Survey.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SurveyInputs{}, apperr.NotFound(surveyNotFoundMessage)
		}
		return SurveyInputs{}, fmt.Errorf("get survey: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, name, floor_area_m2, volume_m3, ceiling_height_m, geometry_source,
			geometry_recency_days, desired_temp_c, air_change_source
		FROM heat_survey_rooms
		WHERE survey_id = $1
		ORDER BY sort_order, id`, surveyID)
	if err != nil {
		return SurveyInputs{}, fmt.Errorf("list rooms: %w", err)
	}
	in.Rooms, err = pgx.CollectRows(rows, pgx.RowToStructByName[Room])
	if err != nil {
		return SurveyInputs{}, fmt.Errorf("scan rooms: %w", err)
	}

	rows, err = tx.Query(ctx, `
		SELECT id, room_id, orientation, area_m2, construction_type, measured_u_value,
			calculated_u_value, classification, source, recency_days, confidence_tier
		FROM heat_survey_surfaces
		WHERE survey_id = $1
		ORDER BY room_id, id`, surveyID)
	if err != nil {
		return SurveyInputs{}, fmt.Errorf("list surfaces: %w", err)
	}
	in.Surfaces, err = pgx.CollectRows(rows, pgx.RowToStructByName[Surface])
	if err != nil {
		return SurveyInputs{}, fmt.Errorf("scan surfaces: %w", err)
	}

	rows, err = tx.Query(ctx, `
		SELECT id, room_id, rated_output_w, reference_delta_t
		FROM heat_survey_emitters
		WHERE survey_id = $1
		ORDER BY room_id, id`, surveyID)
	if err != nil {
		return SurveyInputs{}, fmt.Errorf("list emitters: %w", err)
	}
	in.Emitters, err = pgx.CollectRows(rows, pgx.RowToStructByName[Emitter])
	if err != nil {
		return SurveyInputs{}, fmt.Errorf("scan emitters: %w", err)
	}

	return in, nil
}

// ListStaleSurveys returns surveys whose inputs changed after their latest
// snapshot, plus surveys with rooms that were never evaluated.
func (r *Repo) ListStaleSurveys(ctx context.Context, limit int) ([]SurveyRef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.organization_id
		FROM heat_surveys s
		LEFT JOIN LATERAL (
			SELECT created_at FROM heat_loss_evaluations e
			WHERE e.survey_id = s.id
			ORDER BY created_at DESC
			LIMIT 1
		) latest ON true
		WHERE (latest.created_at IS NULL AND EXISTS (SELECT 1 FROM heat_survey_rooms r WHERE r.survey_id = s.id))
			OR s.updated_at > latest.created_at
		ORDER BY s.updated_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale surveys: %w", err)
	}
	refs, err := pgx.CollectRows(rows, pgx.RowToStructByName[SurveyRef])
	if err != nil {
		return nil, fmt.Errorf("scan stale surveys: %w", err)
	}
	return refs, nil
}

const snapshotColumns = `id, survey_id, organization_id, validation_state, validation_reason,
	confidence, total_heat_loss_w, rooms, audit_trail, created_at`

// CreateSnapshot stores an evaluation. Snapshots are never updated.
func (r *Repo) CreateSnapshot(ctx context.Context, params CreateSnapshotParams) (Snapshot, error) {
	if params.ID == uuid.Nil {
		params.ID = uuid.New()
	}
	if params.CreatedAt.IsZero() {
		params.CreatedAt = time.Now().UTC()
	}
	rooms := params.Rooms
	if len(rooms) == 0 {
		rooms = []byte("[]")
	}
	audit := params.AuditTrail
	if len(audit) == 0 {
		audit = []byte("[]")
	}

	rows, err := r.pool.Query(ctx, `
		INSERT INTO heat_loss_evaluations (id, survey_id, organization_id, validation_state, validation_reason,
			confidence, total_heat_loss_w, rooms, audit_trail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+snapshotColumns,
		params.ID, params.SurveyID, params.OrganizationID, params.ValidationState, params.ValidationReason,
		params.Confidence, params.TotalHeatLossW, rooms, audit, params.CreatedAt,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: %w", err)
	}
	snap, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Snapshot])
	if err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: %w", err)
	}
	return snap, nil
}

// GetLatestSnapshot returns the most recent snapshot of a survey.
func (r *Repo) GetLatestSnapshot(ctx context.Context, organizationID, surveyID uuid.UUID) (Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM heat_loss_evaluations
		WHERE organization_id = $1 AND survey_id = $2
		ORDER BY created_at DESC
		LIMIT 1`, organizationID, surveyID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	snap, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Snapshot])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, apperr.NotFound(evaluationNotFoundMessage)
		}
		return Snapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns up to limit snapshots, newest first.
func (r *Repo) ListSnapshots(ctx context.Context, organizationID, surveyID uuid.UUID, limit int) ([]Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM heat_loss_evaluations
		WHERE organization_id = $1 AND survey_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, organizationID, surveyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	snaps, err := pgx.CollectRows(rows, pgx.RowToStructByName[Snapshot])
	if err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}
	return snaps, nil
}

// DeleteSnapshotsBefore prunes history older than before, keeping the latest
// snapshot of each survey regardless of age.
func (r *Repo) DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM heat_loss_evaluations e
		WHERE e.created_at < $1
			AND e.id <> (
				SELECT latest.id FROM heat_loss_evaluations latest
				WHERE latest.survey_id = e.survey_id
				ORDER BY latest.created_at DESC
				LIMIT 1
			)`, before)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
