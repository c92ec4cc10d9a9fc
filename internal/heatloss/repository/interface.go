package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Survey is the header row of a heat survey.
type Survey struct {
	ID             uuid.UUID `db:"id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Reference      string    `db:"reference"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Room is a surveyed room as captured in the field.
type Room struct {
	ID                  string  `db:"id"`
	Name                string  `db:"name"`
	FloorAreaM2         float64 `db:"floor_area_m2"`
	VolumeM3            float64 `db:"volume_m3"`
	CeilingHeightM      float64 `db:"ceiling_height_m"`
	GeometrySource      string  `db:"geometry_source"`
	GeometryRecencyDays *int    `db:"geometry_recency_days"`
	DesiredTempC        float64 `db:"desired_temp_c"`
	AirChangeSource     string  `db:"air_change_source"`
}

// Surface is a wall, floor or ceiling element of a room.
type Surface struct {
	ID               string   `db:"id"`
	RoomID           string   `db:"room_id"`
	Orientation      string   `db:"orientation"`
	AreaM2           float64  `db:"area_m2"`
	ConstructionType string   `db:"construction_type"`
	MeasuredUValue   *float64 `db:"measured_u_value"`
	CalculatedUValue *float64 `db:"calculated_u_value"`
	Classification   string   `db:"classification"`
	Source           string   `db:"source"`
	RecencyDays      *int     `db:"recency_days"`
	ConfidenceTier   string   `db:"confidence_tier"`
}

// Emitter is a radiator or other heat emitter in a room.
type Emitter struct {
	ID              string  `db:"id"`
	RoomID          string  `db:"room_id"`
	RatedOutputW    float64 `db:"rated_output_w"`
	ReferenceDeltaT float64 `db:"reference_delta_t"`
}

// SurveyInputs is everything the evaluation reads for one survey.
type SurveyInputs struct {
	Survey   Survey
	Rooms    []Room
	Surfaces []Surface
	Emitters []Emitter
}

// Snapshot is an immutable record of one evaluation.
type Snapshot struct {
	ID               uuid.UUID       `db:"id"`
	SurveyID         uuid.UUID       `db:"survey_id"`
	OrganizationID   uuid.UUID       `db:"organization_id"`
	ValidationState  string          `db:"validation_state"`
	ValidationReason string          `db:"validation_reason"`
	Confidence       int             `db:"confidence"`
	TotalHeatLossW   float64         `db:"total_heat_loss_w"`
	Rooms            json.RawMessage `db:"rooms"`
	AuditTrail       json.RawMessage `db:"audit_trail"`
	CreatedAt        time.Time       `db:"created_at"`
}

// CreateSnapshotParams contains data for storing an evaluation.
type CreateSnapshotParams struct {
	ID               uuid.UUID
	SurveyID         uuid.UUID
	OrganizationID   uuid.UUID
	ValidationState  string
	ValidationReason string
	Confidence       int
	TotalHeatLossW   float64
	Rooms            json.RawMessage
	AuditTrail       json.RawMessage
	CreatedAt        time.Time
}

// SurveyRef identifies a survey across organizations.
type SurveyRef struct {
	SurveyID       uuid.UUID `db:"id"`
	OrganizationID uuid.UUID `db:"organization_id"`
}

// SurveyReader loads survey inputs. Survey data is owned by the field app;
// this module never writes it.
type SurveyReader interface {
	LoadSurveyInputs(ctx context.Context, organizationID, surveyID uuid.UUID) (SurveyInputs, error)
	// ListStaleSurveys returns surveys changed since their latest snapshot,
	// or never evaluated, oldest change first.
	ListStaleSurveys(ctx context.Context, limit int) ([]SurveyRef, error)
}

// SnapshotStore persists evaluation snapshots.
type SnapshotStore interface {
	CreateSnapshot(ctx context.Context, params CreateSnapshotParams) (Snapshot, error)
	GetLatestSnapshot(ctx context.Context, organizationID, surveyID uuid.UUID) (Snapshot, error)
	ListSnapshots(ctx context.Context, organizationID, surveyID uuid.UUID, limit int) ([]Snapshot, error)
	// DeleteSnapshotsBefore removes snapshots older than before, always
	// keeping the latest snapshot of every survey.
	DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int64, error)
}

// Repository is the full heat-loss storage surface.
type Repository interface {
	SurveyReader
	SnapshotStore
}
