package event

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Domain event types emitted by the pathway engine and the assignment service.
// Subscribers match on these strings; new types may be added without breaking
// existing subscribers.
const (
	TypePathwayInitialized   = "pathway:initialized"
	TypePathwayStepCompleted = "pathway:step:completed"
	TypePathwayCompleted     = "pathway:completed"
	TypeStepAssigned         = "step:assigned"
)

// Aggregate types referenced by events.
const (
	AggregatePathway    = "pathway"
	AggregateAssignment = "assignment"
)

// Event is an immutable record of something that happened. Rows are append-only:
// they are never updated or deleted, and are read back ordered by creation time.
type Event struct {
	ID            uuid.UUID      `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	EventType     string         `gorm:"type:varchar(100);column:event_type;not null;index" json:"eventType"`
	AggregateType string         `gorm:"type:varchar(50);column:aggregate_type;not null;index:idx_events_aggregate" json:"aggregateType"`
	AggregateID   string         `gorm:"type:varchar(100);column:aggregate_id;not null;index:idx_events_aggregate" json:"aggregateId"`
	Data          map[string]any `gorm:"type:jsonb;column:data;not null;serializer:json" json:"data"`
	Metadata      map[string]any `gorm:"type:jsonb;column:metadata;serializer:json" json:"metadata,omitempty"`
	CreatedAt     time.Time      `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
}

func (e *Event) TableName() string {
	return "events"
}

// BeforeCreate is a GORM hook that assigns the event identity before insert.
func (e *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	return
}
