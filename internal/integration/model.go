package integration

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Endpoint is a configured external system that receives event payloads over
// HTTP whenever a matching event is dispatched.
type Endpoint struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	URL       string    `json:"url" gorm:"type:varchar(2048);not null"`
	EventType string    `json:"eventType" gorm:"type:varchar(100);not null;index"`
	Enabled   bool      `json:"enabled" gorm:"not null;default:true"`
}

func (Endpoint) TableName() string {
	return "integration_endpoints"
}

func (e *Endpoint) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// RequestStatus records the outcome of a single delivery attempt.
type RequestStatus string

const (
	RequestStatusDelivered RequestStatus = "delivered"
	RequestStatusFailed    RequestStatus = "failed"
)

// Request is the delivery record for one event sent to one endpoint.
type Request struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time     `json:"createdAt"`
	EndpointID   uuid.UUID     `json:"endpointId" gorm:"type:uuid;not null;index"`
	EventID      uuid.UUID     `json:"eventId" gorm:"type:uuid;not null"`
	EventType    string        `json:"eventType" gorm:"type:varchar(100);not null"`
	Status       RequestStatus `json:"status" gorm:"type:varchar(20);not null"`
	ResponseCode int           `json:"responseCode"`
	Error        string        `json:"error,omitempty" gorm:"type:text"`
}

func (Request) TableName() string {
	return "integration_requests"
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CreateEndpointDTO carries the payload for registering an endpoint.
type CreateEndpointDTO struct {
	Name      string `json:"name" binding:"required"`
	URL       string `json:"url" binding:"required"`
	EventType string `json:"eventType" binding:"required"`
	Enabled   *bool  `json:"enabled,omitempty"`
}

// UpdateEndpointDTO carries a partial endpoint update.
type UpdateEndpointDTO struct {
	Name    *string `json:"name,omitempty"`
	URL     *string `json:"url,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}
