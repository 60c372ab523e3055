package domain

import "time"

// Типы доменных событий.
const (
	EventPropertyCreated             = "property.created"
	EventPropertyUpdated             = "property.updated"
	EventPropertyBoardMoved          = "property.board_moved"
	EventPropertyAvailabilityChanged = "property.availability_changed"
)

// PropertyEvent - событие об изменении объекта, используется внешним сервисом уведомлений.
type PropertyEvent struct {
	Type       string         `json:"type"`
	PropertyID string         `json:"property_id"`
	UserID     string         `json:"user_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Attributes map[string]any `json:"attributes,omitempty"`
}
