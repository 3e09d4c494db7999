// Package events provides an in-process publish/subscribe bus for inventory
// and recommendation lifecycle events.
package events

import "time"

// EventType identifies what happened
type EventType string

const (
	StockUpdated             EventType = "STOCK_UPDATED"
	RecommendationsGenerated EventType = "RECOMMENDATIONS_GENERATED"
	RecommendationApproved   EventType = "RECOMMENDATION_APPROVED"
	RecommendationRejected   EventType = "RECOMMENDATION_REJECTED"
	AnomaliesDetected        EventType = "ANOMALIES_DETECTED"
	BackupCompleted          EventType = "BACKUP_COMPLETED"
)

// Event is one published occurrence
type Event struct {
	Type      EventType `json:"type"`
	Module    string    `json:"module"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
}

// Emitter publishes typed events. *Bus implements it.
type Emitter interface {
	EmitTyped(module string, data EventData)
}
