package events

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// StockUpdatedData is published after a stock receipt or issue is journaled
type StockUpdatedData struct {
	FacilityID    string `json:"facility_id"`
	ItemID        string `json:"item_id"`
	MovementType  string `json:"movement_type"`
	Quantity      int    `json:"quantity"`
	NewStock      int    `json:"new_stock"`
	TransactionID string `json:"transaction_id"`
}

// EventType returns the event type for StockUpdatedData
func (d *StockUpdatedData) EventType() EventType {
	return StockUpdated
}

// RecommendationsGeneratedData is published after a matching pass
type RecommendationsGeneratedData struct {
	Count       int `json:"count"`
	MaxPriority int `json:"max_priority"`
}

// EventType returns the event type for RecommendationsGeneratedData
func (d *RecommendationsGeneratedData) EventType() EventType {
	return RecommendationsGenerated
}

// RecommendationApprovedData is published after an approval commits
type RecommendationApprovedData struct {
	RecommendationID      string `json:"recommendation_id"`
	ItemID                string `json:"item_id"`
	SourceFacilityID      string `json:"source_facility_id"`
	DestinationFacilityID string `json:"destination_facility_id"`
	Quantity              int    `json:"quantity"`
	ApprovedBy            string `json:"approved_by"`
}

// EventType returns the event type for RecommendationApprovedData
func (d *RecommendationApprovedData) EventType() EventType {
	return RecommendationApproved
}

// RecommendationRejectedData is published after a rejection
type RecommendationRejectedData struct {
	RecommendationID string `json:"recommendation_id"`
	RejectedBy       string `json:"rejected_by"`
	Reason           string `json:"reason,omitempty"`
}

// EventType returns the event type for RecommendationRejectedData
func (d *RecommendationRejectedData) EventType() EventType {
	return RecommendationRejected
}

// AnomaliesDetectedData is published by the scheduled anomaly scan when issues exist
type AnomaliesDetectedData struct {
	Understocked int `json:"understocked"`
	Overstocked  int `json:"overstocked"`
	NearExpiry   int `json:"near_expiry"`
	TotalIssues  int `json:"total_issues"`
}

// EventType returns the event type for AnomaliesDetectedData
func (d *AnomaliesDetectedData) EventType() EventType {
	return AnomaliesDetected
}

// BackupCompletedData is published after an archive is uploaded
type BackupCompletedData struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}
