package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/order-extractor/constants"
)

// Run is one extraction of one document with one profile.
type Run struct {
	ID           uuid.UUID           `json:"id"`
	SourcePath   string              `json:"source_path"`
	ContentHash  string              `json:"content_hash"`
	Format       string              `json:"format"`
	Profile      string              `json:"profile"`
	Status       constants.RunStatus `json:"status"`
	OrderCount   int                 `json:"order_count"`
	ProductCount int                 `json:"product_count"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}
