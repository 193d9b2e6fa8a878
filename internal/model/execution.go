package model

import "time"

// ExecutionRecord is a saved run. Output and Error are nil when the client
// did not send them.
type ExecutionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	Output    *string   `json:"output,omitempty"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
