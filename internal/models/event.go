package models

import (
	"github.com/inboxsweep/inboxsweep/internal/enum"
)

// ProgressEvent is one element of the ordered progress stream a cleanup run
// emits. Consumers key off Category; Message is display text only.
type ProgressEvent struct {
	Category enum.EventCategory `json:"category"`
	Message  string             `json:"message"`
	Query    string             `json:"query,omitempty"`

	// TotalDeleted mirrors the run's running total at emission time.
	TotalDeleted int `json:"total_deleted"`
	SpamFlagged  int `json:"spam_flagged,omitempty"`
	Restored     int `json:"restored,omitempty"`

	// Terminal marks the last event of a run. Exactly one event per run
	// carries it.
	Terminal bool `json:"terminal,omitempty"`

	Err string `json:"error,omitempty"`
}
