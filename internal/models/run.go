package models

import (
	"github.com/inboxsweep/inboxsweep/internal/enum"
)

// CleanupRun is the mutable state of one engine execution. It is owned by a
// single goroutine for the lifetime of the run and must not be shared.
type CleanupRun struct {
	ID              string         `json:"id"`
	State           enum.RunState  `json:"state"`
	TotalDeleted    int            `json:"total_deleted"`
	PerQueryDeleted map[string]int `json:"per_query_deleted"`
	DeletedIDs      []string       `json:"deleted_ids"`
	FoundAny        bool           `json:"found_any"`
	SpamFlagged     int            `json:"spam_flagged"`
	Restored        int            `json:"restored"`
	HaltedByCap     bool           `json:"halted_by_cap"`
}

func NewCleanupRun(id string) *CleanupRun {
	return &CleanupRun{
		ID:              id,
		State:           enum.RunIdle,
		PerQueryDeleted: map[string]int{},
		DeletedIDs:      []string{},
	}
}

// RecordBatch appends one successfully trashed page to the run.
func (r *CleanupRun) RecordBatch(query string, ids []string) {
	r.DeletedIDs = append(r.DeletedIDs, ids...)
	r.TotalDeleted += len(ids)
	r.PerQueryDeleted[query] += len(ids)
	r.FoundAny = true
}

// SpamPercentage returns the integer-rounded share of deleted messages that
// were flagged as spam.
func (r *CleanupRun) SpamPercentage() int {
	if r.TotalDeleted == 0 {
		return 0
	}
	return int(float64(r.SpamFlagged)/float64(r.TotalDeleted)*100 + 0.5)
}
