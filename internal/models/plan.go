package models

// FilterSelection carries the raw form selections a user submitted.
type FilterSelection struct {
	Unread     bool   `form:"unread" json:"unread"`
	Promotions bool   `form:"promotions" json:"promotions"`
	Social     bool   `form:"social" json:"social"`
	Updates    bool   `form:"updates" json:"updates"`
	Age        string `form:"age" json:"age"`
	Restore    bool   `form:"restore" json:"restore"`
	SpamDetect bool   `form:"spam_detect" json:"spam_detect"`
}

// CleanupPlan is the immutable input of a cleanup run. Build one with
// cleanup.BuildPlan; do not mutate it afterwards.
type CleanupPlan struct {
	// Queries is the ordered, deduplicated list of mailbox search queries.
	// Never empty once built.
	Queries []string `json:"queries"`

	// RestoreEnabled moves read messages out of trash after the deletion
	// phase completes.
	RestoreEnabled bool `json:"restore_enabled"`

	// SpamDetectionEnabled annotates deleted messages with a spam flag for
	// reporting. It never gates deletion.
	SpamDetectionEnabled bool `json:"spam_detection_enabled"`

	// SafetyCap is the upper bound on messages deleted in one run.
	// Zero means unbounded.
	SafetyCap int `json:"safety_cap"`
}
