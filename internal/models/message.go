package models

// MessageRef identifies a mailbox message plus the minimal metadata used by
// previews and spam annotation. The deletion path only ever needs ID.
type MessageRef struct {
	ID      string `json:"id"`
	Subject string `json:"subject,omitempty"`
	From    string `json:"from,omitempty"`
	Date    string `json:"date,omitempty"`
}

// MessagePreview is a MessageRef annotated for the preview endpoint.
type MessagePreview struct {
	MessageRef
	IsSpam         bool    `json:"is_spam"`
	SpamConfidence float64 `json:"spam_confidence"`
	SpamReason     string  `json:"spam_reason,omitempty"`
}

// Mailbox label identifiers shared by all adapters.
const (
	LabelTrash = "TRASH"
	LabelInbox = "INBOX"
)

// QueryReadInTrash selects read messages sitting in trash, the input of the
// safety-restore phase.
const QueryReadInTrash = "in:trash -is:unread"
