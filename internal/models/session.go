package models

import (
	"time"

	"golang.org/x/oauth2"
)

// Session is the per-user interaction state, keyed by an opaque unguessable
// token carried in a cookie.
type Session struct {
	Key       string       `json:"key"`
	CreatedAt time.Time    `json:"created_at"`
	Plan      *CleanupPlan `json:"plan,omitempty"`

	// OAuthState is the anti-forgery state of the in-flight authorization
	// redirect, cleared once the callback lands.
	OAuthState string        `json:"oauth_state,omitempty"`
	Token      *oauth2.Token `json:"token,omitempty"`

	// LastRun is the undo ledger entry of the most recent completed run.
	LastRun *UndoEntry `json:"last_run,omitempty"`
}

// UndoEntry records what a completed run trashed, enabling a single-shot
// restore. Written once per run, consumed by at most one undo.
type UndoEntry struct {
	SessionKey string    `json:"session_key"`
	Timestamp  time.Time `json:"timestamp"`
	EmailIDs   []string  `json:"email_ids"`
}
