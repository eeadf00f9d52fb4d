package interfaces

// SpamDetector scores a message from header metadata only. It annotates
// previews and run summaries; it must never gate a deletion decision.
type SpamDetector interface {
	// Score returns whether the message looks like spam, a confidence in
	// [0,1], and a short human-readable reason.
	Score(subject string, sender string) (isSpam bool, confidence float64, reason string)
}
