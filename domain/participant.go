// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant is a named chat session identity.
// Names are unique, case-sensitive, exact-match keys.
type Participant struct {
	Name     string
	LastSeen time.Time
}

// IsStale reports whether the participant has been silent for strictly longer than idle.
func (p Participant) IsStale(now time.Time, idle time.Duration) bool {
	return now.Sub(p.LastSeen) > idle
}
