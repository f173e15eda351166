// Package model defines the core domain types for the activity enrollment client.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Activity represents one extracurricular activity and its current roster.
type Activity struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft returns the number of open spots. The value is not clamped:
// an over-enrolled activity reports a negative count, exactly as the
// server's own arithmetic would.
func (a *Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// Snapshot is the full activity collection as reported by one
// GET /activities response, in the server's key order.
//
// The server encodes the collection as a JSON object keyed by activity
// name. A plain map would lose the key order, so the snapshot decodes
// the object with a token stream and keeps activities in the order the
// server wrote them.
type Snapshot []Activity

// activityDetails is the value shape under each activity-name key.
type activityDetails struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// UnmarshalJSON decodes the name→details object while preserving key order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read activities object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("activities: expected JSON object, got %v", tok)
	}

	out := Snapshot{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read activity name: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("activities: expected string key, got %v", keyTok)
		}

		var details activityDetails
		if err := dec.Decode(&details); err != nil {
			return fmt.Errorf("decode activity %q: %w", name, err)
		}
		out = append(out, Activity{
			Name:            name,
			Description:     details.Description,
			Schedule:        details.Schedule,
			MaxParticipants: details.MaxParticipants,
			Participants:    details.Participants,
		})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read activities object end: %w", err)
	}

	*s = out
	return nil
}

// Session identifies the current visitor. The zero value is anonymous.
type Session struct {
	Username string `json:"username"`
}

// LoggedIn reports whether the session belongs to an authenticated visitor.
func (s Session) LoggedIn() bool {
	return s.Username != ""
}

// Kind classifies a banner message.
type Kind string

// Message kinds.
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Message is the single transient banner slot. Hiding a message clears
// only its visibility; the last text and kind remain readable.
type Message struct {
	Text    string
	Kind    Kind
	Visible bool
}
