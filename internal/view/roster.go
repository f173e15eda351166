// Package view renders activity snapshots. A render is a pure full
// rebuild: snapshot in, view tree out, no diffing against the previous
// tree and no retained state.
package view

import (
	"fmt"
	"io"

	"github.com/aparkhill/activity-enrollment-client/internal/model"
)

// FailureNotice is shown in place of the roster when the activity
// collection cannot be fetched. There is no automatic retry.
const FailureNotice = "Failed to load activities. Please try again later."

// RemoveAction is the withdrawal control bound to one participant row.
// Activity and Email are carried as opaque parameters for dispatch.
type RemoveAction struct {
	Activity string
	Email    string
}

// ParticipantRow pairs an enrolled email with its removal control.
type ParticipantRow struct {
	Email  string
	Remove RemoveAction
}

// Card is the rendered form of one activity.
type Card struct {
	Name         string
	Description  string
	Schedule     string
	SpotsLeft    int
	Participants []ParticipantRow
}

// Page is the full rendered roster plus the activity-selection control.
// When Failed is set the cards and options are empty and the failure
// notice is the whole display.
type Page struct {
	Cards   []Card
	Options []string
	Failed  bool
}

// Render builds the page for a snapshot. Equal snapshots render equal
// pages, so calling it repeatedly is safe and observably idempotent.
func Render(snap model.Snapshot) Page {
	page := Page{
		Cards:   make([]Card, 0, len(snap)),
		Options: make([]string, 0, len(snap)),
	}
	for _, a := range snap {
		card := Card{
			Name:         a.Name,
			Description:  a.Description,
			Schedule:     a.Schedule,
			SpotsLeft:    a.SpotsLeft(),
			Participants: make([]ParticipantRow, 0, len(a.Participants)),
		}
		for _, email := range a.Participants {
			card.Participants = append(card.Participants, ParticipantRow{
				Email:  email,
				Remove: RemoveAction{Activity: a.Name, Email: email},
			})
		}
		page.Cards = append(page.Cards, card)
		page.Options = append(page.Options, a.Name)
	}
	return page
}

// RenderError builds the static failure page.
func RenderError() Page {
	return Page{Failed: true}
}

// Write prints a terminal rendering of the page.
func (p Page) Write(w io.Writer) {
	if p.Failed {
		fmt.Fprintln(w, FailureNotice)
		return
	}
	for _, card := range p.Cards {
		fmt.Fprintf(w, "%s\n", card.Name)
		fmt.Fprintf(w, "  %s\n", card.Description)
		fmt.Fprintf(w, "  Schedule: %s\n", card.Schedule)
		fmt.Fprintf(w, "  Availability: %d spots left\n", card.SpotsLeft)
		if len(card.Participants) == 0 {
			fmt.Fprintln(w, "  No participants yet")
			continue
		}
		fmt.Fprintln(w, "  Participants:")
		for _, row := range card.Participants {
			fmt.Fprintf(w, "    - %s\n", row.Email)
		}
	}
}
