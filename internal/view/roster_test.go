package view

import (
	"reflect"
	"strings"
	"testing"

	"github.com/aparkhill/activity-enrollment-client/internal/model"
)

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 2,
			Participants:    []string{"a@x.com", "b@x.com"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education",
			Schedule:        "Mon/Wed/Fri",
			MaxParticipants: 30,
		},
	}
}

func TestRenderBuildsCardsInSnapshotOrder(t *testing.T) {
	page := Render(sampleSnapshot())

	if page.Failed {
		t.Fatal("page reports failure for a good snapshot")
	}
	if len(page.Cards) != 2 {
		t.Fatalf("len(Cards) = %d, want 2", len(page.Cards))
	}
	if !reflect.DeepEqual(page.Options, []string{"Chess Club", "Gym Class"}) {
		t.Fatalf("Options = %v", page.Options)
	}

	chess := page.Cards[0]
	if chess.SpotsLeft != 0 {
		t.Fatalf("Chess Club SpotsLeft = %d, want 0", chess.SpotsLeft)
	}
	if len(chess.Participants) != 2 {
		t.Fatalf("len(Participants) = %d, want 2", len(chess.Participants))
	}

	// Every row carries a removal control bound to its own email.
	want := RemoveAction{Activity: "Chess Club", Email: "b@x.com"}
	if chess.Participants[1].Remove != want {
		t.Fatalf("Remove = %+v, want %+v", chess.Participants[1].Remove, want)
	}
}

func TestRenderNegativeSpotsLeft(t *testing.T) {
	page := Render(model.Snapshot{{
		Name:            "Overbooked",
		MaxParticipants: 1,
		Participants:    []string{"a@x.com", "b@x.com"},
	}})
	if got := page.Cards[0].SpotsLeft; got != -1 {
		t.Fatalf("SpotsLeft = %d, want -1 (unclamped)", got)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	snap := sampleSnapshot()
	first := Render(snap)
	second := Render(snap)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("renders differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestWriteText(t *testing.T) {
	var sb strings.Builder
	Render(sampleSnapshot()).Write(&sb)
	out := sb.String()

	for _, want := range []string{
		"Chess Club",
		"Availability: 0 spots left",
		"- a@x.com",
		"No participants yet",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderError(t *testing.T) {
	page := RenderError()
	if !page.Failed || len(page.Cards) != 0 || len(page.Options) != 0 {
		t.Fatalf("RenderError() = %+v", page)
	}

	var sb strings.Builder
	page.Write(&sb)
	if got := strings.TrimSpace(sb.String()); got != FailureNotice {
		t.Fatalf("failure text = %q, want %q", got, FailureNotice)
	}
}
