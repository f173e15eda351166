package notify

import (
	"testing"
	"time"

	"github.com/aparkhill/activity-enrollment-client/internal/model"
)

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestShowThenAutoHide(t *testing.T) {
	b := NewWithDelay(30 * time.Millisecond)
	b.Show("Signed up a@x.com for Chess Club", model.KindSuccess)

	got := b.Current()
	if !got.Visible || got.Kind != model.KindSuccess {
		t.Fatalf("after Show: %+v", got)
	}

	waitFor(t, time.Second, func() bool { return !b.Current().Visible })

	got = b.Current()
	if got.Text != "Signed up a@x.com for Chess Club" {
		t.Fatalf("hidden banner lost its text: %+v", got)
	}
}

func TestShowReplacesPendingHide(t *testing.T) {
	b := NewWithDelay(100 * time.Millisecond)

	b.Show("first", model.KindSuccess)
	time.Sleep(60 * time.Millisecond)
	b.Show("second", model.KindError)

	// The first message's timer would have fired by now if it were
	// still pending; the second message must still be visible.
	time.Sleep(60 * time.Millisecond)
	got := b.Current()
	if !got.Visible || got.Text != "second" {
		t.Fatalf("second message hidden early: %+v", got)
	}

	waitFor(t, time.Second, func() bool { return !b.Current().Visible })
}

func TestOnChangeSeesShowAndHide(t *testing.T) {
	b := NewWithDelay(20 * time.Millisecond)

	events := make(chan model.Message, 4)
	b.OnChange(func(m model.Message) { events <- m })

	b.Show("hello", model.KindError)

	first := <-events
	if !first.Visible || first.Text != "hello" || first.Kind != model.KindError {
		t.Fatalf("first event = %+v", first)
	}

	select {
	case second := <-events:
		if second.Visible {
			t.Fatalf("second event = %+v, want hidden", second)
		}
	case <-time.After(time.Second):
		t.Fatal("no hide event delivered")
	}
}
