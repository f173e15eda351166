// Package notify implements the single transient message banner.
package notify

import (
	"sync"
	"time"

	"github.com/aparkhill/activity-enrollment-client/internal/model"
)

// DefaultHideDelay is how long a message stays visible before auto-hiding.
const DefaultHideDelay = 5000 * time.Millisecond

// Banner holds the one message slot shared by every action handler.
// Each Show replaces the pending hide timer, so a message always gets
// the full delay even when it overwrites an earlier one. Safe for
// concurrent use.
type Banner struct {
	mu       sync.Mutex
	msg      model.Message
	delay    time.Duration
	timer    *time.Timer
	gen      uint64
	onChange func(model.Message)
}

// New constructs a Banner with the default auto-hide delay.
func New() *Banner {
	return NewWithDelay(DefaultHideDelay)
}

// NewWithDelay constructs a Banner with a custom auto-hide delay.
// Tests use short delays to exercise the timer without waiting.
func NewWithDelay(delay time.Duration) *Banner {
	return &Banner{delay: delay}
}

// OnChange registers a callback invoked after every visible-state change.
// The callback must not call back into the Banner.
func (b *Banner) OnChange(fn func(model.Message)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// Show replaces the displayed message, makes the banner visible, and
// restarts the auto-hide timer. Any hide scheduled for the previous
// message is cancelled first.
func (b *Banner) Show(text string, kind model.Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	// Stop cannot cancel a timer that already fired and is waiting on
	// the mutex; the generation check in hide covers that window.
	b.gen++
	gen := b.gen
	b.msg = model.Message{Text: text, Kind: kind, Visible: true}
	b.timer = time.AfterFunc(b.delay, func() { b.hide(gen) })

	if b.onChange != nil {
		b.onChange(b.msg)
	}
}

// Current returns the banner's message slot, visible or not.
func (b *Banner) Current() model.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg
}

// hide runs on timer expiry. The text and kind stay readable so the
// host UI can keep rendering the last outcome if it wants to.
func (b *Banner) hide(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen || !b.msg.Visible {
		return
	}
	b.msg.Visible = false
	if b.onChange != nil {
		b.onChange(b.msg)
	}
}
