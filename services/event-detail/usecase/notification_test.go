package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/event-planner-client/common/scheduler"
	"github.com/event-planner-client/services/event-detail/models"
)

func newTestNotifier() (*Notifier, *scheduler.ManualClock) {
	clock := scheduler.NewManualClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	return NewNotifier(scheduler.NewGroup(clock), 3*time.Second), clock
}

func TestNotifierAutoDismiss(t *testing.T) {
	n, clock := newTestNotifier()

	n.Success("Saved")
	assert.Equal(t, models.Notification{Text: "Saved", Variant: models.VariantSuccess, Visible: true}, n.Current())

	clock.Advance(2999 * time.Millisecond)
	assert.True(t, n.Current().Visible)

	clock.Advance(time.Millisecond)
	assert.False(t, n.Current().Visible)
}

func TestNotifierReplaceKeepsNewerMessage(t *testing.T) {
	n, clock := newTestNotifier()

	n.Success("first")
	clock.Advance(2 * time.Second)
	n.Danger("second")

	// the first message's deadline passes without hiding the second
	clock.Advance(1500 * time.Millisecond)
	cur := n.Current()
	assert.True(t, cur.Visible)
	assert.Equal(t, "second", cur.Text)
	assert.Equal(t, models.VariantDanger, cur.Variant)

	clock.Advance(1500 * time.Millisecond)
	assert.False(t, n.Current().Visible)
}

func TestNotifierDismiss(t *testing.T) {
	n, clock := newTestNotifier()

	n.Info("hello")
	n.Dismiss()
	assert.False(t, n.Current().Visible)
	assert.Equal(t, 0, clock.Pending())
}
