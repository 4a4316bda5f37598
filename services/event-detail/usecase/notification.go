package usecase

import (
	"sync"
	"time"

	"github.com/event-planner-client/common/scheduler"
	"github.com/event-planner-client/services/event-detail/models"
)

// DefaultNotificationTTL is how long a message stays visible unless dismissed
const DefaultNotificationTTL = 3 * time.Second

// GenericFailureMessage is shown when the event service could not be reached
const GenericFailureMessage = "Something went wrong. Please check your connection and try again."

// Notifier is a single-slot message surface with auto-dismiss.
// A new message replaces the current one immediately; nothing is queued.
type Notifier struct {
	timers *scheduler.Group
	ttl    time.Duration

	mu      sync.Mutex
	current models.Notification
	seq     uint64
	dismiss scheduler.Timer
}

// NewNotifier creates a notifier whose dismiss timers belong to the given group
func NewNotifier(timers *scheduler.Group, ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifier{timers: timers, ttl: ttl}
}

func (n *Notifier) Success(text string) { n.Show(text, models.VariantSuccess) }
func (n *Notifier) Danger(text string)  { n.Show(text, models.VariantDanger) }
func (n *Notifier) Info(text string)    { n.Show(text, models.VariantInfo) }

// Show replaces the current message and restarts the dismiss timer
func (n *Notifier) Show(text string, variant models.Variant) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.dismiss != nil {
		n.dismiss.Stop()
	}
	n.seq++
	seq := n.seq
	n.current = models.Notification{Text: text, Variant: variant, Visible: true}
	n.dismiss = n.timers.AfterFunc(n.ttl, func() { n.expire(seq) })
}

// Dismiss hides the current message early
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.dismiss != nil {
		n.dismiss.Stop()
		n.dismiss = nil
	}
	n.current.Visible = false
}

// Current returns the message slot
func (n *Notifier) Current() models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// a newer message owns the slot
	if seq != n.seq {
		return
	}
	n.current.Visible = false
	n.dismiss = nil
}
