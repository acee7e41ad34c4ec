// Package events emits the dashboard's ambient notifications: operational
// messages while the system is active and periodic announcements.
package events

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"pulse.transitlab.org/internal/logging"
	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/schedule"
)

// BackgroundMessages is the pool of operational messages.
var BackgroundMessages = []string{
	"🚌 New vehicle deployed on Route C",
	"⚡ Traffic optimization activated",
	"👥 Peak passenger flow detected",
	"🔋 Electric bus charging completed",
	"📊 Route efficiency improved by 12%",
	"🎯 Arrival prediction accuracy: 94%",
}

// AnnouncementPrefix is prepended to every announcement.
const AnnouncementPrefix = "📢 "

// Announcements is the pool of periodic announcements, without prefix.
var Announcements = []string{
	"Route optimization completed - 15% improvement in efficiency",
	"New vehicle joined Route 3 - capacity increased",
	"Traffic cleared on Ring Road - delays reduced",
	"Peak hour detected - additional vehicles deployed",
	"Maintenance completed on Route 7 - service restored",
	"Weather update: Clear skies - optimal conditions",
	`Driver achievement unlocked: "Safety Champion"`,
	"Carbon footprint reduced by 2.3 tons today",
}

// Loop describes one notification loop.
type Loop struct {
	Name        string
	Interval    time.Duration
	Probability float64
	Messages    []string
	Prefix      string
	Severity    render.Severity
	// Gate, when set, must report true for the loop to fire.
	Gate func() bool
}

// Background is the 2s operational loop. It fires with probability 0.06 per
// tick, and only while active reports true.
func Background(active func() bool) Loop {
	return Loop{
		Name:        "background",
		Interval:    2 * time.Second,
		Probability: 0.06,
		Messages:    BackgroundMessages,
		Severity:    render.SeverityInfo,
		Gate:        active,
	}
}

// Announcement is the 15s announcement loop. It fires on every tick.
func Announcement() Loop {
	return Loop{
		Name:        "announcement",
		Interval:    15 * time.Second,
		Probability: 1.0,
		Messages:    Announcements,
		Prefix:      AnnouncementPrefix,
		Severity:    render.SeverityInfo,
	}
}

// Notifier runs notification loops against a render.Notifier.
type Notifier struct {
	sched  schedule.Scheduler
	out    render.Notifier
	rng    *rand.Rand
	logger *slog.Logger

	mu      sync.Mutex
	running map[string]schedule.Handle
}

// NewNotifier creates a Notifier with no loops running.
func NewNotifier(sched schedule.Scheduler, out render.Notifier, rng *rand.Rand, logger *slog.Logger) *Notifier {
	return &Notifier{
		sched:   sched,
		out:     out,
		rng:     rng,
		logger:  logging.ForComponent(logger, "events"),
		running: make(map[string]schedule.Handle),
	}
}

// Start registers loop. Starting a loop whose name is already running is a
// no-op.
func (n *Notifier) Start(loop Loop) {
	if loop.Interval <= 0 || len(loop.Messages) == 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.running[loop.Name]; ok {
		return
	}
	n.running[loop.Name] = n.sched.Every(loop.Interval, func(time.Time) { n.Fire(loop) })
	logging.LogOperation(n.logger, "notification_loop_started",
		slog.String("loop", loop.Name),
		slog.Duration("interval", loop.Interval),
		slog.Float64("probability", loop.Probability))
}

// Running reports whether the named loop is registered.
func (n *Notifier) Running(name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.running[name]
	return ok
}

// Stop cancels every loop.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for name, h := range n.running {
		h.Cancel()
		delete(n.running, name)
	}
}

// Fire performs one tick of loop: a Bernoulli trial with the loop's
// probability, then a uniform pick from its pool. It returns the message sent,
// or "" when the trial failed.
func (n *Notifier) Fire(loop Loop) string {
	if loop.Gate != nil && !loop.Gate() {
		return ""
	}
	if len(loop.Messages) == 0 || n.rng.Float64() >= loop.Probability {
		logging.LogTick(n.logger, loop.Name, slog.Bool("fired", false))
		return ""
	}
	msg := loop.Prefix + loop.Messages[n.rng.IntN(len(loop.Messages))]
	n.out.Notify(msg, loop.Severity)
	logging.LogTick(n.logger, loop.Name, slog.Bool("fired", true))
	return msg
}
