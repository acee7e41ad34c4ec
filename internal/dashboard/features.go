package dashboard

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"pulse.transitlab.org/internal/logging"
	"pulse.transitlab.org/internal/metrics"
	"pulse.transitlab.org/internal/render"
)

// FollowUp is an info notification sent some time after activation.
type FollowUp struct {
	Delay   time.Duration
	Message func(d *Dashboard) string
}

func fixed(msg string) func(*Dashboard) string {
	return func(*Dashboard) string { return msg }
}

// Feature is an activatable showcase feature.
type Feature struct {
	Name       string
	Button     string
	ButtonText string
	Message    string
	FollowUps  []FollowUp
}

// Features are keyed by their API name.
var Features = map[string]Feature{
	"blockchain": {
		Name:       "Blockchain",
		Button:     "blockchainBtn",
		ButtonText: "ACTIVE",
		Message:    "🔗 Blockchain activated! Secure transport ledger is now recording all transactions.",
		FollowUps: []FollowUp{
			{Delay: 2 * time.Second, Message: fixed("📊 Latest block mined: #47239 | Transactions: 156 | Security: 100%")},
		},
	},
	"digitalTwin": {
		Name:       "Digital Twin",
		Button:     "digitalTwinBtn",
		ButtonText: "RUNNING",
		Message:    "🖥️ Digital Twin simulation started! Creating virtual city model...",
		FollowUps: []FollowUp{
			{Delay: 3 * time.Second, Message: fixed("🌐 Virtual Accra loaded! Running 1000+ simulations per second.")},
		},
	},
	"voice": {
		Name:       "Voice AI",
		Button:     "voiceBtn",
		ButtonText: "LISTENING",
		Message:    `🎤 Voice Assistant activated! Try saying "Show route status" or "Traffic report"`,
		FollowUps: []FollowUp{
			{Delay: 4 * time.Second, Message: fixed(`👂 Voice command detected: "What is the current traffic status?"`)},
			{Delay: 6 * time.Second, Message: trafficReply},
		},
	},
	"gamification": {
		Name:       "Gamification",
		Button:     "gameBtn",
		ButtonText: "ACTIVE",
		Message:    "🎮 Gamification system activated! Drivers can now earn points and badges.",
		FollowUps: []FollowUp{
			{Delay: 2500 * time.Millisecond, Message: fixed("🏆 Top drivers this week: Driver #23 (8,756 pts), Driver #7 (8,234 pts)")},
		},
	},
}

// trafficReply quotes the live average delay.
func trafficReply(d *Dashboard) string {
	delay, _ := d.store.Display(metrics.AvgDelay)
	return fmt.Sprintf(`🗣️ "Traffic is flowing smoothly on all major routes. Average delay is %s minutes."`, delay)
}

// FeatureNames lists the activatable features in name order.
func FeatureNames() []string {
	names := make([]string, 0, len(Features))
	for name := range Features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActivateFeature announces the feature, relabels its button and schedules
// its follow-up notifications.
func (d *Dashboard) ActivateFeature(name string) error {
	f, ok := Features[name]
	if !ok {
		return fmt.Errorf("feature %q: %w", name, ErrUnknownFeature)
	}

	d.mu.Lock()
	d.features[name] = true
	d.mu.Unlock()

	d.notifier.Notify(f.Message, render.SeveritySuccess)
	d.sink.SetText(f.Button, f.ButtonText)
	for _, fu := range f.FollowUps {
		d.tasks.After(d.sched, fu.Delay, func(time.Time) {
			d.notifier.Notify(fu.Message(d), render.SeverityInfo)
		})
	}
	logging.LogOperation(d.logger, "feature_activated", slog.String("feature", name))
	return nil
}

// MapFeatures are the map view toggles and their notifications.
var MapFeatures = map[string]string{
	"heatmap": "🔥 Heatmap view toggled! Showing passenger density hotspots.",
	"3D":      "📐 3D view toggled! Switching to satellite perspective.",
}

// ToggleMapFeature flips a map view toggle and reports the new setting.
func (d *Dashboard) ToggleMapFeature(name string) (bool, error) {
	msg, ok := MapFeatures[name]
	if !ok {
		return false, fmt.Errorf("map feature %q: %w", name, ErrUnknownFeature)
	}

	d.mu.Lock()
	on := !d.mapFeatures[name]
	d.mapFeatures[name] = on
	d.mu.Unlock()

	d.notifier.Notify(msg, render.SeverityInfo)
	logging.LogOperation(d.logger, "map_feature_toggled",
		slog.String("feature", name),
		slog.Bool("enabled", on))
	return on, nil
}

// Demo messages.
const (
	MsgDemoStarting   = "🎬 Starting comprehensive demonstration..."
	MsgDemoActivating = "🔄 Activating all systems..."
	MsgDemoConnecting = "📡 Connecting to live data feeds..."
	MsgDemoAlgorithms = "🤖 Initializing AI algorithms..."
	MsgDemoActive     = "🎉 Full system demonstration active! All features operational."
)

// DemoEvents follow the demo success notification.
var DemoEvents = []struct {
	Delay   time.Duration
	Message string
}{
	{2 * time.Second, "🚌 Live vehicle tracking engaged"},
	{4 * time.Second, "⚡ Route optimization in progress"},
	{6 * time.Second, "📊 Predictive analytics running"},
}

const demoSequence = "demo"

// StartDemo runs the staged demonstration sequence.
func (d *Dashboard) StartDemo() error {
	if err := d.beginSequence(demoSequence); err != nil {
		return err
	}
	d.showLoading(MsgDemoStarting)
	d.runSequence(demoSequence, []step{
		{name: "activate", delay: time.Second, run: func() error { d.updateLoading(MsgDemoActivating); return nil }},
		{name: "connect", delay: time.Second, run: func() error { d.updateLoading(MsgDemoConnecting); return nil }},
		{name: "algorithms", delay: time.Second, run: func() error { d.updateLoading(MsgDemoAlgorithms); return nil }},
		{name: "active", delay: 1500 * time.Millisecond, run: func() error {
			d.hideLoading()
			d.notifier.Notify(MsgDemoActive, render.SeveritySuccess)
			for _, ev := range DemoEvents {
				d.tasks.After(d.sched, ev.Delay, func(time.Time) {
					d.notifier.Notify(ev.Message, render.SeverityInfo)
				})
			}
			return nil
		}},
	}, func(string, error) { d.hideLoading() }, nil)
	return nil
}
