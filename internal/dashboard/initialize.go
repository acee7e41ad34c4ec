package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pulse.transitlab.org/internal/charts"
	"pulse.transitlab.org/internal/logging"
	"pulse.transitlab.org/internal/render"
)

const stageGap = 500 * time.Millisecond

// Messages shown during initialization.
const (
	MsgInitializing    = "🔄 Initializing AI Transport System..."
	MsgLoadingNetwork  = "🗺️ Loading transport network..."
	MsgGeneratingStats = "📊 Generating analytics..."
	MsgActivating      = "⚡ Activating real-time features..."
	MsgInitialized     = "🎉 AI Transport System Fully Initialized!"
	MsgLimited         = "⚠️ System initialization completed with some limitations"
)

var errEmptyNetwork = errors.New("transport network has no vehicles")

const initSequence = "initialize"

// InitializeSystem runs the staged start-up: animate every metric from zero,
// draw the network, build the charts, start the active loops and report
// success. A failing stage leaves the completed stages in place, raises a
// warning and moves the system to StateLimited.
func (d *Dashboard) InitializeSystem() error {
	if d.State() == StateInitializing {
		return ErrAlreadyInitializing
	}
	if err := d.beginSequence(initSequence); err != nil {
		return ErrAlreadyInitializing
	}
	if err := d.Start(); err != nil {
		d.endSequence(initSequence)
		return fmt.Errorf("start dashboard: %w", err)
	}

	d.setState(StateInitializing)
	d.mu.Lock()
	d.lastError = ""
	d.mu.Unlock()
	d.showLoading(MsgInitializing)
	logging.LogOperation(d.logger, "initialization_started")

	err := d.mutator.Reveal(d.cfg.InitialAnimation, func() {
		logging.LogOperation(d.logger, "initialization_stage_completed", slog.String("stage", "metrics"))
		d.runSequence(initSequence, []step{
			{name: "network", delay: stageGap, run: d.stageNetwork},
			{name: "charts", delay: stageGap, run: d.stageCharts},
			{name: "realtime", delay: stageGap, run: d.stageRealtime},
			{name: "complete", delay: 2 * stageGap, run: d.stageComplete},
		}, d.initializationFailed, nil)
	})
	if err != nil {
		d.endSequence(initSequence)
		d.initializationFailed("metrics", err)
	}
	return nil
}

func (d *Dashboard) stageNetwork() error {
	d.updateLoading(MsgLoadingNetwork)
	net := d.Network()
	if net == nil {
		return ErrNotStarted
	}
	if len(net.Vehicles()) == 0 {
		return errEmptyNetwork
	}
	net.Publish(d.sink)
	return nil
}

func (d *Dashboard) stageCharts() error {
	d.updateLoading(MsgGeneratingStats)
	if d.charts == nil {
		d.renderPlaceholders()
		return nil
	}
	d.stopRolling()
	d.charts.RenderChart(charts.AnalyticsChart, d.chartGen.HourlyVehicleActivity())
	d.charts.RenderChart(charts.RouteChart, charts.RouteOptimisation())
	d.charts.RenderChart(charts.PassengerChart, charts.StationFlow())
	return nil
}

func (d *Dashboard) stageRealtime() error {
	d.updateLoading(MsgActivating)
	d.mutator.StartActive()
	d.setState(StateActive)
	return nil
}

func (d *Dashboard) stageComplete() error {
	d.hideLoading()
	d.notifier.Notify(MsgInitialized, render.SeveritySuccess)
	logging.LogOperation(d.logger, "initialization_completed")
	return nil
}

func (d *Dashboard) initializationFailed(stage string, err error) {
	d.mu.Lock()
	d.lastError = fmt.Sprintf("%s: %v", stage, err)
	d.mu.Unlock()
	d.hideLoading()
	d.setState(StateLimited)
	d.notifier.Notify(MsgLimited, render.SeverityWarning)
}
