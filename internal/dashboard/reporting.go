package dashboard

import (
	"errors"
	"time"

	"pulse.transitlab.org/internal/render"
	"pulse.transitlab.org/internal/report"
)

// Report messages.
const (
	MsgReportStarting  = "📊 Generating comprehensive analytics report..."
	MsgReportAnalyzing = "📈 Analyzing performance metrics..."
	MsgReportCompiling = "📋 Compiling recommendations..."
	MsgReportDone      = "📄 Analytics report generated and downloaded successfully!"
	MsgReportFailed    = "❌ Analytics report could not be generated"
)

var errNoExporter = errors.New("no report exporter configured")

const reportSequence = "report"

// GenerateReport runs the staged report sequence, then hands the report to the
// exporter. onDone, when set, receives the exported report or the error.
func (d *Dashboard) GenerateReport(onDone func(report.Report, error)) error {
	if err := d.beginSequence(reportSequence); err != nil {
		return err
	}
	var built report.Report

	d.showLoading(MsgReportStarting)
	d.runSequence(reportSequence, []step{
		{name: "analyze", delay: time.Second, run: func() error { d.updateLoading(MsgReportAnalyzing); return nil }},
		{name: "compile", delay: time.Second, run: func() error { d.updateLoading(MsgReportCompiling); return nil }},
		{name: "export", delay: 1500 * time.Millisecond, run: func() error {
			d.hideLoading()
			if d.exporter == nil {
				return errNoExporter
			}
			built = report.Build(d.sched.Now(), d.store.Snapshot())
			return d.exporter.ExportReport(built)
		}},
	}, func(_ string, err error) {
		d.hideLoading()
		d.notifier.Notify(MsgReportFailed, render.SeverityError)
		if onDone != nil {
			onDone(report.Report{}, err)
		}
	}, func() {
		d.notifier.Notify(MsgReportDone, render.SeveritySuccess)
		if onDone != nil {
			onDone(built, nil)
		}
	})
	return nil
}
