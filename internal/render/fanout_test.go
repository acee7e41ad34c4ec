package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type textOnlySink struct {
	texts map[string]string
}

func (s *textOnlySink) SetText(id, text string)                    { s.texts[id] = text }
func (s *textOnlySink) SetMarkerPosition(string, float64, float64) {}
func (s *textOnlySink) SetMarkerDetail(string, string)             {}
func (s *textOnlySink) SetRoutePath(string, string, []Point)       {}

type notifyRecorder struct {
	messages []string
}

func (n *notifyRecorder) Notify(message string, _ Severity) {
	n.messages = append(n.messages, message)
}

func TestFanoutCapabilities(t *testing.T) {
	plain := &textOnlySink{texts: map[string]string{}}
	notes := &notifyRecorder{}
	board := NewBoard(BoardConfig{})

	f := NewFanout(plain, notes, board, "not a sink")
	assert.True(t, f.HasCharts())

	f.SetText("avgDelay", "3.2")
	f.Notify("hello", SeverityInfo)
	f.RenderChart("c", Chart{Title: "t"})

	assert.Equal(t, "3.2", plain.texts["avgDelay"])
	assert.Equal(t, []string{"hello"}, notes.messages)
	got, _ := board.Text("avgDelay")
	assert.Equal(t, "3.2", got)
	_, ok := board.Chart("c")
	assert.True(t, ok)
	assert.Len(t, board.Notifications(), 1)
}

func TestFanoutWithoutCharts(t *testing.T) {
	f := NewFanout(&textOnlySink{texts: map[string]string{}})
	assert.False(t, f.HasCharts())
	f.AppendChartPoint("c", "x", 1)
}
