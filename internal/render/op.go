package render

// OpType names a render operation on the stream.
type OpType string

const (
	OpText           OpType = "text"
	OpMarkerPosition OpType = "marker_position"
	OpMarkerDetail   OpType = "marker_detail"
	OpRoutePath      OpType = "route_path"
	OpChart          OpType = "chart"
	OpChartPoint     OpType = "chart_point"
	OpNotify         OpType = "notify"
)

// Op is a single boundary write, serialised to stream clients.
type Op struct {
	Seq      uint64   `json:"seq"`
	Type     OpType   `json:"type"`
	Target   string   `json:"target,omitempty"`
	Text     string   `json:"text,omitempty"`
	Lat      float64  `json:"lat,omitempty"`
	Lng      float64  `json:"lng,omitempty"`
	Color    string   `json:"color,omitempty"`
	Path     []Point  `json:"path,omitempty"`
	Chart    *Chart   `json:"chart,omitempty"`
	Label    string   `json:"label,omitempty"`
	Value    float64  `json:"value,omitempty"`
	Severity Severity `json:"severity,omitempty"`
}

func textOp(id, text string) Op {
	return Op{Type: OpText, Target: id, Text: text}
}

func markerPositionOp(id string, lat, lng float64) Op {
	return Op{Type: OpMarkerPosition, Target: id, Lat: lat, Lng: lng}
}

func markerDetailOp(id, html string) Op {
	return Op{Type: OpMarkerDetail, Target: id, Text: html}
}

func routePathOp(id, color string, path []Point) Op {
	return Op{Type: OpRoutePath, Target: id, Color: color, Path: append([]Point(nil), path...)}
}

func chartOp(id string, chart Chart) Op {
	return Op{Type: OpChart, Target: id, Chart: &chart}
}

func chartPointOp(id, label string, value float64) Op {
	return Op{Type: OpChartPoint, Target: id, Label: label, Value: value}
}

func notifyOp(message string, severity Severity) Op {
	return Op{Type: OpNotify, Text: message, Severity: severity}
}
