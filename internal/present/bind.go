package present

import (
	"fmt"
	"sort"

	"github.com/couchcryptid/neo-explorer-service/internal/catalog"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
)

// Cell is one rendered table cell.
type Cell struct {
	Value      any    `json:"value"`
	Text       string `json:"text"`
	Background string `json:"background,omitempty"`
	Foreground string `json:"foreground,omitempty"`
}

// TableView is the rendered table. Total counts every row of the result,
// Rows only those shown.
type TableView struct {
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
	Total   int      `json:"total"`
}

// SeriesView is one chart series. Colors is per point; Color is the line color.
type SeriesView struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors,omitempty"`
	Color  string    `json:"color,omitempty"`
}

// ChartView is a chart spec with its data resolved.
type ChartView struct {
	Type   catalog.ChartType `json:"type"`
	Title  string            `json:"title,omitempty"`
	XLabel string            `json:"x_label,omitempty"`
	YLabel string            `json:"y_label,omitempty"`
	Labels []string          `json:"labels"`
	Series []SeriesView      `json:"series"`
	Hole   float64           `json:"hole,omitempty"`
}

// FieldView is a formatted highlight field or metric.
type FieldView struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// HighlightView is the formatted detail box.
type HighlightView struct {
	Title  string      `json:"title"`
	Fields []FieldView `json:"fields"`
}

// PanelView is a catalog panel ready for rendering. Empty panels carry only
// their title, metrics and message.
type PanelView struct {
	Key          string         `json:"key"`
	Title        string         `json:"title"`
	TitleColor   string         `json:"title_color,omitempty"`
	Table        *TableView     `json:"table,omitempty"`
	Highlight    *HighlightView `json:"highlight,omitempty"`
	Metrics      []FieldView    `json:"metrics,omitempty"`
	Chart        *ChartView     `json:"chart,omitempty"`
	EmptyMessage string         `json:"empty_message,omitempty"`
}

// Bind renders one panel.
func Bind(p catalog.Panel) (PanelView, error) {
	view := PanelView{
		Key:        p.Key,
		Title:      p.Title,
		TitleColor: p.TitleColor,
		Metrics:    bindMetrics(p.Metrics),
	}
	if p.Table.Empty() {
		view.EmptyMessage = p.EmptyMessage
		if view.EmptyMessage == "" {
			view.EmptyMessage = catalog.NoDataMessage
		}
		return view, nil
	}

	tv, err := BindTable(p.Table, p.DisplayLimit, p.ColorScales)
	if err != nil {
		return PanelView{}, fmt.Errorf("panel %s: %w", p.Key, err)
	}
	view.Table = tv
	view.Highlight = bindHighlight(p.Highlight)

	if p.Chart != nil {
		cv, err := BindChart(p.Table, *p.Chart)
		if err != nil {
			return PanelView{}, fmt.Errorf("panel %s: %w", p.Key, err)
		}
		view.Chart = cv
	}
	return view, nil
}

// BindAll renders panels in order.
func BindAll(panels []catalog.Panel) ([]PanelView, error) {
	out := make([]PanelView, 0, len(panels))
	for _, p := range panels {
		v, err := Bind(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// BindTable renders the first limit rows (all when limit <= 0). Each color
// scale spans the value range of the rows shown.
func BindTable(t *table.Table, limit int, scales []catalog.ColorScale) (*TableView, error) {
	shown := t.Head(limit)
	if limit <= 0 {
		shown = t
	}

	type scale struct {
		palette Palette
		lo, hi  float64
	}
	byColumn := make(map[int]scale, len(scales))
	for _, s := range scales {
		i := shown.Index(s.Column)
		if i < 0 {
			continue
		}
		pal, err := LookupPalette(s.Palette)
		if err != nil {
			return nil, err
		}
		lo, hi, ok := shown.Range(s.Column, 0)
		if !ok {
			continue
		}
		byColumn[i] = scale{palette: pal, lo: lo, hi: hi}
	}

	view := &TableView{Columns: shown.Names(), Rows: make([][]Cell, shown.Len()), Total: t.Len()}
	for r, row := range shown.Rows {
		cells := make([]Cell, len(row))
		for i, v := range row {
			col := shown.Columns[i]
			cells[i] = Cell{Value: v, Text: FormatCell(v, col.Kind, col.Name)}
			if sc, ok := byColumn[i]; ok {
				if f, isNum := table.ToFloat(v); isNum {
					bg := ColorFor(f, sc.lo, sc.hi, sc.palette)
					cells[i].Background = bg
					cells[i].Foreground = TextColor(bg)
				}
			}
		}
		view.Rows[r] = cells
	}
	return view, nil
}

// BindChart resolves a chart spec against a table.
func BindChart(t *table.Table, spec catalog.Chart) (*ChartView, error) {
	rows := t.Head(spec.Limit)
	if spec.Limit <= 0 {
		rows = t
	}
	order := make([]int, rows.Len())
	for i := range order {
		order[i] = i
	}
	if spec.Ascending && spec.Y != "" {
		sort.SliceStable(order, func(a, b int) bool {
			return rows.Float(order[a], spec.Y) < rows.Float(order[b], spec.Y)
		})
	}

	view := &ChartView{
		Type:   spec.Type,
		Title:  spec.Title,
		XLabel: spec.XLabel,
		YLabel: spec.YLabel,
		Hole:   spec.Hole,
		Labels: make([]string, len(order)),
	}
	for i, r := range order {
		view.Labels[i] = rows.String(r, spec.X)
	}

	var pal Palette
	if spec.Palette != "" {
		var err error
		if pal, err = LookupPalette(spec.Palette); err != nil {
			return nil, err
		}
	}

	columns := spec.Series
	if len(columns) == 0 && spec.Y != "" {
		columns = []string{spec.Y}
	}
	var lineColors []string
	if spec.Palette != "" {
		lineColors = pal.Discrete(len(columns))
	}
	for ci, name := range columns {
		s := SeriesView{Name: name, Values: make([]float64, len(order))}
		for i, r := range order {
			s.Values[i] = rows.Float(r, name)
		}
		switch {
		case spec.Type == catalog.ChartLine:
			s.Color = spec.SeriesColors[name]
			if s.Color == "" && lineColors != nil {
				s.Color = lineColors[ci]
			}
		default:
			s.Colors = pointColors(view.Labels, s.Values, spec, pal)
		}
		view.Series = append(view.Series, s)
	}
	return view, nil
}

// pointColors picks a color per point: explicit label colors first, then
// cycled colors for qualitative palettes, then the value ramp.
func pointColors(labels []string, values []float64, spec catalog.Chart, pal Palette) []string {
	if len(spec.SeriesColors) > 0 {
		out := make([]string, len(labels))
		for i, l := range labels {
			out[i] = spec.SeriesColors[l]
		}
		return out
	}
	if spec.Palette == "" {
		return nil
	}
	if pal.qualitative {
		return pal.Discrete(len(values))
	}
	lo, hi := minMax(values)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = ColorFor(v, lo, hi, pal)
	}
	return out
}

func minMax(values []float64) (lo, hi float64) {
	for i, v := range values {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	return lo, hi
}

func bindHighlight(h *catalog.Highlight) *HighlightView {
	if h == nil {
		return nil
	}
	out := &HighlightView{Title: h.Title, Fields: make([]FieldView, len(h.Fields))}
	for i, f := range h.Fields {
		text := FormatNumber(f.Value, f.Format)
		if isIdentifier(f.Label) {
			text = table.FormatValue(f.Value)
		}
		if f.Unit != "" {
			text += " " + f.Unit
		}
		out.Fields[i] = FieldView{Label: f.Label, Text: text}
	}
	return out
}

func bindMetrics(metrics []catalog.Metric) []FieldView {
	if len(metrics) == 0 {
		return nil
	}
	out := make([]FieldView, len(metrics))
	for i, m := range metrics {
		out[i] = FieldView{Label: m.Label, Text: FormatNumber(m.Value, metricFormat(m.Value))}
	}
	return out
}

// metricFormat drops the decimals of whole numbers.
func metricFormat(v float64) string {
	if v == float64(int64(v)) {
		return "%.0f"
	}
	return "%.2f"
}
