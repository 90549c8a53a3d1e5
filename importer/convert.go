package importer

import (
	"encoding/json"
	"strings"

	"github.com/slidekit/slidekit/model"
	"github.com/slidekit/slidekit/norm"
	"github.com/slidekit/slidekit/raw"
	"github.com/slidekit/slidekit/richtext"
)

// Text layout constants used to recompute box heights from flattened lines.
const (
	lineHeight  = 1.5
	textPadding = 20.0
	minExtent   = 1.0
)

type convCtx struct {
	scaleX, scaleY float64
	slideIndex     int
}

// convertNode converts one raw node into an internal element. It never
// fails on malformed fields; every access has a fallback. The second result
// is false only for nodes with nothing to keep (empty groups).
func (imp *Importer) convertNode(n *raw.Node, cc convCtx) (model.Element, bool) {
	el := model.Element{
		ID:       imp.cfg.ElementIDs(),
		Name:     n.Name,
		X:        scaled(n.Left, cc.scaleX, norm.FallbackPosition),
		Y:        scaled(n.Top, cc.scaleY, norm.FallbackPosition),
		Width:    extent(n.Width, cc.scaleX),
		Height:   extent(n.Height, cc.scaleY),
		Rotation: raw.NumOr(n.Rotate, 0),
		Opacity:  n.OpacityOf(),
	}

	switch n.Kind() {
	case raw.KindShape:
		// Some external parsers misclassify straight connectors as
		// shapes; a literal "line" token re-types the element.
		if strings.EqualFold(strings.TrimSpace(n.ShapType), "line") {
			el.Type = model.ElementLine
			el.Line = imp.convertLine(n, &el)
			return el, true
		}
		el.Type = model.ElementShape
		el.Shape = imp.convertShape(n, &el)
	case raw.KindImage:
		el.Type = model.ElementImage
		el.Image = &model.ImagePayload{Src: model.Inline(n.Src), FixedRatio: true}
	case raw.KindLine:
		el.Type = model.ElementLine
		el.Line = imp.convertLine(n, &el)
	case raw.KindChart:
		el.Type = model.ElementChart
		el.Chart = convertChart(n)
	case raw.KindTable:
		el.Type = model.ElementTable
		el.Table = convertTable(n, cc)
	case raw.KindVideo:
		el.Type = model.ElementVideo
		el.Video = &model.MediaPayload{Src: model.Inline(n.Src)}
	case raw.KindAudio:
		el.Type = model.ElementAudio
		el.Audio = &model.MediaPayload{Src: model.Inline(n.Src)}
	case raw.KindMath:
		el.Type = model.ElementLatex
		el.Latex = &model.LatexPayload{Formula: n.Formula, Color: norm.NormalizeColor(n.Color)}
	case raw.KindGroup:
		return imp.convertGroup(n, cc, el)
	default:
		// Text, and the fallback for type tokens nothing recognizes.
		el.Type = model.ElementText
		el.Text = imp.convertText(n, &el)
	}
	return el, true
}

// convertText flattens the markup content and recomputes the box height from
// the parsed line count; the larger of computed and supplied height wins so
// multi-line text never imports clipped.
func (imp *Importer) convertText(n *raw.Node, el *model.Element) *model.TextPayload {
	flat, lines := richtext.Flatten(n.Content)
	style := richtext.ExtractStyle(n.Content)

	fontSize := style.FontSize
	if fontSize <= 0 {
		pt, ok := raw.Num(n.FontSize)
		fontSize = norm.PointsToPixelsOr(pt, ok, norm.FallbackFontSize)
	}

	if lines > 0 {
		computed := float64(lines)*fontSize*lineHeight + textPadding
		if computed > el.Height {
			el.Height = computed
		}
	}

	color := style.Color
	if color == "" && n.Color != "" {
		color = norm.NormalizeColor(n.Color)
	}
	align := style.Align
	if align == "" && n.Align != "" {
		align = norm.NormalizeAlign(n.Align)
	}
	fontName := style.FontName
	if fontName == "" {
		fontName = n.FontName
	}

	return &model.TextPayload{
		Content:    flat,
		FontSize:   fontSize,
		FontName:   fontName,
		Color:      color,
		Align:      align,
		Bold:       style.Bold,
		Italic:     style.Italic,
		Underline:  style.Underline,
		LineHeight: lineHeight,
	}
}

func (imp *Importer) convertShape(n *raw.Node, el *model.Element) *model.ShapePayload {
	fill, gradient := resolveFill(n.Fill)
	sp := &model.ShapePayload{
		Category: norm.ClassifyShape(n.ShapType),
		Fill:     fill,
		Gradient: gradient,
	}
	if sp.Category == model.ShapeCustom {
		sp.Path = n.Path
		if len(n.ViewBox) == 2 {
			sp.ViewBox = []float64{n.ViewBox[0], n.ViewBox[1]}
		}
	}
	if strings.TrimSpace(n.Content) != "" {
		sp.Text = imp.convertText(n, el)
	}
	return sp
}

// convertLine builds a connector payload. Start/End points come from the
// source when present, otherwise the line spans the element box diagonally.
func (imp *Importer) convertLine(n *raw.Node, el *model.Element) *model.LinePayload {
	lp := &model.LinePayload{
		Start: [2]float64{0, 0},
		End:   [2]float64{el.Width, el.Height},
		Width: raw.NumOr(n.LineWidth, 2),
		Style: "solid",
	}
	if len(n.Start) == 2 {
		lp.Start = [2]float64{n.Start[0], n.Start[1]}
	}
	if len(n.End) == 2 {
		lp.End = [2]float64{n.End[0], n.End[1]}
	}
	if n.LineStyle == "dashed" {
		lp.Style = "dashed"
	}
	switch {
	case n.Color != "":
		lp.Color = norm.NormalizeColor(n.Color)
	case n.Fill != nil && n.Fill.Value != "":
		lp.Color = norm.NormalizeColor(n.Fill.Value)
	default:
		lp.Color = norm.DefaultColor
	}
	return lp
}

func convertChart(n *raw.Node) *model.ChartPayload {
	cp := &model.ChartPayload{ChartType: n.ChartType}
	if cp.ChartType == "" {
		cp.ChartType = "bar"
	}
	if len(n.Data) > 0 {
		var data raw.ChartData
		if err := json.Unmarshal(n.Data, &data); err == nil {
			cp.Labels = data.Labels
			cp.Legends = data.Legends
			cp.Series = data.Series
		}
	}
	return cp
}

func convertTable(n *raw.Node, cc convCtx) *model.TablePayload {
	tp := &model.TablePayload{}
	if len(n.Data) == 0 {
		return tp
	}
	var data raw.TableData
	if err := json.Unmarshal(n.Data, &data); err != nil {
		return tp
	}
	tp.Rows = make([][]model.TableCell, len(data.Rows))
	for i, row := range data.Rows {
		cells := make([]model.TableCell, len(row))
		for j, c := range row {
			cells[j] = model.TableCell{Text: c.Text, RowSpan: c.RowSpan, ColSpan: c.ColSpan}
		}
		tp.Rows[i] = cells
	}
	for _, w := range data.ColWidths {
		tp.ColWidths = append(tp.ColWidths, norm.PointsToPixels(w)*cc.scaleX)
	}
	return tp
}

// convertGroup flattens arbitrarily nested groups into a single level:
// descendants of nested groups are spliced directly into the outermost
// group's children, their coordinates recomputed relative to the outermost
// origin. Groups never contain groups.
func (imp *Importer) convertGroup(n *raw.Node, cc convCtx, el model.Element) (model.Element, bool) {
	el.Type = model.ElementGroup

	var children []model.Element
	var collect func(nodes []raw.Node)
	collect = func(nodes []raw.Node) {
		for i := range nodes {
			c := &nodes[i]
			if c.Kind() == raw.KindGroup {
				collect(c.Elements)
				continue
			}
			child, ok := imp.convertNode(c, cc)
			if !ok {
				continue
			}
			// Raw coordinates are absolute page positions; children
			// are stored relative to the group origin.
			child.X -= el.X
			child.Y -= el.Y
			children = append(children, child)
		}
	}
	collect(n.Elements)

	if len(children) == 0 {
		return el, false
	}
	for i := range children {
		children[i].ZIndex = i
	}
	el.Group = &model.GroupPayload{Children: children}
	return el, true
}

// resolveFill maps the raw tagged fill onto the internal union. Gradient
// fills keep the first stop as the representative flat color and surface the
// full descriptor through the side channel.
func resolveFill(f *raw.Fill) (model.Fill, *model.Gradient) {
	if f == nil {
		return model.Fill{Kind: model.FillColor, Color: "#ffffff"}, nil
	}
	switch strings.ToLower(f.Type) {
	case "image":
		src := ""
		if f.Image != nil {
			src = f.Image.Src
		}
		img := model.Inline(src)
		return model.Fill{Kind: model.FillImage, Image: &img}, nil
	case "gradient":
		g := convertGradient(f.Gradient)
		color := norm.DefaultColor
		if g != nil && len(g.Stops) > 0 {
			color = g.Stops[0].Color
		}
		return model.Fill{Kind: model.FillGradient, Color: color, Gradient: g}, g
	default:
		return model.Fill{Kind: model.FillColor, Color: norm.NormalizeColor(f.Value)}, nil
	}
}

func convertGradient(g *raw.Gradient) *model.Gradient {
	if g == nil {
		return nil
	}
	out := &model.Gradient{Kind: "linear", Angle: g.Rotate}
	if strings.ToLower(g.Type) == "radial" {
		out.Kind = "radial"
	}
	for _, stop := range g.Colors {
		out.Stops = append(out.Stops, model.GradientStop{
			Color:  norm.NormalizeColor(stop.Color),
			Offset: stop.Pos / 100,
		})
	}
	return out
}

// scaled converts an optional point coordinate to canvas pixels. The
// fallback is already in pixels and is not scaled.
func scaled(p *float64, scale, fallback float64) float64 {
	if v, ok := raw.Num(p); ok {
		return norm.PointsToPixels(v) * scale
	}
	return fallback
}

// extent is scaled for widths and heights, clamped to the minimum extent.
func extent(p *float64, scale float64) float64 {
	v := scaled(p, scale, norm.FallbackSize)
	if v < minExtent {
		return minExtent
	}
	return v
}
