package pptx

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"path"
	"strings"

	"github.com/slidekit/slidekit/raw"
)

// convertTree flattens one spTree into raw nodes in document order.
func (a *archive) convertTree(tree *xmlShapeTree, rels map[string]string) []raw.Node {
	var nodes []raw.Node
	for i := range tree.Sp {
		if n, ok := a.convertShape(&tree.Sp[i], rels); ok {
			nodes = append(nodes, n)
		}
	}
	for i := range tree.CxnSp {
		if n, ok := a.convertConnector(&tree.CxnSp[i]); ok {
			nodes = append(nodes, n)
		}
	}
	for i := range tree.Pic {
		if n, ok := a.convertPicture(&tree.Pic[i], rels); ok {
			nodes = append(nodes, n)
		}
	}
	for i := range tree.GraphicFrame {
		if n, ok := a.convertFrame(&tree.GraphicFrame[i]); ok {
			nodes = append(nodes, n)
		}
	}
	for i := range tree.GrpSp {
		if n, ok := a.convertGroup(&tree.GrpSp[i], rels); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// applyGeometry fills position, size and rotation from an xfrm block.
func applyGeometry(n *raw.Node, xfrm *xmlXfrm) {
	if xfrm == nil {
		return
	}
	if xfrm.Off != nil {
		n.Left = ptr(emuToPt(xfrm.Off.X))
		n.Top = ptr(emuToPt(xfrm.Off.Y))
	}
	if xfrm.Ext != nil {
		n.Width = ptr(emuToPt(xfrm.Ext.Cx))
		n.Height = ptr(emuToPt(xfrm.Ext.Cy))
	}
	if xfrm.Rot != 0 {
		n.Rotate = ptr(float64(xfrm.Rot) / 60000)
	}
}

func (a *archive) convertShape(sp *xmlShape, rels map[string]string) (raw.Node, bool) {
	n := raw.Node{Name: sp.NvSpPr.CNvPr.Name}
	applyGeometry(&n, sp.SpPr.Xfrm)

	hasText := sp.TxBody != nil && textBodyHasContent(sp.TxBody)
	geom := ""
	if sp.SpPr.PrstGeom != nil {
		geom = sp.SpPr.PrstGeom.Prst
	}

	// Plain text boxes become text nodes; everything else is a shape
	// (possibly with a text label).
	isTextBox := geom == "" || geom == "rect"
	if ph := sp.NvSpPr.NvPr.Ph; ph != nil {
		isTextBox = true
	}
	if hasText && isTextBox && sp.SpPr.SolidFill == nil && sp.SpPr.GradFill == nil && sp.SpPr.BlipFill == nil {
		n.Type = "text"
		n.Content = a.markupOf(sp.TxBody)
		if fs, name, color, algn := dominantRunStyle(sp.TxBody); fs > 0 || name != "" || color != "" || algn != "" {
			if fs > 0 {
				n.FontSize = ptr(fs)
			}
			n.FontName = name
			n.Color = color
			n.Align = algn
		}
		return n, true
	}

	if geom == "line" || geom == "straightConnector1" {
		return a.lineNode(n, &sp.SpPr), true
	}

	n.Type = "shape"
	n.ShapType = geom
	if geom == "custGeom" || sp.SpPr.CustGeom != nil {
		n.ShapType = "custom"
		if cg := sp.SpPr.CustGeom; cg != nil && len(cg.PathLst.Path) > 0 {
			n.ViewBox = []float64{
				emuToPt(cg.PathLst.Path[0].W),
				emuToPt(cg.PathLst.Path[0].H),
			}
		}
	}
	n.Fill = a.fillOf(sp.SpPr.SolidFill, sp.SpPr.GradFill, sp.SpPr.BlipFill, rels)
	if hasText {
		n.Content = a.markupOf(sp.TxBody)
	}
	if n.ShapType == "" && !hasText {
		// An empty unplaced shape carries nothing worth importing.
		if n.Fill == nil {
			return n, false
		}
		n.ShapType = "rect"
	}
	return n, true
}

func (a *archive) lineNode(n raw.Node, spPr *xmlSpPr) raw.Node {
	n.Type = "line"
	if spPr.Ln != nil {
		if spPr.Ln.W > 0 {
			n.LineWidth = ptr(emuToPt(spPr.Ln.W))
		}
		if spPr.Ln.SolidFill != nil {
			n.Color = colorOf(spPr.Ln.SolidFill)
		}
		if spPr.Ln.PrstDash != nil {
			n.LineStyle = dashStyle(spPr.Ln.PrstDash.Val)
		}
		if spPr.Ln.HeadEnd != nil && spPr.Ln.HeadEnd.Type != "none" {
			n.ArrowBegin = spPr.Ln.HeadEnd.Type
		}
		if spPr.Ln.TailEnd != nil && spPr.Ln.TailEnd.Type != "none" {
			n.ArrowEnd = spPr.Ln.TailEnd.Type
		}
	}
	if n.Width != nil && n.Height != nil {
		// Connector geometry spans its bounding box corner to corner;
		// flips are encoded in the xfrm and ignored here.
		n.Start = []float64{0, 0}
		n.End = []float64{*n.Width, *n.Height}
	}
	return n
}

func (a *archive) convertConnector(cxn *xmlConnector) (raw.Node, bool) {
	n := raw.Node{}
	applyGeometry(&n, cxn.SpPr.Xfrm)
	return a.lineNode(n, &cxn.SpPr), true
}

func (a *archive) convertPicture(pic *xmlPicture, rels map[string]string) (raw.Node, bool) {
	n := raw.Node{Name: pic.NvPicPr.CNvPr.Name}
	applyGeometry(&n, pic.SpPr.Xfrm)

	switch {
	case pic.NvPicPr.NvPr.VideoFile != nil:
		n.Type = "video"
		n.Src = a.mediaURI(rels[pic.NvPicPr.NvPr.VideoFile.Link])
	case pic.NvPicPr.NvPr.AudioFile != nil:
		n.Type = "audio"
		n.Src = a.mediaURI(rels[pic.NvPicPr.NvPr.AudioFile.Link])
	default:
		n.Type = "image"
		if pic.BlipFill.Blip != nil {
			n.Src = a.mediaURI(rels[pic.BlipFill.Blip.Embed])
		}
	}
	if n.Src == "" {
		return n, false
	}
	return n, true
}

func (a *archive) convertFrame(gf *xmlGraphicFrame) (raw.Node, bool) {
	n := raw.Node{}
	applyGeometry(&n, gf.Xfrm)

	data := &gf.Graphic.GraphicData
	switch {
	case data.Tbl != nil:
		n.Type = "table"
		blob, err := json.Marshal(tableData(data.Tbl))
		if err != nil {
			return n, false
		}
		n.Data = blob
		return n, true
	case data.Chart != nil || strings.Contains(data.URI, "/chart"):
		// Chart internals live in a separate part; the importer renders
		// a placeholder from type alone.
		n.Type = "chart"
		n.ChartType = "bar"
		return n, true
	}
	return n, false
}

func tableData(tbl *xmlTable) raw.TableData {
	td := raw.TableData{}
	for _, col := range tbl.TblGrid.GridCol {
		td.ColWidths = append(td.ColWidths, emuToPt(col.W))
	}
	for _, tr := range tbl.Tr {
		var row []raw.TableCell
		for _, tc := range tr.Tc {
			cell := raw.TableCell{RowSpan: tc.RowSpan, ColSpan: tc.GridSpan}
			if tc.TxBody != nil {
				var parts []string
				for i := range tc.TxBody.P {
					if t := plainText(&tc.TxBody.P[i]); t != "" {
						parts = append(parts, t)
					}
				}
				cell.Text = strings.Join(parts, " ")
			}
			row = append(row, cell)
		}
		td.Rows = append(td.Rows, row)
	}
	return td
}

func (a *archive) convertGroup(grp *xmlGroup, rels map[string]string) (raw.Node, bool) {
	n := raw.Node{Type: "group"}
	applyGeometry(&n, grp.GrpSpPr.Xfrm)

	tree := xmlShapeTree{
		Sp:           grp.Sp,
		CxnSp:        grp.CxnSp,
		Pic:          grp.Pic,
		GraphicFrame: grp.Frames,
		GrpSp:        grp.GrpSp,
	}
	n.Elements = a.convertTree(&tree, rels)
	if len(n.Elements) == 0 {
		return n, false
	}

	// Child offsets are in the group's child coordinate space; shift
	// them to absolute page coordinates so downstream flattening only
	// has to subtract the group origin.
	if xfrm := grp.GrpSpPr.Xfrm; xfrm != nil && xfrm.ChOff != nil && xfrm.Off != nil {
		dx := emuToPt(xfrm.Off.X - xfrm.ChOff.X)
		dy := emuToPt(xfrm.Off.Y - xfrm.ChOff.Y)
		shiftNodes(n.Elements, dx, dy)
	}
	return n, true
}

func shiftNodes(nodes []raw.Node, dx, dy float64) {
	for i := range nodes {
		if nodes[i].Left != nil {
			*nodes[i].Left += dx
		}
		if nodes[i].Top != nil {
			*nodes[i].Top += dy
		}
		shiftNodes(nodes[i].Elements, dx, dy)
	}
}

// fillOf maps the first present drawing fill to a raw fill.
func (a *archive) fillOf(solid *xmlSolidFill, grad *xmlGradFill, blip *xmlBlipFill, rels map[string]string) *raw.Fill {
	switch {
	case solid != nil:
		return &raw.Fill{Type: "color", Value: colorOf(solid)}
	case grad != nil:
		g := &raw.Gradient{Type: "linear", Rotate: float64(grad.Rot) / 60000}
		if grad.Path != nil {
			g.Type = "radial"
		}
		if grad.Lin != nil {
			g.Rotate = float64(grad.Lin.Ang) / 60000
		}
		for _, gs := range grad.GsLst.Gs {
			stop := raw.GradientStop{Pos: float64(gs.Pos) / 1000}
			if gs.SrgbClr != nil {
				stop.Color = "#" + strings.ToLower(gs.SrgbClr.Val)
			}
			g.Colors = append(g.Colors, stop)
		}
		return &raw.Fill{Type: "gradient", Gradient: g}
	case blip != nil && blip.Blip != nil:
		if uri := a.mediaURI(rels[blip.Blip.Embed]); uri != "" {
			return &raw.Fill{Type: "image", Image: &raw.Image{Src: uri}}
		}
	}
	return nil
}

func colorOf(fill *xmlSolidFill) string {
	if fill.SrgbClr != nil {
		return "#" + strings.ToLower(fill.SrgbClr.Val)
	}
	return ""
}

func dashStyle(prst string) string {
	switch prst {
	case "dash", "lgDash", "sysDash":
		return "dashed"
	case "dot", "sysDot":
		return "dotted"
	default:
		return "solid"
	}
}

// mediaURI reads an embedded media part and returns it as a data URI.
// Oversized or missing parts yield "".
func (a *archive) mediaURI(part string) string {
	if part == "" || !*a.cfg.InlineMedia {
		return ""
	}
	for _, f := range a.zr.File {
		if f.Name != part {
			continue
		}
		if int64(f.UncompressedSize64) > a.cfg.MaxMediaSize {
			a.cfg.Logger.Warn("pptx: skipping oversized media", "part", part, "size", f.UncompressedSize64)
			return ""
		}
		data, err := a.part(part)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("data:%s;base64,%s", mimeOfExt(path.Ext(part)), base64.StdEncoding.EncodeToString(data))
	}
	return ""
}

func mimeOfExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}

// textBodyHasContent reports whether any run carries non-whitespace text.
func textBodyHasContent(body *xmlTxBody) bool {
	for i := range body.P {
		if plainText(&body.P[i]) != "" {
			return true
		}
	}
	return false
}

// plainText joins a paragraph's runs without markup.
func plainText(p *xmlParagraph) string {
	var b strings.Builder
	for _, r := range p.R {
		b.WriteString(r.T)
	}
	return strings.TrimSpace(b.String())
}

// markupOf renders a text body as the markup dialect the importer
// flattens: paragraphs, lists and styled spans.
func (a *archive) markupOf(body *xmlTxBody) string {
	var b strings.Builder
	listKind := "" // "ul", "ol" or ""
	closeList := func() {
		if listKind != "" {
			fmt.Fprintf(&b, "</%s>", listKind)
			listKind = ""
		}
	}
	for i := range body.P {
		p := &body.P[i]
		text := runsMarkup(p)
		if text == "" {
			continue
		}
		kind := ""
		if p.PPr != nil && p.PPr.BuNone == nil {
			if p.PPr.BuAutoNum != nil {
				kind = "ol"
			} else if p.PPr.BuChar != nil || p.PPr.Lvl > 0 {
				kind = "ul"
			}
		}
		if kind != listKind {
			closeList()
			if kind != "" {
				fmt.Fprintf(&b, "<%s>", kind)
				listKind = kind
			}
		}
		if kind != "" {
			fmt.Fprintf(&b, "<li>%s</li>", text)
			continue
		}
		style := ""
		if p.PPr != nil && p.PPr.Algn != "" {
			style = fmt.Sprintf(` style="text-align: %s"`, algnName(p.PPr.Algn))
		}
		fmt.Fprintf(&b, "<p%s>%s</p>", style, text)
	}
	closeList()
	return b.String()
}

func algnName(algn string) string {
	switch algn {
	case "ctr":
		return "center"
	case "r":
		return "right"
	case "just":
		return "justify"
	default:
		return "left"
	}
}

// runsMarkup renders a paragraph's runs as inline markup.
func runsMarkup(p *xmlParagraph) string {
	var b strings.Builder
	for _, r := range p.R {
		if r.T == "" {
			continue
		}
		text := html.EscapeString(r.T)
		if rp := r.RPr; rp != nil {
			if rp.B != nil && *rp.B == 1 {
				text = "<strong>" + text + "</strong>"
			}
			if rp.I != nil && *rp.I == 1 {
				text = "<em>" + text + "</em>"
			}
			if rp.U != "" && rp.U != "none" {
				text = "<u>" + text + "</u>"
			}
			if style := runStyle(rp); style != "" {
				text = fmt.Sprintf(`<span style="%s">%s</span>`, style, text)
			}
		}
		b.WriteString(text)
	}
	return strings.TrimSpace(b.String())
}

func runStyle(rp *xmlRunProps) string {
	var parts []string
	if rp.Sz > 0 {
		parts = append(parts, fmt.Sprintf("font-size: %gpt", float64(rp.Sz)/100))
	}
	if rp.SolidFill != nil {
		if c := colorOf(rp.SolidFill); c != "" {
			parts = append(parts, "color: "+c)
		}
	}
	if rp.Latin != nil && rp.Latin.Typeface != "" {
		parts = append(parts, "font-family: "+rp.Latin.Typeface)
	}
	return strings.Join(parts, "; ")
}

// dominantRunStyle picks the first explicit run style in a text body for
// node-level defaults.
func dominantRunStyle(body *xmlTxBody) (fontSize float64, fontName, color, align string) {
	for i := range body.P {
		p := &body.P[i]
		if align == "" && p.PPr != nil && p.PPr.Algn != "" {
			align = algnName(p.PPr.Algn)
		}
		for _, r := range p.R {
			if r.RPr == nil {
				continue
			}
			if fontSize == 0 && r.RPr.Sz > 0 {
				fontSize = float64(r.RPr.Sz) / 100
			}
			if fontName == "" && r.RPr.Latin != nil {
				fontName = r.RPr.Latin.Typeface
			}
			if color == "" && r.RPr.SolidFill != nil {
				color = colorOf(r.RPr.SolidFill)
			}
			if fontSize > 0 && fontName != "" && color != "" {
				return fontSize, fontName, color, align
			}
		}
	}
	return fontSize, fontName, color, align
}
