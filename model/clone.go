package model

// Clone returns a deep copy of the document. Snapshots, storage extraction
// and clipboard duplication all rely on this to never alias live state.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Slides = CloneSlides(d.Slides)
	out.ActiveElementIDs = append([]string(nil), d.ActiveElementIDs...)
	out.Theme.ThemeColors = append([]string(nil), d.Theme.ThemeColors...)
	return &out
}

// CloneSlides deep-copies a slide sequence.
func CloneSlides(slides []Slide) []Slide {
	if slides == nil {
		return nil
	}
	out := make([]Slide, len(slides))
	for i := range slides {
		out[i] = slides[i].Clone()
	}
	return out
}

// Clone returns a deep copy of the slide. Nil slices stay nil so a clone
// serializes identically to its source.
func (s Slide) Clone() Slide {
	out := s
	if s.Elements != nil {
		out.Elements = make([]Element, len(s.Elements))
		for i := range s.Elements {
			out.Elements[i] = s.Elements[i].Clone()
		}
	}
	out.Background = cloneFill(s.Background)
	if s.Transition != nil {
		t := *s.Transition
		out.Transition = &t
	}
	out.Tags = append([]string(nil), s.Tags...)
	return out
}

// Clone returns a deep copy of the element, including group children.
func (e Element) Clone() Element {
	out := e
	if e.Text != nil {
		t := *e.Text
		out.Text = &t
	}
	if e.Image != nil {
		img := *e.Image
		out.Image = &img
	}
	if e.Shape != nil {
		sh := *e.Shape
		sh.Fill = e.Shape.Fill.clone()
		sh.Gradient = e.Shape.Gradient.clone()
		sh.ViewBox = append([]float64(nil), e.Shape.ViewBox...)
		if e.Shape.Text != nil {
			t := *e.Shape.Text
			sh.Text = &t
		}
		out.Shape = &sh
	}
	if e.Line != nil {
		l := *e.Line
		out.Line = &l
	}
	if e.Chart != nil {
		c := *e.Chart
		c.Labels = append([]string(nil), e.Chart.Labels...)
		c.Legends = append([]string(nil), e.Chart.Legends...)
		c.Colors = append([]string(nil), e.Chart.Colors...)
		c.Series = make([][]float64, len(e.Chart.Series))
		for i, row := range e.Chart.Series {
			c.Series[i] = append([]float64(nil), row...)
		}
		out.Chart = &c
	}
	if e.Table != nil {
		tb := *e.Table
		tb.ColWidths = append([]float64(nil), e.Table.ColWidths...)
		tb.Rows = make([][]TableCell, len(e.Table.Rows))
		for i, row := range e.Table.Rows {
			tb.Rows[i] = append([]TableCell(nil), row...)
		}
		out.Table = &tb
	}
	if e.Latex != nil {
		lx := *e.Latex
		out.Latex = &lx
	}
	if e.Video != nil {
		v := *e.Video
		out.Video = &v
	}
	if e.Audio != nil {
		a := *e.Audio
		out.Audio = &a
	}
	if e.Group != nil {
		g := GroupPayload{Children: make([]Element, len(e.Group.Children))}
		for i := range e.Group.Children {
			g.Children[i] = e.Group.Children[i].Clone()
		}
		out.Group = &g
	}
	return out
}

func cloneFill(f *Fill) *Fill {
	if f == nil {
		return nil
	}
	out := f.clone()
	return &out
}

func (f Fill) clone() Fill {
	out := f
	if f.Image != nil {
		img := *f.Image
		out.Image = &img
	}
	out.Gradient = f.Gradient.clone()
	return out
}

func (g *Gradient) clone() *Gradient {
	if g == nil {
		return nil
	}
	out := *g
	out.Stops = append([]GradientStop(nil), g.Stops...)
	return &out
}
