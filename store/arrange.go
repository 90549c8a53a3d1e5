package store

import (
	"sort"

	"github.com/slidekit/slidekit/model"
)

// Alignment modes accepted by Align.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
	AlignTop    = "top"
	AlignMiddle = "middle"
	AlignBottom = "bottom"
)

// Axes accepted by Distribute.
const (
	AxisHorizontal = "horizontal"
	AxisVertical   = "vertical"
)

// Group collects the identified elements on the active slide into a new
// group element sized to their bounding box. Children keep their ids and
// become relative to the group origin; the group goes on top of the
// stack and becomes the selection. It returns the group id, or "" when
// fewer than two of the ids resolve.
func (s *Store) Group(ids []string, opts ...MutateOption) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.activeSlide()
	if slide == nil {
		return ""
	}
	picked := pickElements(slide, ids)
	if len(picked) < 2 {
		return ""
	}

	minX, minY, maxX, maxY := bounds(picked)
	children := make([]model.Element, 0, len(picked))
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].ZIndex < picked[j].ZIndex })
	for i, el := range picked {
		child := el.Clone()
		child.X -= minX
		child.Y -= minY
		child.ZIndex = i
		children = append(children, child)
	}

	group := model.Element{
		ID:     s.cfg.GroupIDs(),
		Type:   model.ElementGroup,
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
		Group:  &model.GroupPayload{Children: children},
	}

	removeByID(slide, ids)
	group.ZIndex = maxZIndex(slide.Elements) + 1
	slide.Elements = append(slide.Elements, group)
	s.doc.ActiveElementIDs = []string{group.ID}
	s.finish("group elements", opts)
	return group.ID
}

// Ungroup dissolves the identified group on the active slide, restoring
// its children as top-level elements at their absolute positions. Child
// ids are regenerated so repeated group/ungroup cycles never collide.
// The restored children become the selection.
func (s *Store) Ungroup(id string, opts ...MutateOption) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.activeSlide()
	if slide == nil {
		return nil
	}
	el := slide.ElementByID(id)
	if el == nil || el.Type != model.ElementGroup || el.Group == nil {
		return nil
	}
	group := *el
	removeByID(slide, []string{id})

	top := maxZIndex(slide.Elements)
	ids := make([]string, 0, len(group.Group.Children))
	for i, child := range group.Group.Children {
		restored := child.Clone()
		restored.ID = s.cfg.ElementIDs()
		restored.X += group.X
		restored.Y += group.Y
		restored.ZIndex = top + 1 + i
		slide.Elements = append(slide.Elements, restored)
		ids = append(ids, restored.ID)
	}
	s.doc.ActiveElementIDs = ids
	s.finish("ungroup elements", opts)
	return ids
}

// Align lines up the identified elements against their collective
// bounding box: left/right/top/bottom snap edges to the box, center and
// middle snap midpoints. A no-op below two resolved elements.
func (s *Store) Align(mode string, ids []string, opts ...MutateOption) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.activeSlide()
	if slide == nil {
		return false
	}
	picked := pickElements(slide, ids)
	if len(picked) < 2 {
		return false
	}
	minX, minY, maxX, maxY := bounds(picked)

	for _, el := range picked {
		switch mode {
		case AlignLeft:
			el.X = minX
		case AlignRight:
			el.X = maxX - el.Width
		case AlignCenter:
			el.X = minX + (maxX-minX)/2 - el.Width/2
		case AlignTop:
			el.Y = minY
		case AlignBottom:
			el.Y = maxY - el.Height
		case AlignMiddle:
			el.Y = minY + (maxY-minY)/2 - el.Height/2
		default:
			return false
		}
	}
	s.finish("align elements", opts)
	return true
}

// Distribute spaces the identified elements evenly along an axis: the
// outermost two stay fixed and the rest are repositioned so every gap is
// equal. A no-op below three resolved elements.
func (s *Store) Distribute(axis string, ids []string, opts ...MutateOption) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.activeSlide()
	if slide == nil {
		return false
	}
	picked := pickElements(slide, ids)
	if len(picked) < 3 {
		return false
	}

	switch axis {
	case AxisHorizontal:
		sort.SliceStable(picked, func(i, j int) bool { return picked[i].X < picked[j].X })
		first, last := picked[0], picked[len(picked)-1]
		span := (last.X + last.Width) - first.X
		occupied := 0.0
		for _, el := range picked {
			occupied += el.Width
		}
		gap := (span - occupied) / float64(len(picked)-1)
		cursor := first.X + first.Width + gap
		for _, el := range picked[1 : len(picked)-1] {
			el.X = cursor
			cursor += el.Width + gap
		}
	case AxisVertical:
		sort.SliceStable(picked, func(i, j int) bool { return picked[i].Y < picked[j].Y })
		first, last := picked[0], picked[len(picked)-1]
		span := (last.Y + last.Height) - first.Y
		occupied := 0.0
		for _, el := range picked {
			occupied += el.Height
		}
		gap := (span - occupied) / float64(len(picked)-1)
		cursor := first.Y + first.Height + gap
		for _, el := range picked[1 : len(picked)-1] {
			el.Y = cursor
			cursor += el.Height + gap
		}
	default:
		return false
	}
	s.finish("distribute elements", opts)
	return true
}

// pickElements resolves ids to live element pointers on slide, skipping
// unknown ids.
func pickElements(slide *model.Slide, ids []string) []*model.Element {
	var picked []*model.Element
	for _, id := range ids {
		if el := slide.ElementByID(id); el != nil {
			picked = append(picked, el)
		}
	}
	return picked
}

// bounds returns the collective bounding box of els.
func bounds(els []*model.Element) (minX, minY, maxX, maxY float64) {
	for i, el := range els {
		if i == 0 || el.X < minX {
			minX = el.X
		}
		if i == 0 || el.Y < minY {
			minY = el.Y
		}
		if i == 0 || el.X+el.Width > maxX {
			maxX = el.X + el.Width
		}
		if i == 0 || el.Y+el.Height > maxY {
			maxY = el.Y + el.Height
		}
	}
	return minX, minY, maxX, maxY
}

// removeByID drops the identified top-level elements from slide.
func removeByID(slide *model.Slide, ids []string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := slide.Elements[:0]
	for _, el := range slide.Elements {
		if !drop[el.ID] {
			kept = append(kept, el)
		}
	}
	slide.Elements = kept
}
