package store

import (
	"github.com/slidekit/slidekit/model"
)

// AddElement appends el to the active slide, assigning an id when missing
// and placing it on top of the stack. It returns the element id, or ""
// when there is no active slide.
func (s *Store) AddElement(el model.Element, opts ...MutateOption) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.activeSlide()
	if slide == nil {
		return ""
	}
	if el.ID == "" {
		el.ID = s.cfg.ElementIDs()
	}
	el.ZIndex = maxZIndex(slide.Elements) + 1
	slide.Elements = append(slide.Elements, el)
	s.finish("add element", opts)
	return el.ID
}

// UpdateElement applies fn to the element with the given id on the active
// slide. Unknown ids are a silent no-op; the return value reports whether
// anything changed.
func (s *Store) UpdateElement(id string, fn func(*model.Element), opts ...MutateOption) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.activeSlide()
	if slide == nil {
		return false
	}
	el := slide.ElementByID(id)
	if el == nil {
		return false
	}
	fn(el)
	el.ID = id // ids are immutable through updates
	s.finish("update element", opts)
	return true
}

// DeleteElements removes the identified elements from the active slide and
// releases resource references for them and any grouped children. It
// returns the number of elements removed.
func (s *Store) DeleteElements(ids []string, opts ...MutateOption) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.activeSlide()
	if slide == nil || len(ids) == 0 {
		return 0
	}
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	var released []string
	kept := slide.Elements[:0]
	for _, el := range slide.Elements {
		if doomed[el.ID] {
			released = append(released, el.OwnedElementIDs()...)
			continue
		}
		kept = append(kept, el)
	}
	removed := len(slide.Elements) - len(kept)
	if removed == 0 {
		return 0
	}
	slide.Elements = kept
	s.doc.ActiveElementIDs = pruneIDs(s.doc.ActiveElementIDs, doomed)
	if s.cfg.ReleaseElements != nil {
		s.cfg.ReleaseElements(released)
	}
	s.finish("delete elements", opts)
	return removed
}

// SetSelection replaces the active element selection. Ids that do not
// resolve on the active slide are discarded; the selection always names
// elements of the slide it belongs to. Selection changes are not undoable.
func (s *Store) SetSelection(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.ActiveElementIDs = s.selectable(ids)
	if s.cfg.OnMutate != nil {
		s.cfg.OnMutate()
	}
}

// selectable filters ids down to elements present on the active slide.
func (s *Store) selectable(ids []string) []string {
	slide := s.activeSlide()
	if slide == nil {
		return nil
	}
	var kept []string
	for _, id := range ids {
		if slide.ElementByID(id) != nil {
			kept = append(kept, id)
		}
	}
	return kept
}

// Selection returns the currently selected element ids.
func (s *Store) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.doc.ActiveElementIDs...)
}

// BringToFront moves the element above every sibling on the active slide.
func (s *Store) BringToFront(id string, opts ...MutateOption) bool {
	return s.reorder(id, "bring to front", opts, func(slide *model.Slide, el *model.Element) bool {
		top := maxZIndex(slide.Elements)
		if el.ZIndex >= top && countAt(slide.Elements, top) == 1 {
			return false
		}
		el.ZIndex = top + 1
		return true
	})
}

// SendToBack moves the element below every sibling on the active slide.
func (s *Store) SendToBack(id string, opts ...MutateOption) bool {
	return s.reorder(id, "send to back", opts, func(slide *model.Slide, el *model.Element) bool {
		bottom := minZIndex(slide.Elements)
		if el.ZIndex <= bottom && countAt(slide.Elements, bottom) == 1 {
			return false
		}
		el.ZIndex = bottom - 1
		return true
	})
}

// BringForward steps the element one position up: just past the nearest
// sibling above it. A no-op when already on top.
func (s *Store) BringForward(id string, opts ...MutateOption) bool {
	return s.reorder(id, "bring forward", opts, func(slide *model.Slide, el *model.Element) bool {
		above, ok := nearestAbove(slide.Elements, el)
		if !ok {
			return false
		}
		el.ZIndex = above + 1
		return true
	})
}

// SendBackward steps the element one position down: just past the nearest
// sibling below it. A no-op when already at the bottom.
func (s *Store) SendBackward(id string, opts ...MutateOption) bool {
	return s.reorder(id, "send backward", opts, func(slide *model.Slide, el *model.Element) bool {
		below, ok := nearestBelow(slide.Elements, el)
		if !ok {
			return false
		}
		el.ZIndex = below - 1
		return true
	})
}

func (s *Store) reorder(id, desc string, opts []MutateOption, fn func(*model.Slide, *model.Element) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.activeSlide()
	if slide == nil {
		return false
	}
	el := slide.ElementByID(id)
	if el == nil {
		return false
	}
	if !fn(slide, el) {
		return false
	}
	s.finish(desc, opts)
	return true
}

func maxZIndex(els []model.Element) int {
	maxZ := 0
	for i, el := range els {
		if i == 0 || el.ZIndex > maxZ {
			maxZ = el.ZIndex
		}
	}
	return maxZ
}

func minZIndex(els []model.Element) int {
	minZ := 0
	for i, el := range els {
		if i == 0 || el.ZIndex < minZ {
			minZ = el.ZIndex
		}
	}
	return minZ
}

func countAt(els []model.Element, z int) int {
	n := 0
	for _, el := range els {
		if el.ZIndex == z {
			n++
		}
	}
	return n
}

// nearestAbove returns the smallest sibling z-index strictly above el.
func nearestAbove(els []model.Element, el *model.Element) (int, bool) {
	best, found := 0, false
	for i := range els {
		if z := els[i].ZIndex; z > el.ZIndex && (!found || z < best) {
			best, found = z, true
		}
	}
	return best, found
}

// nearestBelow returns the largest sibling z-index strictly below el.
func nearestBelow(els []model.Element, el *model.Element) (int, bool) {
	best, found := 0, false
	for i := range els {
		if z := els[i].ZIndex; z < el.ZIndex && (!found || z > best) {
			best, found = z, true
		}
	}
	return best, found
}

func pruneIDs(ids []string, drop map[string]bool) []string {
	kept := ids[:0]
	for _, id := range ids {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	return kept
}
