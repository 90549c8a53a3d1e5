package store

import (
	"github.com/slidekit/slidekit/model"
)

// AddSlide inserts slide after the active one and makes it active. A
// missing id is generated. It returns the slide id.
func (s *Store) AddSlide(slide model.Slide, opts ...MutateOption) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slide.ID == "" {
		slide.ID = s.cfg.SlideIDs()
	}
	at := s.doc.ActiveSlideIndex + 1
	if at > len(s.doc.Slides) {
		at = len(s.doc.Slides)
	}
	s.doc.Slides = append(s.doc.Slides, model.Slide{})
	copy(s.doc.Slides[at+1:], s.doc.Slides[at:])
	s.doc.Slides[at] = slide
	s.doc.ActiveSlideIndex = at
	s.doc.ActiveElementIDs = nil
	s.finish("add slide", opts)
	return slide.ID
}

// DeleteSlide removes the slide at index, releasing resource references
// for all of its elements. The last remaining slide is replaced by a
// blank one so the document never becomes empty.
func (s *Store) DeleteSlide(index int, opts ...MutateOption) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Slides) {
		return false
	}
	if s.cfg.ReleaseElements != nil {
		var ids []string
		for _, el := range s.doc.Slides[index].Elements {
			ids = append(ids, el.OwnedElementIDs()...)
		}
		s.cfg.ReleaseElements(ids)
	}
	s.doc.Slides = append(s.doc.Slides[:index], s.doc.Slides[index+1:]...)
	if len(s.doc.Slides) == 0 {
		s.doc.Slides = []model.Slide{{ID: s.cfg.SlideIDs()}}
	}
	if s.doc.ActiveSlideIndex >= len(s.doc.Slides) {
		s.doc.ActiveSlideIndex = len(s.doc.Slides) - 1
	}
	s.doc.ActiveElementIDs = nil
	s.finish("delete slide", opts)
	return true
}

// DuplicateSlide deep-copies the slide at index, regenerating the slide
// id and every element id so the copy is fully independent, and inserts
// it directly after the original.
func (s *Store) DuplicateSlide(index int, opts ...MutateOption) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Slides) {
		return ""
	}
	dup := s.doc.Slides[index].Clone()
	dup.ID = s.cfg.SlideIDs()
	for i := range dup.Elements {
		s.refreshIDs(&dup.Elements[i])
	}
	at := index + 1
	s.doc.Slides = append(s.doc.Slides, model.Slide{})
	copy(s.doc.Slides[at+1:], s.doc.Slides[at:])
	s.doc.Slides[at] = dup
	s.doc.ActiveSlideIndex = at
	s.doc.ActiveElementIDs = nil
	s.finish("duplicate slide", opts)
	return dup.ID
}

// refreshIDs assigns fresh ids to el and any grouped children.
func (s *Store) refreshIDs(el *model.Element) {
	el.ID = s.cfg.ElementIDs()
	if el.Group != nil {
		for i := range el.Group.Children {
			s.refreshIDs(&el.Group.Children[i])
		}
	}
}

// MoveSlide repositions the slide at from to index to, keeping it active.
func (s *Store) MoveSlide(from, to int, opts ...MutateOption) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.doc.Slides)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return false
	}
	slide := s.doc.Slides[from]
	rest := append(s.doc.Slides[:from], s.doc.Slides[from+1:]...)
	s.doc.Slides = append(rest[:to:to], append([]model.Slide{slide}, rest[to:]...)...)
	s.doc.ActiveSlideIndex = to
	s.finish("move slide", opts)
	return true
}

// SetActiveSlide changes the active slide. Not undoable.
func (s *Store) SetActiveSlide(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Slides) {
		return false
	}
	if index != s.doc.ActiveSlideIndex {
		s.doc.ActiveSlideIndex = index
		s.doc.ActiveElementIDs = nil
	}
	if s.cfg.OnMutate != nil {
		s.cfg.OnMutate()
	}
	return true
}

// UpdateSlide applies fn to the slide at index (background, notes,
// transition and so on).
func (s *Store) UpdateSlide(index int, fn func(*model.Slide), opts ...MutateOption) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Slides) {
		return false
	}
	id := s.doc.Slides[index].ID
	fn(&s.doc.Slides[index])
	s.doc.Slides[index].ID = id
	s.finish("update slide", opts)
	return true
}

// SetTheme replaces the document theme.
func (s *Store) SetTheme(theme model.Theme, opts ...MutateOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Theme = theme
	s.finish("apply theme", opts)
}

// SetTitle renames the document. Not undoable.
func (s *Store) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Title = title
	if s.cfg.OnMutate != nil {
		s.cfg.OnMutate()
	}
}
