package model

import "sort"

// ElementByID returns a pointer into the slide's element list, or nil.
// Group children are not searched; they are addressed through their group.
func (s *Slide) ElementByID(id string) *Element {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return &s.Elements[i]
		}
	}
	return nil
}

// SortByZIndex orders the slide's elements bottom-to-top in place.
func (s *Slide) SortByZIndex() {
	sort.SliceStable(s.Elements, func(i, j int) bool {
		return s.Elements[i].ZIndex < s.Elements[j].ZIndex
	})
}

// WalkMedia visits every media source owned by the element, including group
// children and shape image fills. The visitor may mutate the source in place;
// elementID identifies the owning element for reference bookkeeping.
func (e *Element) WalkMedia(fn func(elementID string, src *MediaSource)) {
	switch {
	case e.Image != nil:
		fn(e.ID, &e.Image.Src)
	case e.Video != nil:
		fn(e.ID, &e.Video.Src)
	case e.Audio != nil:
		fn(e.ID, &e.Audio.Src)
	case e.Shape != nil && e.Shape.Fill.Image != nil:
		fn(e.ID, e.Shape.Fill.Image)
	case e.Group != nil:
		for i := range e.Group.Children {
			e.Group.Children[i].WalkMedia(fn)
		}
	}
}

// WalkMedia visits every media source in the slide: element media plus the
// background image fill. The background is attributed to the slide id.
func (s *Slide) WalkMedia(fn func(elementID string, src *MediaSource)) {
	if s.Background != nil && s.Background.Image != nil {
		fn(s.ID, s.Background.Image)
	}
	for i := range s.Elements {
		s.Elements[i].WalkMedia(fn)
	}
}

// OwnedElementIDs returns the element's id plus the ids of all group
// children. Deletion cascades through this set.
func (e *Element) OwnedElementIDs() []string {
	ids := []string{e.ID}
	if e.Group != nil {
		for i := range e.Group.Children {
			ids = append(ids, e.Group.Children[i].ID)
		}
	}
	return ids
}
