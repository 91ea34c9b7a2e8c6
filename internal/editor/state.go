package editor

import (
	"slices"

	"github.com/example/snapframe/internal/annotation"
)

// State is the unit of undo: the visual settings plus the annotations in
// z-order, bottom first. States are shared between history entries and
// must not be modified; the editor copies the slice on every write.
type State struct {
	Settings    Settings
	Annotations []annotation.Annotation
}

// Find returns the annotation with id and its index, or nil and -1.
func (s State) Find(id annotation.ID) (annotation.Annotation, int) {
	for i, a := range s.Annotations {
		if a.AnnotationID() == id {
			return a, i
		}
	}
	return nil, -1
}

// Has reports whether an annotation with id exists.
func (s State) Has(id annotation.ID) bool {
	_, i := s.Find(id)
	return i >= 0
}

// Equal reports whether s and o describe the same picture.
func (s State) Equal(o State) bool {
	if s.Settings != o.Settings {
		return false
	}
	return slices.EqualFunc(s.Annotations, o.Annotations, func(a, b annotation.Annotation) bool {
		return a == b
	})
}

func (s State) withAnnotations(list []annotation.Annotation) State {
	s.Annotations = list
	return s
}
