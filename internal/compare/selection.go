package compare

import (
	"slices"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/model"
)

const MaxSelection = 4

// Selection is an ordered set of record ids picked for side by side comparison.
type Selection struct {
	ids []string
}

// Toggle adds or removes id. Adding to a full selection fails and leaves it unchanged;
// adding a present id or removing an absent one is a no-op.
func (s *Selection) Toggle(id string, selected bool) error {
	idx := slices.Index(s.ids, id)

	if !selected {
		if idx >= 0 {
			s.ids = slices.Delete(s.ids, idx, idx+1)
		}
		return nil
	}

	if idx >= 0 {
		return nil
	}
	if len(s.ids) >= MaxSelection {
		return &ierr.LimitExceeded{What: "comparison selection", Limit: MaxSelection}
	}
	s.ids = append(s.ids, id)
	return nil
}

func (s *Selection) Remove(id string) {
	_ = s.Toggle(id, false)
}

func (s *Selection) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// IDs returns the selected ids in the order they were added.
func (s *Selection) IDs() []string {
	return slices.Clone(s.ids)
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// Materialize returns the selected records among all, keeping the order of all.
func (s *Selection) Materialize(all []model.ProductRecord) []model.ProductRecord {
	out := []model.ProductRecord{}
	for _, r := range all {
		if s.Contains(r.Id) {
			out = append(out, r)
		}
	}
	return out
}
