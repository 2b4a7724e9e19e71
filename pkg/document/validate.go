package document

import (
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/mirror"
)

// Validate checks that d can be stored: a valid handle and page, unique card
// IDs and positive card sizes in both viewports. Overlaps and out-of-bounds
// positions are not errors; normalizing the layout fixes them.
func Validate(d *Document) error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "document is nil")
	}
	if err := errors.ValidateHandle(d.Handle); err != nil {
		return err
	}
	if err := errors.ValidatePage(d.Page); err != nil {
		return err
	}
	if d.EditedOn < mirror.Never || d.EditedOn > mirror.Both {
		return errors.New(errors.ErrCodeInvalidDocument, "invalid editedOn value %d", d.EditedOn)
	}

	seen := make(map[string]bool, len(d.Cards))
	for i, it := range d.Cards {
		if it == nil {
			return errors.New(errors.ErrCodeInvalidItem, "card %d is null", i)
		}
		if err := ValidateItem(it); err != nil {
			return err
		}
		if seen[it.ID] {
			return errors.New(errors.ErrCodeInvalidItem, "duplicate card ID %q", it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

// ValidateItem checks a single card's ID and sizes.
func ValidateItem(it *grid.Item) error {
	if err := errors.ValidateItemID(it.ID); err != nil {
		return err
	}
	for _, v := range []grid.Viewport{grid.Desktop, grid.Mobile} {
		r := it.Rect(v)
		if r.W <= 0 || r.H <= 0 {
			return errors.New(errors.ErrCodeInvalidItem, "card %q has empty %s size %dx%d", it.ID, v, r.W, r.H)
		}
	}
	return nil
}
