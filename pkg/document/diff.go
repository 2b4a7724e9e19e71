package document

import (
	"time"

	"github.com/matzehuels/bentogrid/pkg/cards"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// TimestampFormat is the layout of card UpdatedAt values.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Changes is the set of record writes needed to turn a stored page into the
// edited one.
type Changes struct {
	// Put holds new or modified cards, ready to be written.
	Put []*grid.Item
	// Delete holds the IDs of cards that were removed.
	Delete []string
}

// Empty reports whether there is nothing to write.
func (c Changes) Empty() bool {
	return len(c.Put) == 0 && len(c.Delete) == 0
}

// Diff compares the cards of the stored document with the edited one.
//
// A card is put when no stored card is structurally equal to it (see
// grid.Equal), so moving a card, resizing it or editing its content all count.
// Put cards are stamped with now, the edited page and the current record
// version; the stamp is applied to the edited document's cards as well, and
// Put holds copies. Stored cards whose ID no longer appears are deleted.
// stored may be nil for a page that was never saved.
func Diff(stored, edited *Document, now time.Time) Changes {
	var prev []*grid.Item
	if stored != nil {
		prev = stored.Cards
	}

	var ch Changes
	stamp := now.UTC().Format(TimestampFormat)

	for _, it := range edited.Cards {
		if unchanged(it, prev) {
			continue
		}
		it.UpdatedAt = stamp
		it.Page = edited.Page
		it.Version = cards.RecordVersion
		ch.Put = append(ch.Put, it.Clone())
	}

	for _, it := range prev {
		if grid.Find(edited.Cards, it.ID) == nil {
			ch.Delete = append(ch.Delete, it.ID)
		}
	}
	return ch
}

func unchanged(it *grid.Item, prev []*grid.Item) bool {
	for _, p := range prev {
		if grid.Equal(it, p) {
			return true
		}
	}
	return false
}

// Apply returns the cards of stored after ch has been written. The result is
// in stored order with new cards appended.
func Apply(stored []*grid.Item, ch Changes) []*grid.Item {
	deleted := make(map[string]bool, len(ch.Delete))
	for _, id := range ch.Delete {
		deleted[id] = true
	}
	put := make(map[string]*grid.Item, len(ch.Put))
	for _, it := range ch.Put {
		put[it.ID] = it
	}

	out := make([]*grid.Item, 0, len(stored)+len(ch.Put))
	for _, it := range stored {
		if deleted[it.ID] {
			continue
		}
		if p, ok := put[it.ID]; ok {
			out = append(out, p.Clone())
			delete(put, it.ID)
			continue
		}
		out = append(out, it.Clone())
	}
	for _, it := range ch.Put {
		if _, pending := put[it.ID]; pending {
			out = append(out, it.Clone())
		}
	}
	return out
}
