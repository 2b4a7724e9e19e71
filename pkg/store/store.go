// Package store persists pages and their cards.
//
// A page is addressed by (handle, page): the owner's handle or DID and the
// page record key (e.g. "blento.self"). Cards are written record by record,
// so saving an edited page only touches the cards that changed; callers
// compute the change set with [document.Diff].
//
// Two backends are provided:
//   - [FileStore]: one JSON file per page, for the CLI and tests
//   - [MongoStore]: a "pages" and a "cards" collection in MongoDB
//
// Backends report transient failures wrapped with [cache.Retryable] so that
// callers can retry them with [cache.RetryWithBackoff].
package store

import (
	"context"

	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/errors"
)

// Store is the interface for page persistence backends.
type Store interface {
	// Load returns the stored page. It fails with PAGE_NOT_FOUND if the page
	// has never been saved.
	Load(ctx context.Context, handle, page string) (*document.Document, error)

	// Save writes the page metadata of doc and applies the card changes ch.
	Save(ctx context.Context, doc *document.Document, ch document.Changes) error

	// Delete removes a page and its cards. Deleting a missing page is not an
	// error.
	Delete(ctx context.Context, handle, page string) error

	// List returns the saved page keys of handle, sorted.
	List(ctx context.Context, handle string) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// validateKey checks a (handle, page) address.
func validateKey(handle, page string) error {
	if err := errors.ValidateHandle(handle); err != nil {
		return err
	}
	return errors.ValidatePage(page)
}

func notFound(handle, page string) error {
	return errors.New(errors.ErrCodePageNotFound, "page %s of %s not found", page, handle)
}
