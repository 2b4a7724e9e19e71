package store

import (
	"context"
	stderrors "errors"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/bentogrid/pkg/cache"
	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/mirror"
	"github.com/matzehuels/bentogrid/pkg/observability"
)

// Collection names.
const (
	PagesCollection = "pages"
	CardsCollection = "cards"
)

// DefaultDatabase is used when MongoConfig.Database is empty.
const DefaultDatabase = "bentogrid"

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI      string
	Database string
	// Timeout bounds every single operation. Zero means 10 seconds.
	Timeout time.Duration
}

// MongoStore stores page metadata in the pages collection and one document
// per card in the cards collection.
//
// Cards are owned by a handle, not by a page: a card without a page value
// shows up on every page of its owner, matching how records written before
// multi-page support are read.
type MongoStore struct {
	client  *mongo.Client
	pages   *mongo.Collection
	cards   *mongo.Collection
	timeout time.Duration
}

// pageRecord is the stored form of a page's metadata.
type pageRecord struct {
	Handle      string                `bson:"handle"`
	Page        string                `bson:"page"`
	DID         string                `bson:"did,omitempty"`
	Profile     *document.Profile     `bson:"profile,omitempty"`
	Publication *document.Publication `bson:"publication,omitempty"`
	EditedOn    mirror.EditedOn       `bson:"editedOn,omitempty"`
	UpdatedAt   int64                 `bson:"updatedAt,omitempty"`
}

// cardRecord is a card plus its owner.
type cardRecord struct {
	Handle    string `bson:"handle"`
	grid.Item `bson:",inline"`
}

// NewMongoStore connects to MongoDB and makes sure the indexes exist.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongo")
	}

	db := client.Database(cfg.Database)
	s := &MongoStore{
		client:  client,
		pages:   db.Collection(PagesCollection),
		cards:   db.Collection(CardsCollection),
		timeout: cfg.Timeout,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.pages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "handle", Value: 1}, {Key: "page", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create page index")
	}
	_, err = s.cards.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "handle", Value: 1}, {Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create card index")
	}
	return nil
}

// storeErr wraps a driver error, marking network failures and timeouts as
// retryable.
func storeErr(err error, format string, args ...any) error {
	wrapped := errors.Wrap(errors.ErrCodeStore, err, format, args...)
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(wrapped)
	}
	return wrapped
}

func (s *MongoStore) Load(ctx context.Context, handle, page string) (doc *document.Document, err error) {
	start := time.Now()
	defer func() { observability.Store().OnStoreOp(ctx, "mongo", "load", time.Since(start), err) }()

	if err := validateKey(handle, page); err != nil {
		return nil, err
	}

	var rec pageRecord
	err = s.pages.FindOne(ctx, bson.M{"handle": handle, "page": page}).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(handle, page)
	}
	if err != nil {
		return nil, storeErr(err, "load page %s", page)
	}

	filter := bson.M{
		"handle": handle,
		"$or": bson.A{
			bson.M{"page": page},
			bson.M{"page": bson.M{"$exists": false}},
			bson.M{"page": ""},
		},
	}
	cur, err := s.cards.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "y", Value: 1}, {Key: "x", Value: 1}}))
	if err != nil {
		return nil, storeErr(err, "load cards of %s", page)
	}
	var recs []cardRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, storeErr(err, "decode cards of %s", page)
	}

	doc = &document.Document{
		Handle:      rec.Handle,
		DID:         rec.DID,
		Page:        rec.Page,
		Cards:       make([]*grid.Item, len(recs)),
		Profile:     rec.Profile,
		Publication: rec.Publication,
		EditedOn:    rec.EditedOn,
		UpdatedAt:   rec.UpdatedAt,
	}
	for i := range recs {
		it := recs[i].Item
		doc.Cards[i] = &it
	}
	return doc, nil
}

func (s *MongoStore) Save(ctx context.Context, doc *document.Document, ch document.Changes) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnStoreOp(ctx, "mongo", "save", time.Since(start), err) }()

	if err := validateKey(doc.Handle, doc.Page); err != nil {
		return err
	}

	if !ch.Empty() {
		models := make([]mongo.WriteModel, 0, len(ch.Put)+len(ch.Delete))
		for _, it := range ch.Put {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"handle": doc.Handle, "id": it.ID}).
				SetReplacement(cardRecord{Handle: doc.Handle, Item: *it}).
				SetUpsert(true))
		}
		for _, id := range ch.Delete {
			models = append(models, mongo.NewDeleteOneModel().
				SetFilter(bson.M{"handle": doc.Handle, "id": id}))
		}
		if _, err := s.cards.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return storeErr(err, "write cards of %s", doc.Page)
		}
	}

	rec := pageRecord{
		Handle:      doc.Handle,
		Page:        doc.Page,
		DID:         doc.DID,
		Profile:     doc.Profile,
		Publication: doc.Publication,
		EditedOn:    doc.EditedOn,
		UpdatedAt:   time.Now().UnixMilli(),
	}
	_, err = s.pages.ReplaceOne(ctx,
		bson.M{"handle": doc.Handle, "page": doc.Page},
		rec,
		options.Replace().SetUpsert(true))
	if err != nil {
		return storeErr(err, "write page %s", doc.Page)
	}
	return nil
}

// Delete removes the page record and the cards assigned to it. Cards without
// a page are shared with the owner's other pages and are kept.
func (s *MongoStore) Delete(ctx context.Context, handle, page string) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnStoreOp(ctx, "mongo", "delete", time.Since(start), err) }()

	if err := validateKey(handle, page); err != nil {
		return err
	}

	if _, err := s.cards.DeleteMany(ctx, bson.M{"handle": handle, "page": page}); err != nil {
		return storeErr(err, "delete cards of %s", page)
	}
	if _, err := s.pages.DeleteOne(ctx, bson.M{"handle": handle, "page": page}); err != nil {
		return storeErr(err, "delete page %s", page)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, handle string) (pages []string, err error) {
	start := time.Now()
	defer func() { observability.Store().OnStoreOp(ctx, "mongo", "list", time.Since(start), err) }()

	if err := errors.ValidateHandle(handle); err != nil {
		return nil, err
	}

	values, err := s.pages.Distinct(ctx, "page", bson.M{"handle": handle})
	if err != nil {
		return nil, storeErr(err, "list pages of %s", handle)
	}
	for _, v := range values {
		if p, ok := v.(string); ok {
			pages = append(pages, p)
		}
	}
	slices.Sort(pages)
	return pages, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
