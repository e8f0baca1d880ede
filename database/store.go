package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)

// ErrNoDocument is returned by lookups that match nothing. Services
// translate it into their own not-found errors.
var ErrNoDocument = errors.New("document not found")

// Store is the collection-scoped document access the rest of the
// application is written against. Filters are plain equality maps except
// in UpdateWhere, whose filter/update pair is the conditional-update
// primitive used to make verify-then-write atomic on a single document.
type Store interface {
	FindOne(ctx context.Context, collection string, filter bson.M, out any) error
	GetByID(ctx context.Context, collection, id string, out any) error
	Find(ctx context.Context, collection string, filter bson.M, sort bson.D, out any) error
	Insert(ctx context.Context, collection string, doc any) (string, error)
	// Update applies patch as a partial merge ($set), never a full replace.
	Update(ctx context.Context, collection, id string, patch bson.M) error
	// UpdateWhere applies a raw update document ($set/$unset) to the first
	// document matching filter and reports how many matched.
	UpdateWhere(ctx context.Context, collection string, filter bson.M, update bson.M) (int64, error)
	// Upsert inserts update's $setOnInsert fields when filter matches
	// nothing. Reports whether a new document was created.
	Upsert(ctx context.Context, collection string, filter bson.M, update bson.M) (bool, error)
	Delete(ctx context.Context, collection, id string) error
}

type mongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps a connected database handle.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{db: db}
}

func (s *mongoStore) FindOne(ctx context.Context, collection string, filter bson.M, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocument
	}
	return err
}

func (s *mongoStore) GetByID(ctx context.Context, collection, id string, out any) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}
	return s.FindOne(ctx, collection, bson.M{"_id": oid}, out)
}

func (s *mongoStore) Find(ctx context.Context, collection string, filter bson.M, sort bson.D, out any) error {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func (s *mongoStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", errors.New("store assigned a non-ObjectID id")
	}
	return oid.Hex(), nil
}

func (s *mongoStore) Update(ctx context.Context, collection, id string, patch bson.M) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": patch})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (s *mongoStore) UpdateWhere(ctx context.Context, collection string, filter bson.M, update bson.M) (int64, error) {
	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (s *mongoStore) Upsert(ctx context.Context, collection string, filter bson.M, update bson.M) (bool, error) {
	opts := options.UpdateOne().SetUpsert(true)
	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (s *mongoStore) Delete(ctx context.Context, collection, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNoDocument
	}
	return nil
}
