package database

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore is an in-memory Store used by tests and for running the
// server without a MongoDB instance. Documents are round-tripped through
// bson so models behave exactly as they would against the real driver.
// Filters support plain equality, which is all the application uses.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]bson.M // collection -> id hex -> document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]bson.M)}
}

func (s *MemoryStore) collection(name string) map[string]bson.M {
	col, ok := s.data[name]
	if !ok {
		col = make(map[string]bson.M)
		s.data[name] = col
	}
	return col
}

func (s *MemoryStore) FindOne(_ context.Context, collection string, filter bson.M, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.data[collection] {
		if matches(doc, filter) {
			return decodeInto(doc, out)
		}
	}
	return ErrNoDocument
}

func (s *MemoryStore) GetByID(_ context.Context, collection, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNoDocument
	}
	return decodeInto(doc, out)
}

func (s *MemoryStore) Find(_ context.Context, collection string, filter bson.M, sortSpec bson.D, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []bson.M
	for _, doc := range s.data[collection] {
		if matches(doc, filter) {
			docs = append(docs, doc)
		}
	}
	sortDocs(docs, sortSpec)

	slice := reflect.ValueOf(out).Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(docs))
	for _, doc := range docs {
		elem := reflect.New(slice.Type().Elem())
		if err := decodeInto(doc, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slice.Set(result)
	return nil
}

func (s *MemoryStore) Insert(_ context.Context, collection string, doc any) (string, error) {
	m, err := toDocument(doc)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	oid, ok := m["_id"].(bson.ObjectID)
	if !ok || oid.IsZero() {
		oid = bson.NewObjectID()
		m["_id"] = oid
	}
	s.collection(collection)[oid.Hex()] = m
	return oid.Hex(), nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, patch bson.M) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNoDocument
	}
	applyUpdate(doc, bson.M{"$set": patch})
	return nil
}

func (s *MemoryStore) UpdateWhere(_ context.Context, collection string, filter bson.M, update bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.data[collection] {
		if matches(doc, filter) {
			applyUpdate(doc, update)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *MemoryStore) Upsert(_ context.Context, collection string, filter bson.M, update bson.M) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.data[collection] {
		if matches(doc, filter) {
			applyUpdate(doc, update)
			return false, nil
		}
	}

	// Same construction Mongo uses: filter equality fields, then $set and
	// $setOnInsert on top.
	doc := bson.M{}
	for k, v := range filter {
		doc[k] = v
	}
	for _, key := range []string{"$set", "$setOnInsert"} {
		if fields, ok := update[key].(bson.M); ok {
			for k, v := range fields {
				doc[k] = v
			}
		}
	}
	oid := bson.NewObjectID()
	doc["_id"] = oid
	s.collection(collection)[oid.Hex()] = doc
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[collection][id]; !ok {
		return ErrNoDocument
	}
	delete(s.data[collection], id)
	return nil
}

func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeInto(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func matches(doc bson.M, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func applyUpdate(doc bson.M, update bson.M) {
	if fields, ok := update["$set"].(bson.M); ok {
		for k, v := range fields {
			doc[k] = v
		}
	}
	if fields, ok := update["$unset"].(bson.M); ok {
		for k := range fields {
			delete(doc, k)
		}
	}
}

func sortDocs(docs []bson.M, order bson.D) {
	if len(order) == 0 {
		return
	}
	key := order[0].Key
	desc := false
	if dir, ok := order[0].Value.(int); ok && dir < 0 {
		desc = true
	}
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := numeric(docs[i][key]), numeric(docs[j][key])
		if desc {
			return a > b
		}
		return a < b
	})
}

func numeric(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
