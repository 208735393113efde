// Package memstore holds in-memory repositories with the same behaviour as
// the Mongo ones. They back the memory store mode and the service tests.
package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"MediCall/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type entry[T any] struct {
	seq int64
	doc T
}

type table[T any] struct {
	mu       sync.RWMutex
	seq      int64
	rows     map[primitive.ObjectID]*entry[T]
	resource string
	// unique returns the keyed values that must not repeat across rows,
	// with the conflict message for each.
	unique func(*T) map[string]string
}

func newTable[T any](resource string, unique func(*T) map[string]string) *table[T] {
	return &table[T]{rows: map[primitive.ObjectID]*entry[T]{}, resource: resource, unique: unique}
}

func now() time.Time {
	return time.Now().UTC()
}

// conflict must be called with the lock held.
func (t *table[T]) conflict(id primitive.ObjectID, doc *T) error {
	if t.unique == nil {
		return nil
	}
	want := t.unique(doc)
	for otherID, row := range t.rows {
		if otherID == id {
			continue
		}
		for value, msg := range t.unique(&row.doc) {
			if _, clash := want[value]; clash {
				return apperror.Conflict(msg)
			}
		}
	}
	return nil
}

func (t *table[T]) insert(id primitive.ObjectID, doc T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.conflict(id, &doc); err != nil {
		return err
	}
	t.seq++
	t.rows[id] = &entry[T]{seq: t.seq, doc: doc}
	return nil
}

func (t *table[T]) get(id primitive.ObjectID) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, apperror.NotFound(t.resource)
	}
	doc := row.doc
	return &doc, nil
}

// first returns the earliest inserted row matching keep.
func (t *table[T]) first(keep func(*T) bool) (*T, error) {
	rows := t.filter(keep)
	if len(rows) == 0 {
		return nil, apperror.NotFound(t.resource)
	}
	return &rows[0], nil
}

func (t *table[T]) exists(keep func(*T) bool) bool {
	return len(t.filter(keep)) > 0
}

// filter returns matching rows in insertion order.
func (t *table[T]) filter(keep func(*T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rows := make([]*entry[T], 0, len(t.rows))
	for _, row := range t.rows {
		if keep == nil || keep(&row.doc) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.doc)
	}
	return out
}

// update applies a $set document, dotted paths included.
func (t *table[T]) update(id primitive.ObjectID, set bson.M) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, apperror.NotFound(t.resource)
	}
	withStamp := bson.M{"updatedAt": now()}
	for k, v := range set {
		withStamp[k] = v
	}
	next, err := apply(row.doc, withStamp, nil)
	if err != nil {
		return nil, err
	}
	if err := t.conflict(id, &next); err != nil {
		return nil, err
	}
	row.doc = next
	doc := next
	return &doc, nil
}

func (t *table[T]) unset(id primitive.ObjectID, fields []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		return apperror.NotFound(t.resource)
	}
	next, err := apply(row.doc, bson.M{"updatedAt": now()}, fields)
	if err != nil {
		return err
	}
	row.doc = next
	return nil
}

func (t *table[T]) delete(id primitive.ObjectID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return apperror.NotFound(t.resource)
	}
	delete(t.rows, id)
	return nil
}

// apply round-trips the document through BSON so set and unset behave the
// way the database applies them.
func apply[T any](doc T, set bson.M, unset []string) (T, error) {
	var out T
	raw, err := bson.Marshal(doc)
	if err != nil {
		return out, apperror.Unexpected(err)
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return out, apperror.Unexpected(err)
	}
	for k, v := range set {
		setPath(m, strings.Split(k, "."), v)
	}
	for _, k := range unset {
		delete(m, k)
	}
	raw, err = bson.Marshal(m)
	if err != nil {
		return out, apperror.Unexpected(err)
	}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return out, apperror.Unexpected(err)
	}
	return out, nil
}

func setPath(m bson.M, keys []string, v interface{}) {
	if len(keys) == 1 {
		m[keys[0]] = v
		return
	}
	var child bson.M
	switch c := m[keys[0]].(type) {
	case bson.M:
		child = c
	case primitive.D:
		child = c.Map()
	default:
		child = bson.M{}
	}
	setPath(child, keys[1:], v)
	m[keys[0]] = child
}

func contains(value, term string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}

func ids(list []primitive.ObjectID) map[primitive.ObjectID]bool {
	set := make(map[primitive.ObjectID]bool, len(list))
	for _, id := range list {
		set[id] = true
	}
	return set
}
