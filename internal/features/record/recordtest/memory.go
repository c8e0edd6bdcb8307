// Package recordtest provides an in-memory record.RecordRepository for tests.
package recordtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"broker-crm/internal/features/record"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Memory stores records per collection. Filters support equality and the
// $gte / $lt / $in operators used by the services.
type Memory struct {
	mu   sync.Mutex
	Data map[string][]record.Record

	// Injected failures, keyed by collection.
	InsertErr map[string]error
	DeleteErr map[string]error
}

func NewMemory() *Memory {
	return &Memory{Data: map[string][]record.Record{}}
}

// Add appends records to collection.
func (m *Memory) Add(collection string, recs ...record.Record) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[collection] = append(m.Data[collection], recs...)
	return m
}

func (m *Memory) Get(ctx context.Context, collection, id string) (record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.Data[collection] {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *Memory) List(ctx context.Context, collection string, q record.Query) ([]record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []record.Record{}
	for _, rec := range m.Data[collection] {
		if matches(rec, q.Filter) {
			out = append(out, rec)
		}
	}
	if q.Sort != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := lessValue(out[i][q.Sort], out[j][q.Sort])
			if q.Desc {
				return lessValue(out[j][q.Sort], out[i][q.Sort])
			}
			return less
		})
	}
	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Count(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	recs, err := m.List(ctx, collection, record.Query{Filter: filter})
	return int64(len(recs)), err
}

func (m *Memory) InsertMany(ctx context.Context, collection string, docs []record.Record) error {
	if err := m.InsertErr[collection]; err != nil {
		return err
	}
	m.Add(collection, docs...)
	return nil
}

func (m *Memory) DeleteMany(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	if err := m.DeleteErr[collection]; err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []record.Record
	var n int64
	for _, rec := range m.Data[collection] {
		if matches(rec, filter) {
			n++
			continue
		}
		kept = append(kept, rec)
	}
	m.Data[collection] = kept
	return n, nil
}

func matches(rec record.Record, filter map[string]any) bool {
	for field, want := range filter {
		got := rec[field]
		ops, isOps := want.(bson.M)
		if !isOps {
			if record.Stringify(got) != record.Stringify(want) {
				return false
			}
			continue
		}
		for op, arg := range ops {
			switch op {
			case "$gte":
				if lessValue(got, arg) {
					return false
				}
			case "$lt":
				if !lessValue(got, arg) {
					return false
				}
			case "$in":
				found := false
				for _, v := range toSlice(arg) {
					if record.Stringify(got) == record.Stringify(v) {
						found = true
					}
				}
				if !found {
					return false
				}
			}
		}
	}
	return true
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out
	}
	return nil
}

func lessValue(a, b any) bool {
	ta, aok := a.(time.Time)
	tb, bok := b.(time.Time)
	if aok && bok {
		return ta.Before(tb)
	}
	fa, aok := a.(float64)
	fb, bok := b.(float64)
	if aok && bok {
		return fa < fb
	}
	return record.Stringify(a) < record.Stringify(b)
}
