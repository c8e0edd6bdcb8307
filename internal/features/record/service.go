package record

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Relation projects a record referenced by ForeignKey on the primary record
// into the render context under Prefix, e.g. buyer_agent -> agents.
type Relation struct {
	Prefix     string `json:"prefix" yaml:"prefix"`
	Collection string `json:"collection" yaml:"collection"`
	ForeignKey string `json:"foreign_key" yaml:"foreign_key"`
}

// ContactRelations are the relations loaded for contact-based templates.
var ContactRelations = []Relation{
	{Prefix: "buyer_agent", Collection: CollectionAgents, ForeignKey: "buyer_agent_id"},
	{Prefix: "listing_agent", Collection: CollectionAgents, ForeignKey: "listing_agent_id"},
	{Prefix: "loan", Collection: CollectionLoans, ForeignKey: "loan_id"},
}

type RecordService interface {
	GetRecord(ctx context.Context, collection, id string) (Record, error)
	ListRecords(ctx context.Context, collection string, filters map[string]string, limit int64, sortBy string, desc bool) ([]Record, error)
	RecordsBetween(ctx context.Context, collection, field string, from, to time.Time) ([]Record, error)
	LoadRelated(ctx context.Context, primary Record, relations []Relation) map[string]Record
}

type RecordServiceImpl struct {
	RecordRepo RecordRepository
	Logger     *zap.Logger
}

func NewRecordService(recordRepo RecordRepository, logger *zap.Logger) RecordService {
	return &RecordServiceImpl{
		RecordRepo: recordRepo,
		Logger:     logger,
	}
}

func (s *RecordServiceImpl) GetRecord(ctx context.Context, collection, id string) (Record, error) {
	return s.RecordRepo.Get(ctx, collection, id)
}

// ListRecords matches every filter by equality on the stored field.
func (s *RecordServiceImpl) ListRecords(ctx context.Context, collection string, filters map[string]string, limit int64, sortBy string, desc bool) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	filter := make(map[string]any, len(filters))
	for k, v := range filters {
		filter[k] = v
	}
	return s.RecordRepo.List(ctx, collection, Query{Filter: filter, Sort: sortBy, Desc: desc, Limit: limit})
}

// RecordsBetween returns records whose field lies in [from, to), oldest first.
func (s *RecordServiceImpl) RecordsBetween(ctx context.Context, collection, field string, from, to time.Time) ([]Record, error) {
	return s.RecordRepo.List(ctx, collection, Query{
		Filter: map[string]any{field: bson.M{"$gte": from, "$lt": to}},
		Sort:   field,
	})
}

// LoadRelated resolves each relation of primary. A missing foreign key or
// referenced record leaves the prefix out; those fields then stay unresolved
// in rendered output.
func (s *RecordServiceImpl) LoadRelated(ctx context.Context, primary Record, relations []Relation) map[string]Record {
	related := make(map[string]Record, len(relations))
	for _, rel := range relations {
		id := primary.String(rel.ForeignKey)
		if id == "" {
			continue
		}
		rec, err := s.RecordRepo.Get(ctx, rel.Collection, id)
		if err != nil {
			s.Logger.Warn("related record not loaded",
				zap.String("relation", rel.Prefix),
				zap.String("collection", rel.Collection),
				zap.String("record_id", id),
				zap.Error(err))
			continue
		}
		related[rel.Prefix] = rec
	}
	return related
}
