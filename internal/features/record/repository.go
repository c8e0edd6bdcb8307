package record

import (
	"context"

	"broker-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecordRepository interface {
	Get(ctx context.Context, collection, id string) (Record, error)
	List(ctx context.Context, collection string, q Query) ([]Record, error)
	Count(ctx context.Context, collection string, filter map[string]any) (int64, error)
	InsertMany(ctx context.Context, collection string, docs []Record) error
	DeleteMany(ctx context.Context, collection string, filter map[string]any) (int64, error)
}

type RecordRepositoryImpl struct {
	DB *mongo.Database
}

func NewRecordRepository(mongodb *database.MongodbDB) RecordRepository {
	return &RecordRepositoryImpl{DB: mongodb.DB}
}

func (r *RecordRepositoryImpl) Get(ctx context.Context, collection, id string) (Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	var rec Record
	err := r.DB.Collection(collection).FindOne(ctx, bson.M{"_id": idFilter(id)}).Decode(&rec)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecordRepositoryImpl) List(ctx context.Context, collection string, q Query) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	findOptions := options.Find()
	if q.Limit > 0 {
		findOptions.SetLimit(q.Limit)
	}
	sortBy := q.Sort
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := 1
	if q.Desc {
		order = -1
	}
	findOptions.SetSort(bson.D{{Key: sortBy, Value: order}})

	cursor, err := r.DB.Collection(collection).Find(ctx, toM(q.Filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []Record{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *RecordRepositoryImpl) Count(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	return r.DB.Collection(collection).CountDocuments(ctx, toM(filter))
}

func (r *RecordRepositoryImpl) InsertMany(ctx context.Context, collection string, docs []Record) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = d
	}
	_, err := r.DB.Collection(collection).InsertMany(ctx, batch)
	return err
}

func (r *RecordRepositoryImpl) DeleteMany(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	res, err := r.DB.Collection(collection).DeleteMany(ctx, toM(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func toM(filter map[string]any) bson.M {
	m := bson.M{}
	for k, v := range filter {
		m[k] = v
	}
	return m
}
