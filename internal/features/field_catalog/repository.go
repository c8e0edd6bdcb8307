package field_catalog

import (
	"context"
	"time"

	"broker-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FieldRepository interface {
	Create(ctx context.Context, field *FieldDefinition) error
	GetByName(ctx context.Context, name string) (*FieldDefinition, error)
	List(ctx context.Context) ([]FieldDefinition, error)
	Update(ctx context.Context, field *FieldDefinition) error
	Delete(ctx context.Context, name string) error
	Upsert(ctx context.Context, field *FieldDefinition) error
	EnsureIndexes(ctx context.Context) error
}

type FieldRepositoryImpl struct {
	collection *mongo.Collection
}

func NewFieldRepository(db *database.MongodbDB) FieldRepository {
	return &FieldRepositoryImpl{
		collection: db.DB.Collection("field_definitions"),
	}
}

func (r *FieldRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "field_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *FieldRepositoryImpl) Create(ctx context.Context, field *FieldDefinition) error {
	field.CreatedAt = time.Now()
	field.UpdatedAt = field.CreatedAt
	if field.ID.IsZero() {
		field.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, field)
	return err
}

func (r *FieldRepositoryImpl) GetByName(ctx context.Context, name string) (*FieldDefinition, error) {
	var field FieldDefinition
	if err := r.collection.FindOne(ctx, bson.M{"field_name": name}).Decode(&field); err != nil {
		return nil, err
	}
	return &field, nil
}

func (r *FieldRepositoryImpl) List(ctx context.Context) ([]FieldDefinition, error) {
	opts := options.Find().SetSort(bson.D{{Key: "section", Value: 1}, {Key: "display_name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	fields := []FieldDefinition{}
	if err = cursor.All(ctx, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *FieldRepositoryImpl) Update(ctx context.Context, field *FieldDefinition) error {
	field.UpdatedAt = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"field_name": field.FieldName}, bson.M{"$set": bson.M{
		"display_name": field.DisplayName,
		"section":      field.Section,
		"field_type":   field.FieldType,
		"sample_data":  field.SampleData,
		"formula":      field.Formula,
		"updated_at":   field.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *FieldRepositoryImpl) Delete(ctx context.Context, name string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"field_name": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Upsert replaces the definition with the same field name, keeping its id.
func (r *FieldRepositoryImpl) Upsert(ctx context.Context, field *FieldDefinition) error {
	now := time.Now()
	field.UpdatedAt = now
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"field_name": field.FieldName},
		bson.M{
			"$set": bson.M{
				"display_name": field.DisplayName,
				"section":      field.Section,
				"field_type":   field.FieldType,
				"sample_data":  field.SampleData,
				"formula":      field.Formula,
				"updated_at":   now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true))
	return err
}
