package settings

import (
	"context"
	"time"

	"broker-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsRepository stores one document per SettingsType. Getters return
// nil, nil for a type that was never saved.
type SettingsRepository interface {
	GetEmailConfig(ctx context.Context) (*EmailConfig, error)
	SaveEmailConfig(ctx context.Context, config *EmailConfig) error
	GetBrokerageProfile(ctx context.Context) (*BrokerageProfile, error)
	SaveBrokerageProfile(ctx context.Context, profile *BrokerageProfile) error
	EnsureIndexes(ctx context.Context) error
}

type SettingsRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewSettingsRepository(mongodb *database.MongodbDB) SettingsRepository {
	return &SettingsRepositoryImpl{
		Collection: mongodb.DB.Collection("settings"),
	}
}

// EnsureIndexes keeps concurrent first saves from creating two documents of
// the same type.
func (r *SettingsRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "type", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *SettingsRepositoryImpl) GetEmailConfig(ctx context.Context) (*EmailConfig, error) {
	doc, err := r.load(ctx, SettingsTypeEmail)
	if doc == nil || err != nil {
		return nil, err
	}
	return doc.Email, nil
}

func (r *SettingsRepositoryImpl) SaveEmailConfig(ctx context.Context, config *EmailConfig) error {
	return r.save(ctx, SettingsTypeEmail, "email", config)
}

func (r *SettingsRepositoryImpl) GetBrokerageProfile(ctx context.Context) (*BrokerageProfile, error) {
	doc, err := r.load(ctx, SettingsTypeBrokerage)
	if doc == nil || err != nil {
		return nil, err
	}
	return doc.Brokerage, nil
}

func (r *SettingsRepositoryImpl) SaveBrokerageProfile(ctx context.Context, profile *BrokerageProfile) error {
	return r.save(ctx, SettingsTypeBrokerage, "brokerage", profile)
}

func (r *SettingsRepositoryImpl) load(ctx context.Context, sType SettingsType) (*Settings, error) {
	var doc Settings
	err := r.Collection.FindOne(ctx, bson.M{"type": sType}).Decode(&doc)
	if database.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// save replaces the payload field of the type's document, creating it on
// first use.
func (r *SettingsRepositoryImpl) save(ctx context.Context, sType SettingsType, field string, value any) error {
	_, err := r.Collection.UpdateOne(ctx,
		bson.M{"type": sType},
		bson.M{"$set": bson.M{field: value, "updated_at": time.Now()}},
		options.Update().SetUpsert(true))
	return err
}
