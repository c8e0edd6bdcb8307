package delivery

import (
	"context"
	"time"

	"broker-crm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type EmailRepository interface {
	Create(ctx context.Context, email *Email) error
	UpdateStatus(ctx context.Context, id string, status EmailStatus, errorMsg string) error
	GetByID(ctx context.Context, id string) (*Email, error)
}

type EmailRepositoryImpl struct {
	col *mongo.Collection
}

func NewEmailRepository(db *database.MongodbDB) EmailRepository {
	return &EmailRepositoryImpl{
		col: db.DB.Collection("emails"),
	}
}

func (r *EmailRepositoryImpl) Create(ctx context.Context, email *Email) error {
	email.CreatedAt = time.Now()
	_, err := r.col.InsertOne(ctx, email)
	return err
}

func (r *EmailRepositoryImpl) UpdateStatus(ctx context.Context, id string, status EmailStatus, errorMsg string) error {
	set := bson.M{
		"status":        status,
		"error_message": errorMsg,
	}
	if status == EmailSent {
		set["sent_at"] = time.Now()
	}
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

func (r *EmailRepositoryImpl) GetByID(ctx context.Context, id string) (*Email, error) {
	var email Email
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&email); err != nil {
		return nil, err
	}
	return &email, nil
}
