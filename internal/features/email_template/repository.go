package email_template

import (
	"context"
	"time"

	"broker-crm/internal/database"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EmailTemplateRepository interface {
	Create(ctx context.Context, template *Template) error
	GetByID(ctx context.Context, id string) (*Template, error)
	GetByName(ctx context.Context, name string) (*Template, error)
	List(ctx context.Context) ([]Template, error)
	Update(ctx context.Context, template *Template) error
	Delete(ctx context.Context, id string) error
}

type EmailTemplateRepositoryImpl struct {
	collection *mongo.Collection
}

func NewEmailTemplateRepository(db *database.MongodbDB) EmailTemplateRepository {
	return &EmailTemplateRepositoryImpl{
		collection: db.DB.Collection("email_templates"),
	}
}

func (r *EmailTemplateRepositoryImpl) Create(ctx context.Context, template *Template) error {
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt

	if template.ID == "" {
		template.ID = uuid.NewString()
	}

	_, err := r.collection.InsertOne(ctx, template)
	return err
}

func (r *EmailTemplateRepositoryImpl) GetByID(ctx context.Context, id string) (*Template, error) {
	var template Template
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&template); err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *EmailTemplateRepositoryImpl) GetByName(ctx context.Context, name string) (*Template, error) {
	var template Template
	if err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&template); err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *EmailTemplateRepositoryImpl) List(ctx context.Context) ([]Template, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []Template{}
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update overwrites name, subject and html. The last write wins.
func (r *EmailTemplateRepositoryImpl) Update(ctx context.Context, template *Template) error {
	template.UpdatedAt = time.Now()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": template.ID}, bson.M{"$set": bson.M{
		"name":       template.Name,
		"subject":    template.Subject,
		"html":       template.HTML,
		"updated_at": template.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *EmailTemplateRepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
