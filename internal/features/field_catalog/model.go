package field_catalog

import (
	"time"

	common_models "broker-crm/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldDefinition is one entry of the merge-tag catalog.
type FieldDefinition struct {
	ID          primitive.ObjectID      `json:"id" bson:"_id,omitempty" yaml:"-"`
	FieldName   string                  `json:"field_name" bson:"field_name" yaml:"field_name" validate:"required,max=64"`
	DisplayName string                  `json:"display_name" bson:"display_name" yaml:"display_name" validate:"required"`
	Section     string                  `json:"section" bson:"section" yaml:"section" validate:"required"`
	FieldType   common_models.FieldType `json:"field_type" bson:"field_type" yaml:"field_type" validate:"required"`
	SampleData  *string                 `json:"sample_data" bson:"sample_data" yaml:"sample_data"`
	// Formula is a tengo expression over `record`, the render context built
	// so far. A non-empty formula makes this a derived field.
	Formula   string    `json:"formula,omitempty" bson:"formula,omitempty" yaml:"formula,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" yaml:"-"`
}

func (f FieldDefinition) Derived() bool {
	return f.Formula != ""
}

// FieldGroup is one section of the merge-tag picker.
type FieldGroup struct {
	Section string            `json:"section"`
	Fields  []FieldDefinition `json:"fields"`
}
