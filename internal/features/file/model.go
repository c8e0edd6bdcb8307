package file

import (
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Kind string

const (
	KindUpload    Kind = "upload"
	KindGenerated Kind = "generated"
)

// File is the metadata of a document stored on disk and attached to a CRM record.
type File struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OriginalFilename string             `json:"original_filename" bson:"original_filename"`
	StoredName       string             `json:"-" bson:"stored_name"`
	URL              string             `json:"url" bson:"url"`
	Path             string             `json:"-" bson:"path"`
	Size             int64              `json:"size" bson:"size"`
	MimeType         string             `json:"mime_type" bson:"mime_type"`
	Collection       string             `json:"collection" bson:"collection"`
	RecordID         string             `json:"record_id" bson:"record_id"`
	UploadedBy       string             `json:"uploaded_by" bson:"uploaded_by"`
	Kind             Kind               `json:"kind" bson:"kind"`
	Description      string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
}

// Upload is an incoming file before it is stored.
type Upload struct {
	Collection  string    `json:"collection" validate:"required"`
	RecordID    string    `json:"record_id" validate:"required"`
	FileName    string    `json:"file_name" validate:"required"`
	MimeType    string    `json:"mime_type"`
	Description string    `json:"description"`
	Size        int64     `json:"size"`
	Content     io.Reader `json:"-"`
}
