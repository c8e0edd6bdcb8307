package email_template

import (
	"time"
)

// Template is an HTML email body with {{field_name}} merge tags. Saves
// overwrite; no history is kept.
type Template struct {
	ID        string    `json:"id" bson:"_id" yaml:"-"`
	Name      string    `json:"name" bson:"name" yaml:"name" validate:"required,max=200"`
	Subject   string    `json:"subject" bson:"subject" yaml:"subject"`
	HTML      string    `json:"html" bson:"html" yaml:"html"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" yaml:"-"`
}

// RenderResult is a template merged with a context. Unresolved lists tags
// left verbatim because the context had no value for them.
type RenderResult struct {
	Subject    string   `json:"subject"`
	HTML       string   `json:"html"`
	Unresolved []string `json:"unresolved"`
}

// PreviewRequest previews either a stored template or unsaved HTML. A nil
// Context uses the field catalog sample values.
type PreviewRequest struct {
	TemplateID string            `json:"template_id"`
	Subject    string            `json:"subject"`
	HTML       string            `json:"html"`
	Context    map[string]string `json:"context"`
}

// PreviewResult carries both the highlighted editor view and the merged
// output for the same token set.
type PreviewResult struct {
	Highlighted string   `json:"highlighted"`
	Rendered    string   `json:"rendered"`
	Subject     string   `json:"subject"`
	Fields      []string `json:"fields"`
	Unresolved  []string `json:"unresolved"`
}

type RenderRequest struct {
	Context map[string]string `json:"context"`
}

type RenderRecordRequest struct {
	Collection string `json:"collection" validate:"required"`
	RecordID   string `json:"record_id" validate:"required"`
}

type TestEmailRequest struct {
	To       string            `json:"to" validate:"required,email"`
	TestData map[string]string `json:"test_data"`
}
