package delivery

import (
	"time"
)

type EmailStatus string

const (
	EmailQueued EmailStatus = "queued"
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// Request is what callers hand to the delivery adapter. The attachment is
// base64 so JSON clients can post generated documents directly.
type Request struct {
	PrimaryEmail    string   `json:"primary_email" validate:"required,email"`
	SecondaryEmails []string `json:"secondary_emails" validate:"omitempty,dive,email"`
	CustomerName    string   `json:"customer_name" validate:"required"`
	Subject         string   `json:"subject"`
	HTMLBody        string   `json:"html_body"`
	PDFAttachment   string   `json:"pdf_attachment" validate:"required_with=FileName,omitempty,base64"`
	FileName        string   `json:"file_name" validate:"required_with=PDFAttachment"`
}

// Email is the persisted record of one delivery attempt.
type Email struct {
	ID             string      `json:"id" bson:"_id"`
	From           string      `json:"from" bson:"from"`
	To             []string    `json:"to" bson:"to"`
	Cc             []string    `json:"cc,omitempty" bson:"cc,omitempty"`
	CustomerName   string      `json:"customer_name" bson:"customer_name"`
	Subject        string      `json:"subject" bson:"subject"`
	HtmlBody       string      `json:"html_body" bson:"html_body"`
	AttachmentName string      `json:"attachment_name,omitempty" bson:"attachment_name,omitempty"`
	AttachmentSize int         `json:"attachment_size,omitempty" bson:"attachment_size,omitempty"`
	Status         EmailStatus `json:"status" bson:"status"`
	ErrorMessage   string      `json:"error_message,omitempty" bson:"error_message,omitempty"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
	SentAt         *time.Time  `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
}

// Attachment is a decoded file part of a Message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is a fully rendered email handed to a Mailer.
type Message struct {
	From        string
	FromName    string
	To          []string
	Cc          []string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Recipients is every envelope recipient.
func (m Message) Recipients() []string {
	return append(append([]string{}, m.To...), m.Cc...)
}

// StatusEvent is broadcast whenever an email changes status.
type StatusEvent struct {
	ID     string      `json:"id"`
	Status EmailStatus `json:"status"`
	To     []string    `json:"to"`
	Error  string      `json:"error,omitempty"`
}

const StatusEventName = "delivery.status"
