package settings

import "time"

type SettingsType string

const (
	SettingsTypeEmail     SettingsType = "email"
	SettingsTypeBrokerage SettingsType = "brokerage"
)

// Settings is one document per type in the settings collection.
type Settings struct {
	Type      SettingsType      `json:"type" bson:"type"`
	Email     *EmailConfig      `json:"email,omitempty" bson:"email,omitempty"`
	Brokerage *BrokerageProfile `json:"brokerage,omitempty" bson:"brokerage,omitempty"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

type EmailConfig struct {
	SMTPHost     string `json:"smtp_host" bson:"smtp_host" validate:"required"`
	SMTPPort     int    `json:"smtp_port" bson:"smtp_port" validate:"required,min=1,max=65535"`
	SMTPUser     string `json:"smtp_user" bson:"smtp_user"`
	SMTPPassword string `json:"smtp_password" bson:"smtp_password"`
	FromEmail    string `json:"from_email" bson:"from_email" validate:"omitempty,email"`
	FromName     string `json:"from_name" bson:"from_name"`
}

// Sender is the envelope sender, falling back to the SMTP user.
func (c *EmailConfig) Sender() string {
	if c.FromEmail != "" {
		return c.FromEmail
	}
	return c.SMTPUser
}

// Redacted returns a copy safe to return to clients and write to audit logs.
func (c EmailConfig) Redacted() EmailConfig {
	if c.SMTPPassword != "" {
		c.SMTPPassword = "********"
	}
	return c
}

// BrokerageProfile feeds letterheads and disclosure boilerplate of
// client-facing documents.
type BrokerageProfile struct {
	Name       string `json:"name" bson:"name" validate:"required"`
	NMLSID     string `json:"nmls_id" bson:"nmls_id"`
	Address    string `json:"address" bson:"address"`
	Phone      string `json:"phone" bson:"phone"`
	Email      string `json:"email" bson:"email" validate:"omitempty,email"`
	Website    string `json:"website" bson:"website"`
	Disclaimer string `json:"disclaimer" bson:"disclaimer"`
}

const DefaultDisclaimer = "This letter is not a commitment to lend. Final approval is subject to " +
	"satisfactory appraisal, verification of income, assets and credit, and acceptable title. " +
	"Terms are subject to change without notice."
