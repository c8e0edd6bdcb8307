package models

import (
	"time"
)

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionSettings AuditAction = "SETTINGS"
	AuditActionTemplate AuditAction = "TEMPLATE"
	AuditActionField    AuditAction = "FIELD"
	AuditActionDocument AuditAction = "DOCUMENT"
	AuditActionDelivery AuditAction = "DELIVERY"
	AuditActionReport   AuditAction = "REPORT"
	AuditActionMigrate  AuditAction = "MIGRATE"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        string            `bson:"_id,omitempty" json:"id"`
	Action    AuditAction       `bson:"action" json:"action"`
	Module    string            `bson:"module" json:"module"`       // The collection name
	RecordID  string            `bson:"record_id" json:"record_id"` // The ID of the record being modified
	ActorID   string            `bson:"actor_id" json:"actor_id"`   // User ID who performed the action
	Changes   map[string]Change `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
}

// Field types known to the merge-tag catalog
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
	FieldTypeDate     FieldType = "date"
	FieldTypeNumber   FieldType = "number"
	FieldTypeCurrency FieldType = "currency"
	FieldTypePercent  FieldType = "percent"
	FieldTypeBoolean  FieldType = "boolean"
)

var FieldTypes = []FieldType{
	FieldTypeText, FieldTypeEmail, FieldTypePhone, FieldTypeDate,
	FieldTypeNumber, FieldTypeCurrency, FieldTypePercent, FieldTypeBoolean,
}

func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Log struct {
	AppId        string    `bson:"app_id" json:"app_id"`
	Message      string    `bson:"message" json:"message"`
	IpAddress    string    `bson:"ip_address" json:"ip_address"`
	RecordID     string    `bson:"record_id,omitempty" json:"record_id,omitempty"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
