package migration

import (
	"context"
	"fmt"
	"time"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/features/audit"
	"broker-crm/internal/features/record"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const legacyContactsQuery = `SELECT * FROM contacts ORDER BY id`

// ContactImport replaces the contacts collection with the legacy contacts
// table. The previous contacts are restored if the import fails.
type ContactImport struct {
	Source       RowSource
	Target       record.RecordRepository
	AuditService audit.AuditService
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewContactImport(source RowSource, target record.RecordRepository, auditService audit.AuditService, logger *zap.Logger) *ContactImport {
	return &ContactImport{Source: source, Target: target, AuditService: auditService, Logger: logger, Now: time.Now}
}

// Plan builds the delete-then-insert steps. Rows are read up front so a
// failing source leaves the collection untouched.
func (c *ContactImport) Plan() *Plan {
	var (
		legacy   []record.Record
		snapshot []record.Record
		imported []string
	)

	return &Plan{
		Name:   "import-contacts",
		Logger: c.Logger,
		Steps: []Step{
			{
				Name: "read legacy contacts",
				Do: func(ctx context.Context) error {
					rows, err := c.Source.Query(ctx, legacyContactsQuery)
					if err != nil {
						return err
					}
					legacy = make([]record.Record, 0, len(rows))
					for _, row := range rows {
						doc, err := c.contactFromRow(row)
						if err != nil {
							return err
						}
						legacy = append(legacy, doc)
						imported = append(imported, doc.String("legacy_id"))
					}
					c.Logger.Info("read legacy contacts", zap.Int("count", len(legacy)))
					return nil
				},
			},
			{
				Name: "snapshot contacts",
				Do: func(ctx context.Context) error {
					var err error
					snapshot, err = c.Target.List(ctx, record.CollectionContacts, record.Query{})
					return err
				},
			},
			{
				Name: "delete contacts",
				Do: func(ctx context.Context) error {
					n, err := c.Target.DeleteMany(ctx, record.CollectionContacts, map[string]any{})
					c.Logger.Info("deleted contacts", zap.Int64("count", n))
					return err
				},
				Undo: func(ctx context.Context) error {
					// clear partial writes before restoring
					if _, err := c.Target.DeleteMany(ctx, record.CollectionContacts, map[string]any{}); err != nil {
						return err
					}
					return c.Target.InsertMany(ctx, record.CollectionContacts, snapshot)
				},
			},
			{
				Name: "insert contacts",
				Do: func(ctx context.Context) error {
					return c.Target.InsertMany(ctx, record.CollectionContacts, legacy)
				},
				Undo: func(ctx context.Context) error {
					_, err := c.Target.DeleteMany(ctx, record.CollectionContacts, map[string]any{
						"legacy_id": bson.M{"$in": imported},
					})
					return err
				},
			},
			{
				Name: "record audit",
				Do: func(ctx context.Context) error {
					_ = c.AuditService.LogChange(ctx, common_models.AuditActionMigrate, record.CollectionContacts, "import-contacts", map[string]common_models.Change{
						"replaced": {Old: len(snapshot)},
						"imported": {New: len(legacy)},
					})
					return nil
				},
			},
		},
	}
}

// contactFromRow keeps every legacy column, moving the row id to legacy_id.
func (c *ContactImport) contactFromRow(row record.Record) (record.Record, error) {
	id := row.String("id")
	if id == "" {
		return nil, fmt.Errorf("legacy contact without id: %v", row)
	}
	doc := make(record.Record, len(row)+1)
	for k, v := range row {
		if k == "id" || k == "_id" {
			continue
		}
		doc[k] = v
	}
	doc["legacy_id"] = id
	doc["imported_at"] = c.Now().UTC()
	return doc, nil
}
