package email_template

import (
	"context"
	"sort"
	"strings"

	"broker-crm/internal/features/field_catalog"
	"broker-crm/internal/features/record"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ContextBuilder turns stored records into the flat string context merge
// tags resolve against.
type ContextBuilder struct {
	Records record.RecordService
	Fields  field_catalog.FieldService
	Logger  *zap.Logger
}

func NewContextBuilder(records record.RecordService, fields field_catalog.FieldService, logger *zap.Logger) *ContextBuilder {
	return &ContextBuilder{
		Records: records,
		Fields:  fields,
		Logger:  logger,
	}
}

// Build flattens primary into the context, then every related record under
// its prefix, then evaluates catalog formulas over the result. Nested
// documents join keys with "_", arrays join values with ", ".
func (b *ContextBuilder) Build(ctx context.Context, primary record.Record, related map[string]record.Record) (map[string]string, error) {
	values := make(map[string]string, len(primary))
	flatten("", map[string]any(primary), values)

	prefixes := make([]string, 0, len(related))
	for prefix := range related {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		flatten(prefix, map[string]any(related[prefix]), values)
	}

	if b.Fields == nil {
		return values, nil
	}
	return b.Fields.Derive(ctx, values)
}

// ForRecord loads a record with its relations and builds its context.
func (b *ContextBuilder) ForRecord(ctx context.Context, collection, id string) (map[string]string, error) {
	primary, err := b.Records.GetRecord(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	var related map[string]record.Record
	if relations := relationsFor(collection); len(relations) > 0 {
		related = b.Records.LoadRelated(ctx, primary, relations)
	}
	return b.Build(ctx, primary, related)
}

func relationsFor(collection string) []record.Relation {
	switch collection {
	case record.CollectionContacts, record.CollectionLeads:
		return record.ContactRelations
	default:
		return nil
	}
}

func flatten(prefix string, value any, out map[string]string) {
	switch v := value.(type) {
	case map[string]any:
		for k, inner := range v {
			flatten(joinKey(prefix, k), inner, out)
		}
	case bson.M:
		flatten(prefix, map[string]any(v), out)
	case record.Record:
		flatten(prefix, map[string]any(v), out)
	case primitive.D:
		for _, e := range v {
			flatten(joinKey(prefix, e.Key), e.Value, out)
		}
	case primitive.A:
		flatten(prefix, []any(v), out)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := record.Stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		out[prefix] = strings.Join(parts, ", ")
	case []string:
		out[prefix] = strings.Join(v, ", ")
	default:
		if prefix != "" {
			out[prefix] = record.Stringify(v)
		}
	}
}

func joinKey(prefix, key string) string {
	if key == "_id" {
		key = "id"
	}
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}
