package record

import (
	"fmt"
	"slices"
)

// Collections holding CRM records that templates, documents and reports
// may read.
const (
	CollectionContacts  = "contacts"
	CollectionLeads     = "leads"
	CollectionAgents    = "agents"
	CollectionLoans     = "loans"
	CollectionCallLogs  = "call_logs"
	CollectionTasks     = "tasks"
	CollectionClosings  = "closings"
	CollectionRateSheet = "rate_sheets"
)

var Collections = []string{
	CollectionContacts, CollectionLeads, CollectionAgents, CollectionLoans,
	CollectionCallLogs, CollectionTasks, CollectionClosings, CollectionRateSheet,
}

// Record is a schemaless CRM document as stored.
type Record map[string]any

// ID returns the record id as a string.
func (r Record) ID() string {
	return Stringify(r["_id"])
}

// String returns the stringified value of field, "" when absent.
func (r Record) String(field string) string {
	return Stringify(r[field])
}

// Query selects records of one collection.
type Query struct {
	Filter map[string]any
	Sort   string
	Desc   bool
	Limit  int64
}

func checkCollection(name string) error {
	if !slices.Contains(Collections, name) {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return nil
}
