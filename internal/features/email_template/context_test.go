package email_template

import (
	"context"
	"testing"
	"time"

	"broker-crm/internal/features/record"
	"broker-crm/internal/features/record/recordtest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestContextBuilder_Build(t *testing.T) {
	builder := NewContextBuilder(nil, nil, zap.NewNop())

	primary := record.Record{
		"_id":        "c1",
		"first_name": "Dana",
		"closing":    time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		"first_time": true,
		"notes":      nil,
		"address":    primitive.D{{Key: "city", Value: "Austin"}, {Key: "zip", Value: "78701"}},
		"tags":       primitive.A{"vip", "referral"},
		"loan":       bson.M{"amount": 425000.5},
	}
	related := map[string]record.Record{
		"buyer_agent": {"_id": "a1", "first_name": "Sam"},
	}

	values, err := builder.Build(context.Background(), primary, related)
	require.NoError(t, err)

	want := map[string]string{
		"id":                     "c1",
		"first_name":             "Dana",
		"closing":                "03/09/2026",
		"first_time":             "Yes",
		"notes":                  "",
		"address_city":           "Austin",
		"address_zip":            "78701",
		"tags":                   "vip, referral",
		"loan_amount":            "425000.5",
		"buyer_agent_id":         "a1",
		"buyer_agent_first_name": "Sam",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("context mismatch (-want +got):\n%s", diff)
	}
}

func TestContextBuilder_ForRecord(t *testing.T) {
	mem := recordtest.NewMemory().
		Add(record.CollectionContacts, record.Record{
			"_id":              "c1",
			"first_name":       "Dana",
			"buyer_agent_id":   "a1",
			"listing_agent_id": "missing",
		}).
		Add(record.CollectionAgents, record.Record{"_id": "a1", "first_name": "Sam", "phone": "512-555-0101"})

	fields := &MockFieldService{Derived: map[string]string{"greeting": "Hello Dana"}}
	builder := NewContextBuilder(record.NewRecordService(mem, zap.NewNop()), fields, zap.NewNop())

	values, err := builder.ForRecord(context.Background(), record.CollectionContacts, "c1")
	require.NoError(t, err)

	assert.Equal(t, "Sam", values["buyer_agent_first_name"])
	assert.Equal(t, "512-555-0101", values["buyer_agent_phone"])
	assert.Equal(t, "Hello Dana", values["greeting"])
	assert.NotContains(t, values, "listing_agent_first_name")

	_, err = builder.ForRecord(context.Background(), record.CollectionContacts, "nope")
	assert.Error(t, err)
}
