package logger

import (
	"context"
	"testing"
	"time"

	common_models "broker-crm/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type chanSink struct {
	got chan common_models.Log
}

func (s *chanSink) Insert(ctx context.Context, log common_models.Log) error {
	s.got <- log
	return nil
}

func TestDBCoreTeesEntries(t *testing.T) {
	base, observed := observer.New(zap.InfoLevel)
	sink := &chanSink{got: make(chan common_models.Log, 4)}
	log := zap.New(NewDBCore(base, NewDBLogWriter(sink, "test-app")))

	log.With(zap.String("template_id", "tpl-1")).Warn("unresolved merge tags", zap.Int("count", 2))

	select {
	case rec := <-sink.got:
		assert.Equal(t, "unresolved merge tags", rec.Message)
		assert.Equal(t, "test-app", rec.AppId)
		assert.Equal(t, 30, rec.LogLevelId)
	case <-time.After(2 * time.Second):
		t.Fatal("log entry never reached the sink")
	}

	require.Equal(t, 1, observed.Len())
	assert.Equal(t, "unresolved merge tags", observed.All()[0].Message)
}

func TestDBCoreRespectsLevel(t *testing.T) {
	base, observed := observer.New(zap.InfoLevel)
	sink := &chanSink{got: make(chan common_models.Log, 4)}
	log := zap.New(NewDBCore(base, NewDBLogWriter(sink, "test-app")))

	log.Debug("noise")

	assert.Zero(t, observed.Len())
	select {
	case rec := <-sink.got:
		t.Fatalf("debug entry persisted: %+v", rec)
	case <-time.After(50 * time.Millisecond):
	}
}
