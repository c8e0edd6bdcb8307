package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSinglePage(t *testing.T) {
	l := New(LetterLowWater)
	l.Title("Pre-Approval Letter")
	l.KeyValue("Loan Amount", "$400,000.00")
	l.Section("Conditions", nil)

	out, err := Render(l, Meta{Title: "Pre-Approval", CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Greater(t, len(out), 0)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderMultiPageMatchesLayout(t *testing.T) {
	l := New(ReportLowWater)
	l.Title("Daily Report")
	l.Section("Call Logs", items(120, "café follow-up"))
	require.Greater(t, l.PageCount(), 1)

	out, err := Render(l, Meta{Title: "Daily Report"})
	require.NoError(t, err)
	require.NoError(t, Validate(out, l.PageCount()))
}

func TestValidateRejectsGarbage(t *testing.T) {
	assert.ErrorIs(t, Validate(nil, 1), ErrEmptyDocument)

	err := Validate([]byte("not a pdf"), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestGenerationError(t *testing.T) {
	err := fmt.Errorf("daily report: %w", &GenerationError{Document: "daily_report", Err: ErrEmptyDocument})

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "failed to generate document", ge.Error())
	assert.ErrorIs(t, err, ErrEmptyDocument)
	assert.Equal(t, 500, ge.HTTPStatus())
}
