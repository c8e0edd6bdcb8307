package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"primary_email" validate:"required,email"`
	Kind  string `json:"kind" validate:"oneof=a b"`
	Note  string `json:"note"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{Email: "jane@example.com", Kind: "a"}))

	err := ValidateStruct(sample{Email: "not-an-email", Kind: "c"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, map[string]string{
		"primary_email": "must be a valid email address",
		"kind":          "must be one of [a b]",
	}, ve.Fields)
	assert.Equal(t, "validation failed: kind must be one of [a b]; primary_email must be a valid email address", ve.Error())
	assert.Equal(t, 400, ve.HTTPStatus())
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("to", "ops@broker.example"))

	err := ValidateEmail("to", "ops@")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "to")

	assert.Error(t, ValidateEmail("to", ""))
}
