package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	assert.EqualError(t, Invalid("detail_page.timeout", "must not be negative"),
		"invalid detail_page.timeout: must not be negative")
	assert.EqualError(t, Invalid("", "empty sources file"), "invalid: empty sources file")
	assert.EqualError(t, Invalid("groups[2].name", "duplicate group %q", "morning"),
		`invalid groups[2].name: duplicate group "morning"`)
}

func TestValidationError_Matching(t *testing.T) {
	err := fmt.Errorf("sources[3]: %w", Invalid("url", "is required"))

	assert.ErrorIs(t, err, ErrValidationFailed)

	var ve *ValidationError
	if assert.True(t, errors.As(err, &ve)) {
		assert.Equal(t, "url", ve.Field)
	}
	assert.NotErrorIs(t, errors.New("invalid url: is required"), ErrValidationFailed)
}
