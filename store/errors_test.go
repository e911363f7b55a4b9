package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("database is locked")))

	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: tickets.code")))
	assert.True(t, IsUniqueViolation(errors.New("code: Value must be unique.")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create failed: %w",
		errors.New("UNIQUE constraint failed: tickets.code"))))
}
