package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("cannot follow %s", "yourself")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "invalid input: cannot follow yourself", err.Error())
}
