package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountSelected(t *testing.T) {
	assert.Equal(t, 0, countSelected(false, false, false, false, false, false))
	assert.Equal(t, 1, countSelected(false, false, false, false, true, false))
	assert.Equal(t, 1, countSelected(true, false, false, false, false, false))
	assert.Equal(t, 2, countSelected(true, false, false, false, false, true))
}
