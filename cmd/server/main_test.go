package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("RB_TEST_KEY", "value")
	assert.Equal(t, "value", getEnvOrDefault("RB_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnvOrDefault("RB_TEST_MISSING", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("RB_TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("RB_TEST_INT", 7))

	t.Setenv("RB_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("RB_TEST_INT", 7))

	assert.Equal(t, 7, getEnvInt("RB_TEST_INT_MISSING", 7))
}
