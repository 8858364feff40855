package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsRecordNotFound(t *testing.T) {
	require.True(t, IsRecordNotFound(gorm.ErrRecordNotFound))
	require.True(t, IsRecordNotFound(fmt.Errorf("get call: %w", gorm.ErrRecordNotFound)))
	require.False(t, IsRecordNotFound(errors.New("connection refused")))
}

func TestCircuitBreakerIgnoresMissingRows(t *testing.T) {
	settings := GetCircuitBreakerSettings()

	require.True(t, settings.IsSuccessful(nil))
	require.True(t, settings.IsSuccessful(gorm.ErrRecordNotFound))
	require.False(t, settings.IsSuccessful(gorm.ErrInvalidDB))
}

func TestConnectionStringsDisableSSL(t *testing.T) {
	require.Contains(t, GetURL(), "sslmode=disable")
	require.Contains(t, GetDSN(), "sslmode=disable")
}
