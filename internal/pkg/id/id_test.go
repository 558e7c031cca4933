package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAt_CarriesTimestamp(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	parsed, err := ulid.Parse(NewAt(at))

	require.NoError(t, err)
	assert.True(t, at.Equal(ulid.Time(parsed.Time())))
}

func TestNewAt_SortsByTime(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Less(t, NewAt(at), NewAt(at.Add(time.Millisecond)))
}

func TestNew_Unique(t *testing.T) {
	assert.NotEqual(t, New(), New())
}
