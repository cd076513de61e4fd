package technician

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTechnician(t *testing.T) {
	tech, err := NewTechnician(501, "Alice", "alice@example.com", true)
	require.NoError(t, err)

	assert.Equal(t, int64(501), tech.ExternalID())
	assert.Equal(t, "Alice", tech.Name())
	assert.True(t, tech.Active())
	assert.True(t, tech.ShowOnMap())
	assert.Nil(t, tech.Location())

	_, err = NewTechnician(0, "Alice", "alice@example.com", true)
	assert.ErrorContains(t, err, "external ID")

	_, err = NewTechnician(501, "", "alice@example.com", true)
	assert.ErrorContains(t, err, "name")
}

func TestUpdateFromSync_LeavesManualFieldsAlone(t *testing.T) {
	location := "Berlin"
	timezone := "Europe/Berlin"
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tech, err := ReconstructTechnician(7, 501, "Alice", "alice@example.com", true,
		&location, &timezone, false, created, created)
	require.NoError(t, err)

	tech.UpdateFromSync("Alice B.", "alice.b@example.com", false)

	assert.Equal(t, "Alice B.", tech.Name())
	assert.Equal(t, "alice.b@example.com", tech.Email())
	assert.False(t, tech.Active())

	require.NotNil(t, tech.Location())
	assert.Equal(t, "Berlin", *tech.Location())
	require.NotNil(t, tech.Timezone())
	assert.Equal(t, "Europe/Berlin", *tech.Timezone())
	assert.False(t, tech.ShowOnMap())
}

func TestSetManualFields(t *testing.T) {
	tech, err := NewTechnician(501, "Alice", "alice@example.com", true)
	require.NoError(t, err)

	location := "Oslo"
	tech.SetManualFields(&location, nil, false)

	require.NotNil(t, tech.Location())
	assert.Equal(t, "Oslo", *tech.Location())
	assert.Nil(t, tech.Timezone())
	assert.False(t, tech.ShowOnMap())
}
