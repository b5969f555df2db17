package hazard_test

import (
	"context"
	"testing"
	"time"

	"github.com/annwhocodes/ResQMap/pkg/hazard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHazardStoreReportAndList(t *testing.T) {
	store, err := hazard.OpenStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	flood, err := store.Report(ctx, hazard.Hazard{
		Type:        "flood",
		Severity:    "high",
		Lat:         19.072,
		Lng:         72.877,
		Description: "Road flooded, impassable",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, flood.ID)
	assert.False(t, flood.Timestamp.IsZero())

	_, err = store.Report(ctx, hazard.Hazard{
		Type:      "debris",
		Lat:       18.551,
		Lng:       73.855,
		Timestamp: time.Now().UTC().Add(time.Minute),
	})
	require.NoError(t, err)

	hazards, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, hazards, 2)

	// newest first
	assert.Equal(t, "debris", hazards[0].Type)
	assert.Equal(t, "flood", hazards[1].Type)
	// severity defaulted
	assert.Equal(t, "medium", hazards[0].Severity)
}

func TestHazardStoreEmptyList(t *testing.T) {
	store, err := hazard.OpenStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	hazards, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hazards)
}
