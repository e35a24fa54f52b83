package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riverwatchhq/riverwatch/internal/database/testutil"
)

func TestStationServiceUpsertAndGet(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewStationService(db)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Upsert(ctx, UpsertStationInput{
		ID:        "ABC123",
		Name:      "Boulder Creek",
		RiverName: "Boulder Creek",
		State:     "CO",
		Latitude:  40.015,
		Longitude: -105.27,
	})
	require.NoError(t, err)
	require.Equal(t, "ABC123", created.ID)

	updated, err := svc.Upsert(ctx, UpsertStationInput{
		ID:   "ABC123",
		Name: "Boulder Creek at Broadway",
	})
	require.NoError(t, err)
	require.Equal(t, "Boulder Creek at Broadway", updated.Name)

	stored, err := svc.Get(ctx, "ABC123")
	require.NoError(t, err)
	require.Equal(t, "Boulder Creek at Broadway", stored.Name)
}

func TestStationServiceGetNotFound(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewStationService(db)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "NOPE")
	require.ErrorIs(t, err, ErrStationNotFound)
}

func TestStationServiceUpsertValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewStationService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Upsert(ctx, UpsertStationInput{Name: "No ID"})
	require.Error(t, err)

	_, err = svc.Upsert(ctx, UpsertStationInput{ID: "ABC123"})
	require.Error(t, err)
}

func TestStationServiceListOrdersByName(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewStationService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Upsert(ctx, UpsertStationInput{ID: "Z1", Name: "Yampa River"})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, UpsertStationInput{ID: "A1", Name: "Animas River"})
	require.NoError(t, err)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Animas River", rows[0].Name)
	require.Equal(t, "Yampa River", rows[1].Name)
}

func TestStationServiceDisplayName(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewStationService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Upsert(ctx, UpsertStationInput{ID: "ABC123", Name: "Boulder Creek"})
	require.NoError(t, err)

	require.Equal(t, "Boulder Creek", svc.DisplayName(ctx, "ABC123"))
	require.Equal(t, "UNKNOWN9", svc.DisplayName(ctx, "UNKNOWN9"), "unknown ids fall back to the raw id")
}
