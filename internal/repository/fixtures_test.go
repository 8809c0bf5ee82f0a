package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadObservations(t *testing.T) {
	in := `[
	  {"instrument_id":"BBB","price":"50","change_pct":1.2,"volume":10,"captured_at":"2024-01-03T06:30:00Z"},
	  {"instrument_id":"AAA","price":70000,"change_pct":5.0,"volume":100000,"captured_at":"2024-01-02T06:30:00+09:00"},
	  {"instrument_id":"AAA","price":"68000.5","change_pct":-2.9,"volume":90000,"captured_at":"2024-01-01T06:30:00Z"}
	]`
	obs, err := LoadObservations(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, obs, 3)
	assert.Equal(t, "AAA", obs[0].InstrumentID)
	assert.Equal(t, "68000.5", obs[0].Price.String())
	assert.Equal(t, "AAA", obs[1].InstrumentID)
	assert.Equal(t, "UTC", obs[1].CapturedAt.Location().String())
	assert.Equal(t, "BBB", obs[2].InstrumentID)
}

func TestLoadObservationsRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing instrument": `[{"price":1,"change_pct":1,"volume":1,"captured_at":"2024-01-01T00:00:00Z"}]`,
		"negative volume":    `[{"instrument_id":"A","price":1,"change_pct":1,"volume":-1,"captured_at":"2024-01-01T00:00:00Z"}]`,
		"negative price":     `[{"instrument_id":"A","price":-1,"change_pct":1,"volume":1,"captured_at":"2024-01-01T00:00:00Z"}]`,
		"missing timestamp":  `[{"instrument_id":"A","price":1,"change_pct":1,"volume":1}]`,
	}
	for name, in := range cases {
		_, err := LoadObservations(strings.NewReader(in))
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrInvalidObservation), "%s: %v", name, err)
	}
}

func TestLoadObservationsRejectsUnknownFields(t *testing.T) {
	_, err := LoadObservations(strings.NewReader(`[{"instrument_id":"A","ticker":"x"}]`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidObservation))
}

func TestLoadSampleFixture(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "testdata", "observations.json"))
	require.NoError(t, err)
	defer f.Close()

	obs, err := LoadObservations(f)
	require.NoError(t, err)
	require.NotEmpty(t, obs)

	s := newTestStore(t)
	require.NoError(t, s.InsertBatch(context.Background(), obs))
	got, err := s.ObservationsAfter(context.Background(), "005930", obs[0].CapturedAt, 5)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
