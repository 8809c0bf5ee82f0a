package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAnalog/internal/domain/models"
)

type recordingWriter struct {
	topic  string
	key    []byte
	value  interface{}
	closed bool
}

func (w *recordingWriter) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	w.topic, w.key, w.value = topic, key, value
	return nil
}

func (w *recordingWriter) Close() error { w.closed = true; return nil }

func TestKafkaPublisherPublishAftermath(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w, "aftermath.results")
	oneWeek, day := 3.57, 1
	res := &models.AftermathResult{
		EventID:      "evt-1",
		ReportID:     "rep-9",
		InstrumentID: "005930",
		EventDate:    time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC),
		ComputedAt:   time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
		Summary:      &models.AftermathSummary{After1WPct: &oneWeek, RecoveryDay: &day},
	}
	require.NoError(t, p.PublishAftermath(context.Background(), res))
	assert.Equal(t, "aftermath.results", w.topic)
	assert.Equal(t, "rep-9", string(w.key))

	raw, err := json.Marshal(w.value)
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, true, got["available"])
	assert.Equal(t, 3.57, got["after_1w_pct"])
	assert.Nil(t, got["after_1m_pct"])
	assert.Equal(t, "2024-03-01T06:30:00Z", got["event_date"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherNilSummary(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w, "t")
	require.NoError(t, p.PublishAftermath(context.Background(), &models.AftermathResult{ReportID: "r"}))
	msg := w.value.(aftermathMessage)
	assert.False(t, msg.Available)
	assert.Nil(t, msg.RecoveryDay)
}
