package announce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pps1c/internal/config"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2021, 1, 1, 12, 30, 0, 0, time.UTC)
	event := ProductEvent{
		ScanID:      "MSG4-202101011200",
		Sensor:      "seviri",
		Platform:    "MSG4",
		OrbitNumber: "99999",
		StartTime:   now.Add(-30 * time.Minute),
		EndTime:     now.Add(-15 * time.Minute),
		OutputFile:  "/out/S_NWC_seviri_msg4_99999_20210101T1200000Z_20210101T1215000Z.nc",
		ProducedAt:  now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("MSG4-202101011200"), msg.Key)
	assert.Contains(t, string(msg.Value), `"sensor":"seviri"`)
	assert.Contains(t, string(msg.Value), `"orbit_number":"99999"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "sensor", msg.Headers[0].Key)
	assert.Equal(t, []byte("seviri"), msg.Headers[0].Value)
	assert.Equal(t, "produced_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestNewDisabledReturnsNil(t *testing.T) {
	cfg := config.Default()
	cfg.Announce.Enabled = false

	a := New(&cfg, nil)
	assert.Nil(t, a)

	// A nil announcer is safe to use.
	require.NoError(t, a.Publish(context.Background(), ProductEvent{}))
	require.NoError(t, a.Close())
}

func TestNewEnabledBuildsWriter(t *testing.T) {
	cfg := config.Default()
	cfg.Announce.Enabled = true
	cfg.Announce.Brokers = []string{"localhost:9092"}
	cfg.Announce.Topic = "pps1c.products"

	a := New(&cfg, nil)
	require.NotNil(t, a)
	assert.Equal(t, "pps1c.products", a.writer.Topic)
	require.NoError(t, a.Close())
}
