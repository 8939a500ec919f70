package notification

import (
	"Go2NetFixtures/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	in := model.FixtureSummary{
		RunID:     "3f1c",
		Archetype: "dns_amp",
		Path:      "/tmp/out/dns_amp.pcap",
		Packets:   1000,
		Bytes:     1234567,
		Target:    "192.168.1.100",
		Seed:      1<<63 + 5,
		CreatedAt: time.Date(2026, 10, 15, 8, 30, 0, 123, time.UTC),
	}

	data, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in.RunID, out.RunID)
	assert.Equal(t, in.Archetype, out.Archetype)
	assert.Equal(t, in.Packets, out.Packets)
	assert.Equal(t, in.Bytes, out.Bytes)
	// seeds above 2^53 would lose precision as a protobuf number
	assert.Equal(t, in.Seed, out.Seed)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}
