package catalog

import (
	"Go2NetFixtures/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRowMatchesTableColumns(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	row := Row(model.FixtureSummary{
		RunID:     "run",
		Archetype: "fragment",
		Path:      "out/fragment.pcap",
		Packets:   2000,
		Bytes:     150000,
		Target:    "192.168.1.100",
		Seed:      42,
		CreatedAt: created,
	})

	assert.Len(t, row, 8)
	assert.Equal(t, created, row[0])
	assert.Equal(t, "fragment", row[2])
	assert.Equal(t, uint64(42), row[5])
	assert.Equal(t, uint64(2000), row[6])
	assert.Equal(t, uint64(150000), row[7])
}
