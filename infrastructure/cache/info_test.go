package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInfoStats(t *testing.T) {
	t.Run("extracts counters from a raw INFO reply", func(t *testing.T) {
		info := "# Stats\r\n" +
			"total_connections_received:17\r\n" +
			"total_commands_processed:912\r\n" +
			"keyspace_hits:640\r\n" +
			"keyspace_misses:160\r\n" +
			"\r\n" +
			"# Memory\r\n" +
			"used_memory:1048576\r\n" +
			"used_memory_human:1.00M\r\n" +
			"\r\n" +
			"# Clients\r\n" +
			"connected_clients:4\r\n"

		stats := parseInfoStats(info)
		assert.Equal(t, int64(640), stats.Hits)
		assert.Equal(t, int64(160), stats.Misses)
		assert.Equal(t, int64(1048576), stats.UsedMemory)
		assert.Equal(t, "1.00M", stats.UsedMemoryHuman)
		assert.Equal(t, int64(4), stats.ConnectedClients)
		assert.Equal(t, int64(912), stats.TotalCommands)
	})

	t.Run("missing or malformed fields default to zero", func(t *testing.T) {
		stats := parseInfoStats("keyspace_hits:not-a-number\ngibberish line\n")
		assert.Zero(t, stats.Hits)
		assert.Zero(t, stats.Misses)
		assert.Empty(t, stats.UsedMemoryHuman)
	})

	t.Run("empty reply yields zero stats", func(t *testing.T) {
		stats := parseInfoStats("")
		assert.Zero(t, stats.Hits)
		assert.Zero(t, stats.TotalCommands)
	})
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{1024, "1.00K"},
		{1536, "1.50K"},
		{1048576, "1.00M"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, humanBytes(tc.in))
	}
}
