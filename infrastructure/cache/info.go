package cache

import (
	"fmt"
	"strconv"
	"strings"

	"listingsvc/application/ports"
)

// parseInfoStats extracts the counters this service cares about from a raw
// Redis INFO reply (lines of "field:value", section headers prefixed with
// '#', CRLF line endings).
func parseInfoStats(info string) ports.CacheStats {
	fields := make(map[string]string)
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		fields[parts[0]] = parts[1]
	}

	return ports.CacheStats{
		Hits:             parseInt(fields["keyspace_hits"]),
		Misses:           parseInt(fields["keyspace_misses"]),
		UsedMemory:       parseInt(fields["used_memory"]),
		UsedMemoryHuman:  fields["used_memory_human"],
		ConnectedClients: parseInt(fields["connected_clients"]),
		TotalCommands:    parseInt(fields["total_commands_processed"]),
	}
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// humanBytes renders a byte count the way Redis formats used_memory_human
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f%c", float64(n)/float64(div), "KMGTP"[exp])
}
