package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const DefaultChunkSize = 4096

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"LOOKAHEAD_CHUNK_SIZE": {"LOOKAHEAD_CHUNK_SIZE", ChunkSize(), fmt.Sprintf("Size of one buffer chunk in bytes (default %d)", DefaultChunkSize)},
		"LOOKAHEAD_DEBUG":      {"LOOKAHEAD_DEBUG", Debug(), "Show chunk loads and refused take backs (e.g. LOOKAHEAD_DEBUG=1)"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

// ChunkSize returns the chunk size set via LOOKAHEAD_CHUNK_SIZE. Values that are not
// positive integers are logged and ignored.
func ChunkSize() int {
	if s := clean("LOOKAHEAD_CHUNK_SIZE"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			slog.Error("invalid setting must be greater than zero", "LOOKAHEAD_CHUNK_SIZE", s, "error", err)
			return DefaultChunkSize
		}
		return n
	}
	return DefaultChunkSize
}

// Debug is set via LOOKAHEAD_DEBUG. Any value that does not parse as a boolean enables it.
func Debug() bool {
	if s := clean("LOOKAHEAD_DEBUG"); s != "" {
		d, err := strconv.ParseBool(s)
		if err != nil {
			return true
		}
		return d
	}
	return false
}
