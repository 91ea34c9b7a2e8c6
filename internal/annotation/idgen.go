package annotation

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator returns a fresh annotation ID on each call.
type Generator func() ID

// UUIDGenerator returns time ordered UUIDv7 identifiers.
func UUIDGenerator() Generator {
	return func() ID {
		return ID(uuid.Must(uuid.NewV7()).String())
	}
}

// SequenceGenerator returns prefix1, prefix2, ... and is safe for concurrent
// use. Tests use it for predictable IDs.
func SequenceGenerator(prefix string) Generator {
	var n atomic.Uint64
	return func() ID {
		return ID(prefix + strconv.FormatUint(n.Add(1), 10))
	}
}
