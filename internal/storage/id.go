package storage

import (
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// randomUUID is swapped in tests to simulate an unavailable random source.
var randomUUID = uuid.NewRandom

// NewID returns an opaque record id: the 32 hex digits of a
// cryptographically random UUID, or "<unix-ms>_<pseudo-random hex>" when the
// random source is unavailable.
func NewID() string {
	u, err := randomUUID()
	if err != nil {
		return fmt.Sprintf("%d_%016x", time.Now().UnixMilli(), rand.Uint64())
	}
	return hex.EncodeToString(u[:])
}
