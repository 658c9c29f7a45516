package order

import (
	"math/rand"
	"time"
)

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewNumber builds a human-readable order number:
// ORD-<UTC date YYYYMMDD>-<6 random base36 uppercase chars>.
// The random suffix is not collision-checked here; the order_number
// unique constraint catches collisions and the caller retries.
func NewNumber(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = numberAlphabet[rand.Intn(len(numberAlphabet))]
	}
	return "ORD-" + now.UTC().Format("20060102") + "-" + string(suffix)
}
