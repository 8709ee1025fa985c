package checkout

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// OrderIDs generates numeric vendor order IDs: the Unix time in
// milliseconds followed by a zero-padded three-digit random suffix. IDs are
// practically unique, not guaranteed unique.
type OrderIDs struct {
	now  func() time.Time
	intn func(n int) int
}

func NewOrderIDs() *OrderIDs {
	return &OrderIDs{now: time.Now, intn: rand.IntN}
}

func (g *OrderIDs) Next() string {
	return fmt.Sprintf("%d%03d", g.now().UnixMilli(), g.intn(1000))
}
