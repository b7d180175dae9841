package usecase

import (
	"strings"
	"time"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 注文番号 ORD-<yyyymmddhhmmss>-<8桁>
// 一意性は最終的にDBのunique indexで守る
type OrderNumberGenerator struct {
	ids   IDGenerator
	clock Clock
}

func NewOrderNumberGenerator(ids IDGenerator, clock Clock) *OrderNumberGenerator {
	return &OrderNumberGenerator{ids: ids, clock: clock}
}

func (g *OrderNumberGenerator) Next() string {
	suffix := strings.ReplaceAll(g.ids.NewID(), "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return "ORD-" + g.clock.Now().UTC().Format("20060102150405") + "-" + strings.ToUpper(suffix)
}
