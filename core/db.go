package core

import (
	"context"
	"time"
)

// Transactor runs a unit of work atomically.
// Calls nested inside fn join the ambient transaction carried by ctx.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NowFunc returns the current time in UTC, truncated to the precision Postgres keeps.
var NowFunc = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) } // mockable
