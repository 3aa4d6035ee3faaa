package fallback

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

// Tier identifies which data source produced a result.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
	TierSynthetic Tier = "synthetic"
)

// Degraded reports whether the result came from anything but the primary
// source, so callers can mark the data as approximate.
func (t Tier) Degraded() bool {
	return t != TierPrimary
}

// Source is one fetch attempt in a chain.
type Source[T any] func(ctx context.Context) (T, error)

// Result carries the resolved data together with its provenance.
type Result[T any] struct {
	Data T
	Tier Tier
}

// Chain resolves data through tiered degradation: primary first, then a
// coarser secondary source, then a synthesized default. Auth failures and
// caller cancellation are never absorbed; they propagate immediately.
// Every tier transition is logged with the failure that caused it and
// reported through OnDegrade so chronic primary outages are visible.
// Timeout, when set, budgets each source separately: a source that spends
// its budget times out alone and the next tier starts with a fresh one.
type Chain[T any] struct {
	Name      string
	Primary   Source[T]
	Secondary Source[T]
	Synth     Source[T]
	Timeout   time.Duration
	Logger    *zerolog.Logger
	OnDegrade func(chain string, tier Tier, cause error)
}

func (c Chain[T]) Resolve(ctx context.Context) (Result[T], error) {
	var zero Result[T]

	data, err := c.run(ctx, c.Primary)
	if err == nil {
		return Result[T]{Data: data, Tier: TierPrimary}, nil
	}
	if !apperrors.Fallbackable(err) {
		return zero, err
	}

	c.degrade(TierSecondary, err)
	if c.Secondary != nil {
		data, serr := c.run(ctx, c.Secondary)
		if serr == nil {
			return Result[T]{Data: data, Tier: TierSecondary}, nil
		}
		if !apperrors.Fallbackable(serr) {
			return zero, serr
		}
		err = serr
	}

	c.degrade(TierSynthetic, err)
	if c.Synth == nil {
		return zero, err
	}
	data, synthErr := c.run(ctx, c.Synth)
	if synthErr != nil {
		return zero, synthErr
	}
	return Result[T]{Data: data, Tier: TierSynthetic}, nil
}

func (c Chain[T]) run(ctx context.Context, src Source[T]) (T, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return src(ctx)
}

func (c Chain[T]) degrade(to Tier, cause error) {
	if c.Logger != nil {
		c.Logger.Warn().
			Err(cause).
			Str("chain", c.Name).
			Str("tier", string(to)).
			Msg("data source degraded")
	}
	if c.OnDegrade != nil {
		c.OnDegrade(c.Name, to, cause)
	}
}
