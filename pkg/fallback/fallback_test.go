package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

func TestResolvePrimary(t *testing.T) {
	chain := Chain[[]string]{
		Name: "test",
		Primary: func(context.Context) ([]string, error) {
			return []string{"a", "b"}, nil
		},
		Secondary: func(context.Context) ([]string, error) {
			t.Fatal("secondary must not run when primary succeeds")
			return nil, nil
		},
	}

	result, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Data)
	assert.Equal(t, TierPrimary, result.Tier)
	assert.False(t, result.Tier.Degraded())
}

func TestResolveSecondary(t *testing.T) {
	var degradations []Tier
	chain := Chain[int]{
		Name: "test",
		Primary: func(context.Context) (int, error) {
			return 0, apperrors.Infrastructure("primary down", nil)
		},
		Secondary: func(context.Context) (int, error) {
			return 42, nil
		},
		OnDegrade: func(_ string, tier Tier, _ error) {
			degradations = append(degradations, tier)
		},
	}

	result, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, result.Data)
	assert.Equal(t, TierSecondary, result.Tier)
	assert.True(t, result.Tier.Degraded())
	assert.Equal(t, []Tier{TierSecondary}, degradations)
}

func TestResolveSynthetic(t *testing.T) {
	var degradations []Tier
	chain := Chain[int]{
		Name: "test",
		Primary: func(context.Context) (int, error) {
			return 0, apperrors.Infrastructure("primary down", nil)
		},
		Secondary: func(context.Context) (int, error) {
			return 0, apperrors.NotFound("coarse data", nil)
		},
		Synth: func(context.Context) (int, error) {
			return 7, nil
		},
		OnDegrade: func(_ string, tier Tier, _ error) {
			degradations = append(degradations, tier)
		},
	}

	result, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, result.Data)
	assert.Equal(t, TierSynthetic, result.Tier)
	assert.Equal(t, []Tier{TierSecondary, TierSynthetic}, degradations)
}

func TestResolveAuthShortCircuits(t *testing.T) {
	authErr := apperrors.Auth("token expired", nil)
	chain := Chain[int]{
		Name: "test",
		Primary: func(context.Context) (int, error) {
			return 0, authErr
		},
		Secondary: func(context.Context) (int, error) {
			t.Fatal("auth failures must never fall back")
			return 0, nil
		},
	}

	_, err := chain.Resolve(context.Background())
	assert.True(t, apperrors.IsAuth(err))
}

func TestResolveCancellationShortCircuits(t *testing.T) {
	chain := Chain[int]{
		Name: "test",
		Primary: func(context.Context) (int, error) {
			return 0, context.Canceled
		},
		Secondary: func(context.Context) (int, error) {
			t.Fatal("a cancelled caller must not be served degraded data")
			return 0, nil
		},
	}

	_, err := chain.Resolve(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveDeadlineFallsBack(t *testing.T) {
	chain := Chain[int]{
		Name: "test",
		Primary: func(context.Context) (int, error) {
			return 0, context.DeadlineExceeded
		},
		Secondary: func(context.Context) (int, error) {
			return 9, nil
		},
	}

	result, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TierSecondary, result.Tier)
	assert.Equal(t, 9, result.Data)
}

func TestResolvePerSourceTimeout(t *testing.T) {
	chain := Chain[int]{
		Name:    "test",
		Timeout: 20 * time.Millisecond,
		Primary: func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
		Secondary: func(ctx context.Context) (int, error) {
			require.NoError(t, ctx.Err(), "the secondary gets its own budget, not the primary's leftovers")
			return 5, nil
		},
	}

	result, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TierSecondary, result.Tier)
	assert.Equal(t, 5, result.Data)
}

func TestResolveExhausted(t *testing.T) {
	boom := errors.New("boom")
	chain := Chain[int]{
		Name: "test",
		Primary: func(context.Context) (int, error) {
			return 0, apperrors.Infrastructure("primary down", nil)
		},
		Secondary: func(context.Context) (int, error) {
			return 0, apperrors.Infrastructure("secondary down", boom)
		},
	}

	_, err := chain.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsInfrastructure(err))
	assert.ErrorIs(t, err, boom)
}
