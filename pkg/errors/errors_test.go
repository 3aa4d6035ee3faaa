package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindSlotConflict, KindOf(SlotConflict("taken")))
	assert.Equal(t, KindAuth, KindOf(Auth("expired", nil)))
	assert.Equal(t, KindNotFound, KindOf(NotFound("doctor", nil)))
	assert.Equal(t, KindInfrastructure, KindOf(Infrastructure("down", nil)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("calling upstream: %w", Auth("expired", nil))
	assert.Equal(t, KindAuth, KindOf(wrapped))
	assert.True(t, IsAuth(wrapped))
}

func TestKindOfDeadline(t *testing.T) {
	// A slow source is an infrastructure failure, not a caller decision.
	assert.Equal(t, KindInfrastructure, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindInfrastructure, KindOf(fmt.Errorf("fetch: %w", context.DeadlineExceeded)))
}

func TestFallbackable(t *testing.T) {
	assert.True(t, Fallbackable(Infrastructure("down", nil)))
	assert.True(t, Fallbackable(NotFound("endpoint", nil)))
	assert.True(t, Fallbackable(errors.New("unclassified")))
	assert.True(t, Fallbackable(context.DeadlineExceeded))

	assert.False(t, Fallbackable(nil))
	assert.False(t, Fallbackable(Auth("expired", nil)))
	assert.False(t, Fallbackable(Validation("bad input")))
	assert.False(t, Fallbackable(SlotConflict("taken")))
	assert.False(t, Fallbackable(context.Canceled))
	assert.False(t, Fallbackable(fmt.Errorf("fetch: %w", context.Canceled)))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Infrastructure("upstream unreachable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "upstream unreachable")
	assert.Contains(t, err.Error(), "connection refused")
}
