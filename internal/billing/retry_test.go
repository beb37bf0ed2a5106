package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/billing/internal/model"
)

var errCollision = model.NewDuplicateError("invoice", "number", "FAC-2024-0001")

func init() {
	retryBackoff = time.Millisecond
}

func TestWithRetries_SucceedsFirstTry(t *testing.T) {
	attempts := 0
	err := withRetries(context.Background(), 3, isNumberCollision, func() error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetries_SucceedsAfterCollisions(t *testing.T) {
	attempts := 0
	err := withRetries(context.Background(), 3, isNumberCollision, func() error {
		attempts++
		if attempts < 3 {
			return errCollision
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetries_FailsAfterMaxRetries(t *testing.T) {
	attempts := 0
	err := withRetries(context.Background(), 2, isNumberCollision, func() error {
		attempts++
		return errCollision
	})

	assert.ErrorIs(t, err, model.ErrDuplicate)
	assert.Equal(t, 3, attempts) // initial + 2 retries
}

func TestWithRetries_OtherErrorStopsImmediately(t *testing.T) {
	other := errors.New("disk full")
	attempts := 0
	err := withRetries(context.Background(), 3, isNumberCollision, func() error {
		attempts++
		return other
	})

	assert.ErrorIs(t, err, other)
	assert.Equal(t, 1, attempts)
}

func TestWithRetries_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := withRetries(ctx, 3, isNumberCollision, func() error {
		attempts++
		return errCollision
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsNumberCollision(t *testing.T) {
	assert.True(t, isNumberCollision(errCollision))
	assert.False(t, isNumberCollision(model.NewDuplicateError("client", "email", "a@b.fr")))
	assert.False(t, isNumberCollision(errors.New("other")))
}
