package billing

import (
	"context"
	"errors"
	"time"

	"github.com/rezonia/billing/internal/model"
)

// DefaultMaxRetries bounds how often a lost numbering race is replayed
const DefaultMaxRetries = 3

var retryBackoff = 50 * time.Millisecond

type operation func() error

// withRetries runs op, replaying it up to maxRetries times while retryable(err) holds.
// The wait grows linearly between attempts and stops early when ctx is done.
func withRetries(ctx context.Context, maxRetries int, retryable func(error) bool, op operation) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt == maxRetries || !retryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * retryBackoff):
		}
	}
	return err
}

// isNumberCollision reports a unique-index hit on the invoice number
func isNumberCollision(err error) bool {
	var dup *model.DuplicateError
	return errors.As(err, &dup) && dup.Resource == "invoice" && dup.Field == "number"
}
