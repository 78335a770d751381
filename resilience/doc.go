// Package resilience provides retry and timeout helpers for calls to remote
// secret stores.
//
// A Retry runs an operation up to MaxAttempts times with exponential
// backoff, bounding each attempt with AttemptTimeout when set:
//
//	r := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:    3,
//	    InitialDelay:   200 * time.Millisecond,
//	    AttemptTimeout: 5 * time.Second,
//	    RetryIf: func(err error) bool {
//	        return !errors.Is(err, api.ErrSecretNotFound)
//	    },
//	})
//
//	err := r.Do(ctx, func(ctx context.Context) error {
//	    secret, err = kv.Get(ctx, path)
//	    return err
//	})
package resilience
