// Package retry runs a fallible operation under a fixed-delay retry policy.
//
// A Policy combines two triggers into a single decision over each attempt's outcome:
// failures whose kind is listed in Retryable are retried, and successful results
// rejected by Accept ("succeeded but not good enough yet") are retried as well.
// Every other failure aborts immediately without consuming further attempts.
//
// # Usage
//
//	healthy, err := retry.Do(ctx, retry.Policy[bool]{
//	    MaxAttempts: 10,
//	    Retryable:   []error{search.ErrBackendUnavailable},
//	    Accept:      func(ok bool) bool { return ok },
//	    Delay:       3 * time.Second,
//	    Description: "connect to elasticsearch",
//	}, client.Healthy)
package retry
