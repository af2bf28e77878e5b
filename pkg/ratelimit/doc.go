// Package ratelimit provides client-side throttling for Instagram API calls.
//
// Two algorithms implement Limiter:
//
//   - TokenBucket refills to full capacity once per period.
//   - SlidingWindow admits at most N requests in any rolling window.
//
// The API client uses PerHour, a sliding window over one hour. A limiter only
// delays a request; it never retries one.
//
//	limiter := ratelimit.PerHour(500)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
