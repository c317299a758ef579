// Package httputil provides the HTTP plumbing used to fetch spreadsheets.
//
// # Overview
//
//   - [Client]: GET with context, default headers, a body size limit and
//     status code mapping
//   - [Retry]: retry with exponential backoff for [RetryableError] failures
//
// # Status mapping
//
// [Client.Get] maps responses onto errors the caller can act on:
//
//   - 200: success
//   - 404: [ErrNotFound]
//   - 429: *errors.RateLimitedError carrying Retry-After when present
//   - 5xx: [ErrNetwork] wrapped in [RetryableError]
//   - other: [ErrNetwork]
//
// Transport failures (DNS, refused connections, timeouts) are also wrapped in
// [RetryableError].
//
// # Retry
//
// A client built with zero retries performs exactly one attempt. With
// retries enabled, only [RetryableError] failures are repeated and the delay
// doubles after each attempt:
//
//	client := httputil.NewClient(30*time.Second, nil, httputil.WithRetries(2, time.Second))
//	body, err := client.Get(ctx, url)
package httputil
