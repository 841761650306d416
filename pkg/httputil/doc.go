// Package httputil provides HTTP plumbing shared by the job API client and
// the task server.
//
// # Retry
//
// [Retry] runs an operation with exponential backoff. Only errors marked
// with [Retryable] are retried; anything else returns immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// # Instrumented client
//
// [NewClient] returns an *http.Client whose transport reports every request
// to the registered observability HTTP hooks.
package httputil
