// Package poller tracks long-running remote jobs by polling their status
// endpoints.
//
// # Overview
//
// A [Registry] owns one entry per job id. [Registry.StartPoll] issues a
// status check immediately and keeps re-checking after a fixed delay while
// the server reports the job as "started" or "running". Any other status,
// or a transport failure, ends the session. Every check delivers exactly
// one [Update] to the caller's callback, including the last one.
//
//	reg := poller.NewRegistry(client, poller.WithLogger(logger))
//	defer reg.Close()
//
//	reg.StartPoll("calibration", statusURL, func(u poller.Update) {
//	    switch u := u.(type) {
//	    case poller.Running:
//	        fmt.Println("still running since", u.Payload.String("start_time"))
//	    case poller.Completed:
//	        fmt.Println("done:", u.Payload.String("result_id"))
//	    case poller.Failed:
//	        fmt.Println("failed:", u.Reason())
//	    }
//	}, poller.Every(5*time.Second))
//
// # Concurrency
//
// Checks for one id are strictly sequential: the next one is scheduled only
// after the previous response reached the callback. Callbacks run on the
// poller's goroutines, never under the registry lock, so a callback may call
// back into the registry (for example to stop another job).
//
// [Registry.StopPoll] is safe at any time. A check already in flight still
// delivers its update, but nothing is scheduled after it. Stopping and
// restarting an id while a check is in flight does not issue a second
// concurrent request; the in-flight worker runs the fresh check itself.
package poller
