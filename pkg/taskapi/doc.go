// Package taskapi serves a local stand-in for the optimization server's
// task endpoints, so the poller and CLI can run without the real backend.
//
// Jobs are simulated: a started job reports "started" for StartDelay, then
// "running" until Duration has elapsed, then "completed" with a result id.
// Status is derived from the clock on every request, so no goroutines run
// per job.
//
// Routes:
//
//	POST   /api/task/{resourceID}/type/{jobType}   start (201, or 208 if active)
//	GET    /api/task/{resourceID}/type/{jobType}   status document
//	DELETE /api/task/{resourceID}/type/{jobType}   cancel
//	GET    /api/tasks                              all jobs
//	GET    /api/project/{projectID}/optimizations/{optimizationID}/results
//	GET    /api/project/{projectID}/parsets/{parsetID}/automatic_calibration
//	GET    /metrics                                Prometheus exposition
//	GET    /healthz
package taskapi
