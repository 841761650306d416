// Package jobapi is the HTTP client for the optimization server's job
// endpoints.
//
// [Client] implements [poller.Transport]: Check fetches a status document
// and Kill cancels a running task. Paths are built with [TaskPath],
// [OptimizationResultsPath] and [CalibrationPath] and resolved against the
// client's base URL.
//
//	client, err := jobapi.New("http://localhost:8080")
//	reg := poller.NewRegistry(client)
//	reg.StartPoll("autofit:p1", jobapi.CalibrationPath("p1", "ps1"), onUpdate)
//
// [poller.Transport]: github.com/matzehuels/optima/pkg/poller.Transport
package jobapi
