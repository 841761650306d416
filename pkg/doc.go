// Package pkg provides the libraries behind the optima command.
//
// # Overview
//
// Optima has two halves. The first lays out labelled pie charts so that
// no two labels overlap; the second follows long-running jobs on an
// optimization server until they finish. The pkg directory is organized
// as follows:
//
//  1. [render] - Charts (pie label layout, series and bar charts, SVG conversion)
//  2. [poller] - Job poll registry and status classification
//  3. [jobapi] - HTTP client for the job server
//  4. [taskapi] - Simulated job server used for local runs and tests
//  5. [cache] - File, Redis and MongoDB backed caches for charts and job history
//  6. [config] - TOML configuration with environment overrides
//  7. [observability] - Hooks for layout, render, cache and poll events
//
// # Architecture
//
// Rendering a pie chart:
//
//	CSV/JSON slices
//	       ↓
//	  [render/pie/layout] (angles, anchors, label relaxation)
//	       ↓
//	  [render/pie/sink] (SVG, JSON, PNG, PDF)
//
// Following a job:
//
//	[poller.Registry] → [jobapi.Client] → job server
//	       ↓
//	  callback with Started, Running, Completed or Failed
//
// # Quick Start
//
// Lay out and render a chart:
//
//	chart, err := layout.Compute([]layout.Slice{
//	    {Label: "Hydro", Value: 40},
//	    {Label: "Solar", Value: 25},
//	    {Label: "Wind", Value: 35},
//	}, layout.Geometry{Width: 400, Height: 300}, layout.Options{})
//	svg := sink.RenderSVG(chart)
//
// Poll a job:
//
//	client, _ := jobapi.New("http://localhost:8080")
//	reg := poller.NewRegistry(client)
//	defer reg.Close()
//	reg.StartPoll("42:optimize", jobapi.TaskPath("42", "optimize"), func(u poller.Update) {
//	    fmt.Println(u.Status())
//	})
//
// [render]: github.com/matzehuels/optima/pkg/render
// [render/pie/layout]: github.com/matzehuels/optima/pkg/render/pie/layout
// [render/pie/sink]: github.com/matzehuels/optima/pkg/render/pie/sink
// [poller]: github.com/matzehuels/optima/pkg/poller
// [poller.Registry]: github.com/matzehuels/optima/pkg/poller.Registry
// [jobapi]: github.com/matzehuels/optima/pkg/jobapi
// [jobapi.Client]: github.com/matzehuels/optima/pkg/jobapi.Client
// [taskapi]: github.com/matzehuels/optima/pkg/taskapi
// [cache]: github.com/matzehuels/optima/pkg/cache
// [config]: github.com/matzehuels/optima/pkg/config
// [observability]: github.com/matzehuels/optima/pkg/observability
package pkg
