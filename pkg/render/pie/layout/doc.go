// Package layout computes pie chart geometry and label placement.
//
// # Overview
//
// A chart is built in three steps:
//
//  1. [Pie] assigns each [Slice] an angular span, in input order, starting
//     at 12 o'clock and running clockwise.
//  2. [ComputeAnchor] places a label on the ray through each wedge's
//     centroid, at the label radius. The sign of the anchor's X coordinate
//     decides the [Side] the label is drawn on.
//  3. [Relax] separates labels that sit too close together vertically,
//     nudging each colliding pair apart until every same-side pair is more
//     than Spacing apart, or until MaxIterations passes have run.
//
// [Compute] runs all three steps for a drawing surface and returns a
// [Chart] ready for the sink package.
//
// # Convergence
//
// Relaxation is bounded. When the label count does not fit the available
// height the final pass still leaves some labels closer than Spacing; the
// returned [Result] reports Converged=false and the chart keeps the last
// arrangement.
//
// Labels on opposite sides never interact, so a crowded left half has no
// effect on the right half.
package layout
