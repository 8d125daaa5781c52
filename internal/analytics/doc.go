// Package analytics is the pure computation layer of PromoPulse: it
// turns an immutable record sequence plus a declarative configuration
// into filtered subsets, ranked distributions, time-bucketed series
// with trend smoothing, brand name decompositions, survey cross-tabs,
// and summary insights.
//
// Every function here is stateless and side-effect free: the same
// records and configuration always produce the same output, which is
// what makes persisted snapshots replayable. No function returns an
// error — malformed dates and missing fields are defined skips, and
// empty inputs yield structurally valid zero-valued results.
package analytics
