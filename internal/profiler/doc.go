// Package profiler provides named timing scopes for amrex subsystems.
//
// A Registry hands out Scopes keyed by Tag. Every Start/Stop pair adds one
// call and its elapsed time to the tag's totals. Scopes may be created and
// timed before Initialize; Initialize only records the program and enables
// the report, and Finalize logs the report and clears all totals.
package profiler
