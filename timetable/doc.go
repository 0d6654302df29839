// Package timetable defines the input structures consumed by the simulation
// engine (timetable entries, incident lists, optional station metadata) and
// the CSV/JSON loaders that produce them.
//
// All validation is fail-fast: malformed input is rejected at load time with
// a descriptive error, before any simulation state is built.
package timetable
