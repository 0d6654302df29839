// Package formatter serializes simulation results for output.
//
// This package is organized into:
// - json.go: JSON serialization of the full result
// - csv.go: CSV serialization of events and conflicts
// - delay.go: human-readable delay messages
package formatter
