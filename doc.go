// Package railsim exposes the simulation engine over HTTP: runs are
// submitted, executed in the background, and polled for status and results.
package railsim
