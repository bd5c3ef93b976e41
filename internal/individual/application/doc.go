// Package application orchestrates individual commands: it loads an
// individual from a repository, runs one aggregate command, saves the result
// and publishes the events the command recorded.
package application
