// Package config defines the validated run configuration for a distance
// matrix computation.
//
// Options is the object the run driver receives once command line parsing is
// done. A subset of fields is tracked: those are persisted in the options
// checkpoint, in the fixed order returned by Tracked, and restored on restart.
package config
