// Package checkpoint persists run options and per-worker progress so an
// interrupted run can resume exactly where each worker stopped.
//
// All files are UTF-8 text made of alternating label and value lines:
//
//	options.checkpoint   ncores\n8\ndistmatfname\nd.mat\n...
//	worker3.checkpoint   workernum\n3\ni\n27\n
//
// Every write goes to a temporary file that is synced and then renamed over
// the target, so a reader never observes a torn checkpoint.
package checkpoint
