// Package services implements the driving port interfaces.
// Services contain the pipeline logic and orchestrate calls to the
// format packages and to driven ports (adapters).
//
// Every service works on a Workspace: the loaded project, the compiled
// codec and the adapters built by the CLI. Files are processed
// independently, in parallel up to the configured worker count, and a
// failure on one file never stops the others.
package services
