// Package process runs the external collaborators: the LZSS and BLZ
// compressors and the disk image tool.
//
// Every launch goes through a Runner, which paces launches with a shared
// rate limiter and turns a failed invocation into a domain.ProcessError
// scoped to the file it was working on.
package process
