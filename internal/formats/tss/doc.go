// Package tss extracts dialogue records from decompressed story scripts
// and rebuilds their string sections from translated documents.
//
// A script stores a strings base at 0x0C. Code sections reference dialogue
// records through a 16-bit offset that follows one of the dialect's
// signatures. Each record holds two opaque words, a speaker pointer and a
// text pointer, all relative to the strings base.
package tss
