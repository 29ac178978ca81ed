// Package relocator places re-encoded text into fixed-layout binaries and
// patches the pointers that reference it.
//
// Three placement strategies are supported: free-area pools with first-fit
// allocation, fixed slots written in place with truncation, and the
// sequential rebuild used by story scripts (see package tss). Pointer
// sites are either 32-bit absolute addresses or addresses split across the
// low halfwords of two instruction words.
package relocator
