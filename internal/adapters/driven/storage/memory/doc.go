// Package memory provides an in-memory build ledger. It stands in for the
// sqlite ledger when the state directory cannot be opened, and backs tests.
package memory
