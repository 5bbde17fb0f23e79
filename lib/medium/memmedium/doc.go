// Package memmedium implements the medium.IMedium contract with a
// process-local concurrent map (github.com/puzpuzpuz/xsync). It is the
// default medium for the fast store and for watermark storage: all
// operations are lock-free reads or fine-grained writes and never fail.
// Data does not survive a process restart.
package memmedium
