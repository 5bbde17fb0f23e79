// Package filemedium implements the medium.IMedium contract on the local
// filesystem, one file per key under a root directory. It is the persistent
// sibling of memmedium: data survives process restarts, making it the
// natural medium for a fast store whose namespace must outlive the process
// and for durable-store watermarks that should not reset on restart.
//
// Keys are percent-encoded into file names, so any key that is valid for a
// store is valid for this medium. Writes go through a temp-file rename so a
// crashed writer never leaves a torn value behind.
package filemedium
