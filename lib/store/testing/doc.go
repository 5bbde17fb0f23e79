// Package testing provides the shared conformance test suite for
// store.IFullStore engines, driven by a factory and a manually advanced
// FakeClock so expiration and GC timing can be tested deterministically.
package testing
