// Package testing provides a shared conformance test suite for
// medium.IMedium implementations. Each implementation package runs the
// suite through a factory, so all mediums are held to the same contract.
package testing
