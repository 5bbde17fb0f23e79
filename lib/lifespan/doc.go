// Package lifespan provides the structured duration type used by the store
// packages to express how long an entry stays alive. A Lifespan can be built
// from individual day/hour/minute/second/millisecond components, from a raw
// millisecond count (Millis) or from a time.Duration (Of), and converts to
// epoch-arithmetic friendly milliseconds with the Millis method.
package lifespan
