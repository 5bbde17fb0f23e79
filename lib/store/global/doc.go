// Package global holds the process-wide shared store instance. It replaces
// the "singleton initialized at load time" pattern with an explicitly
// constructed instance behind a single access point: Configure mutates the
// shared configuration, Store builds the instance on first use.
//
// Overrides after the first Store call are inert for connection-affecting
// settings (driver, path, address, namespace, version) but still apply to
// the default lifespan and GC interval, which the engines read on every
// operation.
package global
