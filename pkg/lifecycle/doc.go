// Package lifecycle starts application services and releases them on shutdown.
//
// A service is produced by an Initializer and described by a Handle that
// knows how to release it. A Runner invokes the initializers, sequentially or
// in parallel, and collects the handles into a ServiceSet. A Coordinator owns
// the ServiceSet and the listening server after startup and runs the graceful
// shutdown sequence when a termination signal arrives:
//
//	Running -> ShuttingDown -> Closed
//
// Services are released before the server is shut down, and the whole
// sequence is bounded by a single timeout.
package lifecycle
