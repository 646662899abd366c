// Package observability turns lifecycle events into logs, metrics and
// downstream sinks without the engine knowing who is listening.
//
// The engine accepts a single domain.LifecycleHooks value. This package
// builds that value: Logging produces hooks that write structured log
// lines, Combine fans one event out to several hook sets, and Coalesce
// rate-limits noisy event streams before they reach an expensive sink.
package observability
