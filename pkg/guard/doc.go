/*
Package guard implements caller-side serialization for surface lifecycle
operations.

The binding forwards calls without locking, so when more than one goroutine
(or more than one replica, with a distributed locker) drives the same surface,
something must impose one logical order. Guard is that something: a
per-surface mutex map with reference counting locally, plus an optional
distributed lock for multi-replica deployments.
*/
package guard
