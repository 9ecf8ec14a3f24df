/*
Package session serializes access to wizard sessions.

A Manager wraps a ports.SessionStore with per-session locking: an in-process
mutex, plus an optional ports.DistributedLocker when several replicas share the
same store. Update is the read-modify-write primitive the HTTP adapter uses for
every submission.
*/
package session
