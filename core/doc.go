// Package core contains the HashGate client: credential handling, the
// authenticated request executor and the typed user and pool operations.
// Transport and persistence adapters depend on this package; core must not
// depend on them.
package core
