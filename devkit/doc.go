// Package devkit holds test doubles for go-hashgate consumers: a scripted
// transport, an in-memory activity store, conformance checks and an
// in-process HashGate gateway.
package devkit
