// Package mock provides test doubles for the ai package interfaces.
//
// The mock embedder produces deterministic hash-derived vectors so tests can
// rely on stable similarity scores without a running embedding service.
package mock
