// Package stores implements the Redis-backed transient state of the
// authentication engine: pending login passcodes, pre-auth snapshots, and
// the access-token revocation registry.
//
// Every store namespaces its keys with a configurable prefix and relies on
// Redis TTLs for expiry; nothing here is durable. Backend failures are
// wrapped with the per-store *Unavailable sentinel so the engine can keep
// infrastructure errors distinct from semantic rejections.
package stores
