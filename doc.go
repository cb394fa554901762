// Package adminauth implements the authentication core for the SHMS
// administrative backend: a two-phase, role-aware login protocol (an
// (email, role) check that triggers a one-time emailed passcode, then
// passcode plus password), opaque refresh-token rotation, and access-token
// revocation.
//
// The same email address may exist as up to five independent accounts, one
// per privilege role; every login explicitly selects a role, and all
// transient challenge state is keyed by the (email, role) pair.
//
// Durable identity lives behind the IdentityStore interface (a PostgreSQL
// implementation ships in the postgres subpackage). All short-lived state —
// pending passcodes, the pre-auth snapshot bridging the two login phases,
// and revoked access tokens — lives in Redis with per-key TTLs.
package adminauth
