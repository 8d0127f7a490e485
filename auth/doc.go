// Package auth implements the session core of the bookmarking service:
// salted PBKDF2 password hashing, per-user signing secrets rotated on every
// token issuance, a single active access/refresh pair per user, and a
// store-driven authentication backend.
//
// Validity of an issued token is decided by store lookup plus the stored
// created timestamp, never by re-verifying the JWT signature: the signing
// secret is replaced on each issuance, so issuing a new pair implicitly
// invalidates the previous one. This is the intended
// single-session-per-user policy.
package auth
