// Package tg holds the shared wire-level types: the secret bot token,
// the dynamic response envelope, updates, and the sentinel errors used
// across the sender and receiver packages.
package tg
