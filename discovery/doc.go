// Package discovery implements the client side of the sentinel discovery
// protocol: per-node clients, recursive reply parsing and a candidate
// pool with sticky last-success selection.
//
// # Failure contract
//
// Discovery nodes are expected to be unreliable. Client.Connect reports
// false instead of returning an error, and every query operation returns
// an empty result on failure. Callers iterate the remaining candidates
// within one logical operation; there is no cross-call retry or backoff.
//
// # Reply parsing
//
// The discovery protocol answers with a flat sequence alternating field
// name and value, optionally containing nested sequences (one sub-record
// per replica, for example). ParseReply applies the pairing recursively:
//
//	raw := []any{"ip", "10.0.0.5", "port", "6379", "flags", "slave"}
//	rec := discovery.ParseReply(raw)
//	// rec["ip"] == "10.0.0.5", rec["flags"] == "slave"
//
// # Pool selection
//
// Pool.Get reuses the last node that worked. When that node stops
// answering, the candidate list is shuffled uniformly and scanned for the
// first connectable node, spreading discovery load across the tier.
package discovery
