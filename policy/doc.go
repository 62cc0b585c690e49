// Package policy provides read-routing strategies for ninja-redis.
//
// Two strategies ship with the library:
//
//   - ProbabilisticRead: every read independently draws primary or
//     replica with an even 50/50 split, spreading read load without any
//     session affinity.
//   - PrimaryOnlyRead: every read targets the primary, trading read
//     scaling for read-your-writes behavior.
//
// Strategies take their randomness from types.Rand so distribution
// properties can be verified deterministically in tests.
package policy
