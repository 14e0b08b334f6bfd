// Package services defines shared plumbing consumed by the scene loading
// components and their HTTP collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp scene IDs, load cycle IDs, and correlation
//     identifiers for logging.
//   - The HTTPDoer abstraction so network-facing components can be exercised
//     with httptest servers or scripted transports.
package services
