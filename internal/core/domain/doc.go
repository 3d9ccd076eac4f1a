// Package domain defines the core business entities for waiverdesk.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Event, Waiver: What participants sign and what organisers manage
//   - Signature: The record of a signer signing a waiver
//   - FormField: A normalised descriptor extracted from an uploaded PDF
//   - User, Session: Accounts and authenticated browser sessions
//
// It also holds the form field classifier, which is a pure function.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
