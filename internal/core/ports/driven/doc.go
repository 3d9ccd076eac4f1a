// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - UserStore, SessionStore: Account and session persistence
//   - EventStore, WaiverStore: Event and waiver persistence
//   - SignatureStore, SavedSignatureStore: Signature persistence
//   - StatsStore: Aggregate counts for health and admin views
//   - ObjectStore: Template and signed document storage (S3)
//   - FormFieldExtractor: PDF form field enumeration
//   - ArtifactRenderer: Signed document rendering
//   - PasswordHasher: Password hashing
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - IdentityProvider: OAuth2 login. Without it only password login is offered.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
