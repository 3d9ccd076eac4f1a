// Package sqlite provides a unified SQLite-based implementation of the
// waiverdesk record stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements every record store through a single database connection:
//
//   - UserStore and SessionStore: accounts and browser sessions
//   - EventStore and WaiverStore: events and their waiver documents
//   - SignatureStore: signature records, one per signer per event
//   - SavedSignatureStore: reusable default signatures
//   - StatsStore: counts for the health endpoint
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.waiverdesk/data/waiverdesk.db
//
// # Concurrency
//
// The duplicate-signature race is settled by the UNIQUE (user_id, event_id)
// index; the losing insert is reported as domain.ErrAlreadySigned.
package sqlite
