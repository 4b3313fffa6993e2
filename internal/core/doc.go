// Package core provides the business logic for managing country records.
//
// This package is the heart of the service, containing all domain logic
// independent of any transport or storage technology. It can be used by the
// HTTP adapter, the admin CLI, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Country: the value entity. Its identity is the triple of ISO codes
//     (alpha-2, alpha-3, numeric), which never changes after creation.
//   - Code classifier: pure functions recognizing the three code shapes
//     ([IsAlpha2], [IsAlpha3], [IsNumeric]) and [Classify] to tell them apart.
//   - Repository: the persistence contract. Implementations live in the
//     database package; the service never observes which one it talks to.
//   - Service: the entry point for all operations (GetAll, Get, Store, Edit,
//     Delete). It orders validation, lookup and uniqueness checks and returns
//     typed errors.
//   - Audit: every successful write is reported to an [Auditor].
//
// # Error Handling
//
// Domain failures are returned as typed errors that callers match with
// errors.As:
//
//   - [InvalidCodeError]: the code matches none of the three shapes
//   - [NotFoundError]: well-formed code, no matching record
//   - [DuplicateDataError]: a uniqueness dimension (alpha2, alpha3, numeric,
//     name) already taken
//   - [InvalidArgumentError]: negative population/square or a malformed payload
//
// Anything else is a storage failure. Such errors are not retried; adapters
// turn them into a generic failure using [MapError] for the support code.
//
// # Concurrency
//
// The service holds no locks. Each operation issues a sequence of repository
// calls. When the repository implements [Transactor] and transactions are
// enabled, write operations run inside a single storage transaction; in every
// case the storage-level uniqueness constraints are the final arbiter, and a
// [UniqueViolationError] from storage is reported as a [DuplicateDataError].
package core
