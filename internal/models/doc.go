// Package models defines persistent entities for the passport client.
//
// Transient request/response shapes (Profile, PlaylistPage, Passport) live
// in the services package and are owned by a single render cycle; this
// package holds only what outlives a request:
//
//   - [PassportSnapshot] : a locally recorded passport result with sequence
//     number and timestamps, browsable via the history commands
//
// Persistent entities implement the [Model] interface (ID, timestamps,
// validation). The [Repository] interface defines standard CRUD operations
// for database access.
package models
