// Package repositories implements sqlite persistence for the passport client.
//
// Two stores exist:
//
//   - [TokenRepository] : the single session token, stored as one JSON
//     payload row. Implements [tokens.Persistence]; corrupt payloads read
//     back as absence so restore degrades to signed-out.
//   - [PassportRepository] : snapshot history with monotonically increasing
//     sequence numbers via [NextSequence].
//
// Schema lives in internal/shared/sql and is applied with
// [shared.RunMigrations].
package repositories
