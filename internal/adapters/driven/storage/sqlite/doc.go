// Package sqlite provides a SQLite-backed vector store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Queries go through jmoiron/sqlx.
//
// Each store is an independent in-memory database holding one index. Nothing is
// written to disk: an index lives only as long as the session that built it.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Search
//
// Similarity is computed inside SQLite by the deterministic scalar function
// vec_cosine(embedding, magnitude, query, query_magnitude). Embeddings are stored
// as little-endian float32 BLOBs. Results are ordered by score and then by
// insertion sequence, so equal scores keep insertion order.
//
// # Thread Safety
//
// All operations are thread-safe. Each store holds a single connection.
package sqlite
