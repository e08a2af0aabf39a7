// Package sqlite provides a persistent vector index backed by SQLite.
// Vectors are stored as little-endian float32 blobs; similarity search
// itself stays in the retriever, which scans pages of the corpus.
package sqlite
