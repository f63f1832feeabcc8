// Package repositories implements SQLite persistence for the gallery catalog.
//
// Key Implementations:
//   - [MediaRepository] : catalogued media with sequence-ordered paging
//   - [AnchorRepository] : one scroll offset per list key, usable as a scrollstore.Store
//   - [CatalogSource] : adapts [MediaRepository] to the gallery's page source
//
// Sequence numbers give media a stable, gap-tolerant order independent of UUIDs and creation
// timestamps. [NextSequence] hands them out inside the insert transaction.
package repositories
