// Package models defines the persisted entities behind the gallery.
//
//   - [MediaItem] : one catalogued image with its intrinsic dimensions
//   - [ScrollAnchor] : the saved scroll offset of one list
//
// Both implement [Model]. The [Repository] interface defines the CRUD operations the sqlite
// repositories provide for them.
package models
