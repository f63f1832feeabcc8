// package services talks to remote item servers over HTTP
package services

import "github.com/desertthunder/mosaic/internal/gallery"

// ItemsPath is the endpoint that serves catalog pages.
const ItemsPath = "/api/items"

// ItemJSON is the wire form of one gallery item.
type ItemJSON struct {
	ID     int64   `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Path   string  `json:"path,omitempty"`
}

// PageResponse is the body returned by [ItemsPath].
//
// Next is the cursor to pass as "after" for the following page; it is 0 when HasMore is false.
type PageResponse struct {
	Items   []ItemJSON `json:"items"`
	HasMore bool       `json:"has_more"`
	Next    int64      `json:"next"`
}

// ErrorResponse is the body of a non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Item converts the wire form to a gallery item.
func (i ItemJSON) Item() gallery.Item {
	return gallery.Item{ID: i.ID, Width: i.Width, Height: i.Height}
}

// ToPage converts a response to a gallery page.
func (p PageResponse) ToPage() gallery.Page {
	items := make([]gallery.Item, len(p.Items))
	for i, it := range p.Items {
		items[i] = it.Item()
	}
	return gallery.Page{Items: items, HasMore: p.HasMore}
}
