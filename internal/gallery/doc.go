// Package gallery implements a virtualized masonry layout engine for long, lazily paginated lists of
// variable-aspect-ratio media items.
//
// The engine is a pipeline of small, synchronous components:
//
//  1. [CalculateLayout] : container width + [LayoutConfig] → lane count and tile width
//  2. [Placer] : greedy shortest-lane packing with a [HeightCache], append-only on pagination
//  3. [Virtualizer] : placements + scroll offset + viewport → the [VirtualWindow] to materialize
//  4. [Paginator] : requests the next page from a [Source] when the window reaches the loaded tail
//  5. [Navigator] : directional focus movement across the sparse mounted window
//  6. [Magnify] : overflow-safe hover scale and transform origin per tile
//
// [Engine] composes them behind an explicit dirty-flag model. Each derived structure is rebuilt only by
// the inputs it depends on:
//
//   - Layout: container width, [LayoutConfig] (versioned), item count
//   - Placements: lane count or layout geometry (full repack, height cache cleared),
//     item replacement (full repack), item append (suffix only)
//   - Window: placements, scroll offset, viewport height
//
// Scrolling never re-places items. Appending a page never moves an item that was already placed,
// which keeps the scroll position stable under infinite loading.
//
// # Concurrency
//
// Everything except the page fetch runs on the caller's goroutine and performs no I/O. The fetch is
// handed back to the host as a [Fetch] so the host decides where it runs; its [PageResult] is fed back
// through [Engine.ApplyPage] on the host's goroutine. An [Engine] is not safe for concurrent use.
package gallery
