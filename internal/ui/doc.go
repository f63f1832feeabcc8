// Package ui implements the terminal gallery browser using bubbletea's Elm architecture.
//
// The browser renders a gallery.Engine onto a character grid. Layout units map to cells through
// [CellSize]; the default makes a cell twice as tall as it is wide so tiles keep their proportions.
// Only the engine's materialized window is drawn, so scrolling cost does not grow with the list.
//
// Pages are fetched in tea.Cmds: the engine hands out a Fetch, the command runs it off the UI
// goroutine and the result comes back as a [Msg] that is applied on the UI goroutine. The saved
// scroll anchor is restored at startup and re-applied as pages arrive until the list is tall enough
// to reach it. Page and half-page scrolls can be eased with a gween tween driven by tea.Tick frames;
// the anchor is recorded once the animation lands.
//
// Keyboard navigation uses arrows or vim-style bindings (h/j/k/l, g/G, ctrl+u/d) with contextual help
// displayed via charmbracelet/bubbles/help. The status line shows the focused tile's hover zoom and
// origin, and any page load error with a retry hint.
package ui
