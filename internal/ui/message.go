package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mosaic/internal/gallery"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPageLoaded MsgKind = iota
	MsgAnchorRestored
	MsgAnchorSaved
	MsgOpened
	MsgScrollFrame
)

type anchorRestored struct {
	offset float64
	ok     bool
	err    error
}

// pageLoadedMsg is the constructor for [MsgPageLoaded]
func pageLoadedMsg(res gallery.PageResult) Msg {
	return Msg{kind: MsgPageLoaded, data: res}
}

// anchorRestoredMsg is the constructor for [MsgAnchorRestored]
func anchorRestoredMsg(offset float64, ok bool, err error) Msg {
	return Msg{kind: MsgAnchorRestored, data: anchorRestored{offset: offset, ok: ok, err: err}}
}

// anchorSavedMsg is the constructor for [MsgAnchorSaved]
func anchorSavedMsg(err error) Msg {
	return Msg{kind: MsgAnchorSaved, data: err}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(err error) Msg {
	return Msg{kind: MsgOpened, data: err}
}

// scrollFrameMsg is the constructor for [MsgScrollFrame]
func scrollFrameMsg() Msg {
	return Msg{kind: MsgScrollFrame}
}
