package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wicket/internal/models"
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
	MsgOutcome MsgKind = iota
	MsgToastExpired
	MsgEngineClosed
)

// outcomeMsg is the constructor for [MsgOutcome]
func outcomeMsg(o models.Outcome) Msg {
	return Msg{kind: MsgOutcome, data: o}
}

// toastExpiredMsg is the constructor for [MsgToastExpired]; seq identifies the toast it dismisses.
func toastExpiredMsg(seq int) Msg {
	return Msg{kind: MsgToastExpired, data: seq}
}

// engineClosedMsg is the constructor for [MsgEngineClosed]
func engineClosedMsg() Msg {
	return Msg{kind: MsgEngineClosed}
}
