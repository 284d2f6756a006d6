package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smmsclient/smms/internal/promise"
)

const (
	taskLogin   = "login"
	taskProfile = "profile"
	taskHistory = "history"
	taskUpload  = "upload"
	taskDelete  = "delete"
)

// taskDoneMsg wakes the program when a background task settles. It carries
// no result: Update polls the slot, which only ever holds the current task.
type taskDoneMsg struct {
	Kind string
	ID   string
	Gen  uint64
}

func waitFor(t promise.Ticket) tea.Cmd {
	if t.Done == nil {
		return nil
	}
	return func() tea.Msg {
		<-t.Done
		return taskDoneMsg{Kind: t.Kind, ID: t.ID, Gen: t.Gen}
	}
}

// applied records the generation of the last result already handled per
// slot, so a settled result is applied exactly once.
type applied struct {
	login   uint64
	profile uint64
	history uint64
	upload  uint64
	remove  uint64
}
