package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/tasks"
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
	MsgFilesSelected MsgKind = iota
	MsgProgressUpdate
	MsgSearchComplete
)

type filesSelected struct {
	files models.FileSet
	err   error
}

type searchComplete struct {
	response *models.SearchResponse
	err      error
}

// filesSelectedMsg is the constructor for [MsgFilesSelected]
func filesSelectedMsg(files models.FileSet, err error) Msg {
	return Msg{kind: MsgFilesSelected, data: filesSelected{files, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// searchCompleteMsg is the constructor for [MsgSearchComplete]
func searchCompleteMsg(response *models.SearchResponse, err error) Msg {
	return Msg{kind: MsgSearchComplete, data: searchComplete{response, err}}
}
