package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tuniverse/tvx/internal/services"
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
	MsgProfileFetched MsgKind = iota
	MsgPlaylistsFetched
	MsgPassportFetched
)

// profileFetchedMsg is the constructor for [MsgProfileFetched]
func profileFetchedMsg(profile *services.Profile, err error) Msg {
	return Msg{
		kind: MsgProfileFetched,
		data: struct {
			profile *services.Profile
			err     error
		}{profile, err},
	}
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(page *services.PlaylistPage, err error) Msg {
	return Msg{
		kind: MsgPlaylistsFetched,
		data: struct {
			page *services.PlaylistPage
			err  error
		}{page, err},
	}
}

// passportFetchedMsg is the constructor for [MsgPassportFetched]
func passportFetchedMsg(passport *services.Passport, err error) Msg {
	return Msg{
		kind: MsgPassportFetched,
		data: struct {
			passport *services.Passport
			err      error
		}{passport, err},
	}
}
