package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = menuItem{}
)

// menuAction identifies what a menu entry fetches when selected.
type menuAction int

const (
	actionProfile menuAction = iota
	actionPlaylists
	actionTopArtists
	actionRecentPlays
	actionDemo
)

// menuItem is a selectable entry on the main menu, implements [list.Item].
type menuItem struct {
	title  string
	desc   string
	action menuAction
}

func (i menuItem) FilterValue() string { return i.title }
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }

func menuItems() []list.Item {
	return []list.Item{
		menuItem{title: "Profile", desc: "Show the signed-in Spotify account", action: actionProfile},
		menuItem{title: "Playlists", desc: "List your playlists", action: actionPlaylists},
		menuItem{title: "Passport (top artists)", desc: "Build a passport from your top artists", action: actionTopArtists},
		menuItem{title: "Passport (recent plays)", desc: "Build a passport from recently played tracks", action: actionRecentPlays},
		menuItem{title: "Demo passport", desc: "Show the canned demo passport", action: actionDemo},
	}
}
