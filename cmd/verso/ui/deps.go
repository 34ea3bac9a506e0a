package ui

import (
	"verso/internal/api"
	"verso/internal/importer"
	"verso/internal/library"
	"verso/internal/store"
)

// Deps is what every page needs: the gateway for one-shot reads, the stores
// for long-lived data, and the mutation services. Pages never publish on the
// bus themselves; the services do that.
type Deps struct {
	Client   *api.Client
	Stores   *store.Set
	Library  *library.Service
	Importer *importer.Importer
}

// StoresChangedMsg is sent by the program whenever any store snapshot
// changes; pages re-read snapshots on their next View.
type StoresChangedMsg struct{}

// StylesChangedMsg carries a rebuilt style set after a theme change. Pages
// swap their styles and drop any cached renders.
type StylesChangedMsg struct {
	Styles Styles
}

// StatusMsg carries a transient status line shown in the footer.
type StatusMsg struct {
	Text  string
	IsErr bool
}

func statusErr(err error) StatusMsg {
	return StatusMsg{Text: err.Error(), IsErr: true}
}
