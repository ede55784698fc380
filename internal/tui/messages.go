package tui

import "github.com/mgomes/wikisearch/internal/config"

type SetupSubmitMsg struct {
	Endpoint   string
	LinkOrigin string
}

type SetupErrorMsg struct {
	Error string
}

// ConfigReloadedMsg carries a config that changed on disk while running.
type ConfigReloadedMsg struct {
	Config *config.Config
}

type openResultMsg struct {
	url string
	err error
}
