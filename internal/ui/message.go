package ui

import (
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/tasks"
)

// loginMsg reports the result of a sign-in attempt.
type loginMsg struct {
	session *models.Session
	err     error
}

// videosLoadedMsg carries a joined video page and category load for request req.
type videosLoadedMsg struct {
	req  tasks.LoadRequest
	load *tasks.VideoLoad
	err  error
}

// categoriesLoadedMsg reports a finished category list load.
type categoriesLoadedMsg struct {
	err error
}

// savedMsg reports a finished save of form. The engine has already reloaded the affected list.
type savedMsg struct {
	form   *formModel
	result *tasks.SaveResult
	err    error
}

// deletedMsg reports a finished delete.
type deletedMsg struct {
	entity string
	err    error
}

// noticeMsg wraps a notice received from the engine.
type noticeMsg tasks.Notice
