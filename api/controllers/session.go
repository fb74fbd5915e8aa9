package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/chat"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

type sessionResponse struct {
	User              *types.User `json:"user"`
	IsAuthenticated   bool        `json:"is_authenticated"`
	IsLoading         bool        `json:"is_loading"`
	ChatWidgetVisible bool        `json:"chat_widget_visible"`
}

// SessionState reports who is signed in. The optional path query is the page
// the shopper is on and decides whether the chat widget shows.
func SessionState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := auth.State{IsLoading: true}
		if s := auth.FromContext(r.Context()); s != nil {
			state = s.State()
		}
		path := strings.TrimSpace(r.URL.Query().Get("path"))
		if path == "" {
			path = "/"
		}
		responses.WriteSuccess(r.Context(), w, sessionResponse{
			User:              state.User,
			IsAuthenticated:   state.IsAuthenticated,
			IsLoading:         state.IsLoading,
			ChatWidgetVisible: chat.WidgetVisible(path, state),
		})
	}
}
