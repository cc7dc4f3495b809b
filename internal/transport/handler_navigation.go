package transport

import (
	"net/http"

	"github.com/tanicerdas/seedbot-console/internal/nav"
	"github.com/tanicerdas/seedbot-console/internal/session"
	"github.com/tanicerdas/seedbot-console/model"
)

// handleNavigationResolve maps a URL fragment onto the navigation state.
// The session, when present, gates access to the dashboard pages; the
// inactivity watchdog runs exactly while the resolved page is protected.
func handleNavigationResolve(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.RequestContextFrom(r.Context())

		var body struct {
			Fragment string                `json:"fragment"`
			Current  model.NavigationState `json:"current"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		var sess *model.Session
		if rctx != nil {
			sess = rctx.Session
		}

		state := nav.Decode(body.Fragment, body.Current, sess)

		if sess != nil && sess.ID != "" {
			if state.Page.Protected() {
				sessions.Arm(sess.ID)
			} else {
				sessions.Disarm(sess.ID)
			}
		}

		WriteJSON(w, http.StatusOK, struct {
			Navigation model.NavigationState `json:"navigation"`
			Fragment   string                `json:"fragment"`
		}{Navigation: state, Fragment: nav.Encode(state)})
	}
}

// handleNavigationMenus lists the dashboard menus for the session's role.
func handleNavigationMenus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())
		role := rctx.Role()
		WriteJSON(w, http.StatusOK, struct {
			Menus []string `json:"menus"`
			Home  string   `json:"home"`
		}{Menus: nav.MenusFor(role), Home: nav.HomeMenuFor(role)})
	}
}
