// Package nav maps URL fragments to navigation state and back. Both
// directions are pure functions so browser back/forward handling is
// testable without a client.
package nav

import (
	"strings"

	"github.com/tanicerdas/seedbot-console/model"
)

// Menu allow-lists per role. A fragment on the active role's list selects an
// in-dashboard menu without leaving the dashboard.
var (
	adminMenus = []string{
		"parameter-default", "manajemen-user", "kelola-petani", "berita",
		"ganti-password",
	}
	farmerMenus = []string{
		"dashboard", "mapping", "histori-robot", "parameter",
		"kendali-manual", "ganti-password", "dummy-data", "atur-threshold",
	}
)

// Default in-dashboard menu per role.
const (
	AdminHomeMenu  = "parameter-default"
	FarmerHomeMenu = "dashboard"
)

// fragmentPages maps top-level fragments to pages. Unknown fragments fall
// back to the landing page.
var fragmentPages = map[string]model.Page{
	"home":            model.PageLanding,
	"landing":         model.PageLanding,
	"login":           model.PageLogin,
	"news":            model.PageNews,
	"berita":          model.PageNews,
	"forgot-password": model.PageForgotPassword,
	"admin":           model.PageAdmin,
	"farmer":          model.PageFarmer,
}

// MenusFor returns the menu allow-list for a role.
func MenusFor(role model.Role) []string {
	if role == model.RoleAdmin {
		return adminMenus
	}
	return farmerMenus
}

// HomeMenuFor returns the default menu for a role's dashboard.
func HomeMenuFor(role model.Role) string {
	if role == model.RoleAdmin {
		return AdminHomeMenu
	}
	return FarmerHomeMenu
}

func menuAllowed(role model.Role, fragment string) bool {
	for _, m := range MenusFor(role) {
		if m == fragment {
			return true
		}
	}
	return false
}

// Decode resolves an observed fragment against the current state and
// session. Protected pages require an authenticated session of the matching
// role; a mismatch is a silent redirect to landing, never an error. While a
// session's own dashboard is active, fragments from that role's menu list
// move only the menu, and the landing page's own "home" anchor is ignored so
// it cannot yank an authenticated user off their dashboard.
func Decode(fragment string, current model.NavigationState, sess *model.Session) model.NavigationState {
	fragment = strings.TrimPrefix(fragment, "#")

	if sess.HasUser() {
		role := sess.User.Role
		onDashboard := current.Page == model.DashboardFor(role)

		if onDashboard && fragment == "home" {
			return current
		}
		if onDashboard && menuAllowed(role, fragment) {
			return model.NavigationState{Page: current.Page, Menu: fragment}
		}
	}

	page, ok := fragmentPages[fragment]
	if !ok {
		page = model.PageLanding
	}

	if page.Protected() {
		if !sess.HasUser() || model.DashboardFor(sess.User.Role) != page {
			return model.NavigationState{Page: model.PageLanding}
		}
		return model.NavigationState{Page: page, Menu: HomeMenuFor(sess.User.Role)}
	}

	return model.NavigationState{Page: page}
}

// Encode is the deterministic inverse of Decode. Dashboard states encode as
// their menu fragment; the dashboard home menu already has a distinct
// fragment per role, so it never collides with the landing "#home" anchor.
func Encode(state model.NavigationState) string {
	switch state.Page {
	case model.PageAdmin, model.PageFarmer:
		menu := state.Menu
		if menu == "" {
			if state.Page == model.PageAdmin {
				menu = AdminHomeMenu
			} else {
				menu = FarmerHomeMenu
			}
		}
		return "#" + menu
	case model.PageLogin:
		return "#login"
	case model.PageNews:
		return "#news"
	case model.PageForgotPassword:
		return "#forgot-password"
	default:
		return "#home"
	}
}
