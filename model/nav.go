package model

// Page is a top-level view of the application.
type Page string

const (
	PageLanding        Page = "landing"
	PageLogin          Page = "login"
	PageForgotPassword Page = "forgot-password"
	PageNews           Page = "news"
	PageAdmin          Page = "admin"
	PageFarmer         Page = "farmer"
)

// Protected reports whether the page requires an authenticated session.
func (p Page) Protected() bool {
	return p == PageAdmin || p == PageFarmer
}

// DashboardFor returns the dashboard page for the given role.
func DashboardFor(role Role) Page {
	if role == RoleAdmin {
		return PageAdmin
	}
	return PageFarmer
}

// NavigationState is the logical position of the client: a page, and for
// dashboard pages, the active in-dashboard menu. The URL fragment is a
// mirrored encoding of this state, never the other source of truth.
type NavigationState struct {
	Page Page   `json:"page"`
	Menu string `json:"menu,omitempty"`
}
