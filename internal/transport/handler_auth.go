package transport

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/internal/nav"
	"github.com/tanicerdas/seedbot-console/internal/observability"
	"github.com/tanicerdas/seedbot-console/internal/session"
	"github.com/tanicerdas/seedbot-console/model"
)

// sessionResponse is the session payload returned by login and restore.
type sessionResponse struct {
	Authenticated bool                  `json:"authenticated"`
	User          *model.User           `json:"user,omitempty"`
	Navigation    model.NavigationState `json:"navigation"`
	Fragment      string                `json:"fragment"`
}

// loggedOutResponse is the canonical logged-out session payload.
func loggedOutResponse() sessionResponse {
	state := model.NavigationState{Page: model.PageLanding}
	return sessionResponse{
		Authenticated: false,
		Navigation:    state,
		Fragment:      nav.Encode(state),
	}
}

// dashboardResponse builds the session payload for an authenticated user,
// positioned on their dashboard's home menu.
func dashboardResponse(user model.User) sessionResponse {
	state := model.NavigationState{
		Page: model.DashboardFor(user.Role),
		Menu: nav.HomeMenuFor(user.Role),
	}
	return sessionResponse{
		Authenticated: true,
		User:          &user,
		Navigation:    state,
		Fragment:      nav.Encode(state),
	}
}

func handleLogin(sessions *session.Manager, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username" validate:"required"`
			Password string `json:"password" validate:"required"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		res, err := sessions.Login(r.Context(), body.Username, body.Password)
		if err != nil {
			if metrics != nil {
				metrics.RecordLogin("failure")
			}
			WriteError(w, err)
			return
		}
		if metrics != nil {
			metrics.RecordLogin("success")
		}

		// A fresh login lands on the dashboard, so the inactivity
		// watchdog starts immediately.
		sessions.Arm(res.Session.ID)

		resp := dashboardResponse(res.Session.User)
		WriteJSON(w, http.StatusOK, struct {
			Token string `json:"token"`
			sessionResponse
		}{Token: res.ConsoleToken, sessionResponse: resp})
	}
}

// handleSessionRestore rebuilds the session from the console token,
// revalidating the stored backend token. Any validation failure yields the
// logged-out payload, not an error.
func handleSessionRestore(sessions *session.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessions.Restore(r.Context(), bearerToken(r))
		if err != nil {
			observability.RequestLogger(r.Context(), logger).Warn(
				"session restore failed", zap.Error(err))
			WriteError(w, err)
			return
		}
		if !sess.HasUser() {
			WriteJSON(w, http.StatusOK, loggedOutResponse())
			return
		}
		sessions.Arm(sess.ID)
		WriteJSON(w, http.StatusOK, dashboardResponse(sess.User))
	}
}

func handleLogout(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())
		if err := sessions.Logout(r.Context(), rctx.Session.ID); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, loggedOutResponse())
	}
}

func handleForgotPassword(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username" validate:"required"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}
		if err := api.ForgotPassword(r.Context(), body.Username); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Token reset telah dikirim",
		})
	}
}

func handleVerifyResetToken(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username" validate:"required"`
			Token    string `json:"token" validate:"required"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}
		if err := api.VerifyResetToken(r.Context(), body.Username, body.Token); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
	}
}

func handleResetPassword(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username    string `json:"username" validate:"required"`
			Token       string `json:"token" validate:"required"`
			NewPassword string `json:"newPassword" validate:"required,min=6"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}
		if err := api.ResetPassword(r.Context(), body.Username, body.Token, body.NewPassword); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Password berhasil direset",
		})
	}
}

// handleChangePassword dispatches the password change to the role-specific
// backend endpoint for the authenticated user.
func handleChangePassword(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			OldPassword string `json:"oldPassword" validate:"required"`
			NewPassword string `json:"newPassword" validate:"required,min=6"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		in := backend.ChangePassword{
			OldPassword: body.OldPassword,
			NewPassword: body.NewPassword,
		}
		var err error
		if rctx.Role() == model.RoleAdmin {
			err = api.ChangeAdminPassword(r.Context(), rctx.Session.Token, in)
		} else {
			err = api.ChangeFarmerPassword(r.Context(), rctx.Session.Token, in)
		}
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Password berhasil diubah",
		})
	}
}
