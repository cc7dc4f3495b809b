package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tanicerdas/seedbot-console/internal/observability"
	"github.com/tanicerdas/seedbot-console/internal/robot"
	"github.com/tanicerdas/seedbot-console/internal/state"
	"github.com/tanicerdas/seedbot-console/model"
)

func handleRobotStatus(ctrl *robot.Controller, store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		robotState, err := ctrl.RefreshStatus(r.Context(), rctx.Session.Token)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Robot model.RobotState `json:"robot"`
			Mode  model.Mode       `json:"mode"`
		}{Robot: robotState, Mode: store.Mode()})
	}
}

func handleRobotCommand(ctrl *robot.Controller, store *state.Store, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			Action string `json:"action" validate:"required"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		ctx, span := observability.StartSpan(r.Context(), "robot.command",
			observability.AttrAction.String(body.Action),
			observability.AttrSessionID.String(rctx.Session.ID),
			observability.AttrRole.String(string(rctx.Role())))

		start := time.Now()
		res, err := ctrl.IssueCommand(ctx, rctx.Session.Token, body.Action)
		observability.EndSpanWithError(span, err)
		if metrics != nil {
			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.RecordRobotCommand(body.Action, status, time.Since(start))
		}
		if err != nil {
			WriteError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, struct {
			robot.CommandResult
			Robot model.RobotState `json:"robot"`
		}{CommandResult: res, Robot: store.Robot()})
	}
}

func handleRobotMode(ctrl *robot.Controller, store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			Mode model.Mode `json:"mode" validate:"required,oneof=manual otomatis"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		if err := ctrl.SetMode(r.Context(), rctx.Session.Token, body.Mode); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Mode  model.Mode       `json:"mode"`
			Robot model.RobotState `json:"robot"`
		}{Mode: store.Mode(), Robot: store.Robot()})
	}
}

// handleRobotKey routes a manual-control keypress. An ignored keypress is a
// 200 with issued=false, never an error: holding a key on the wrong view is
// routine, not exceptional.
func handleRobotKey(ctrl *robot.Controller, store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			Key          string `json:"key" validate:"required"`
			View         string `json:"view"`
			InputFocused bool   `json:"inputFocused"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		ctx, span := observability.StartSpan(r.Context(), "robot.key",
			observability.AttrView.String(body.View),
			observability.AttrSessionID.String(rctx.Session.ID),
			observability.AttrRole.String(string(rctx.Role())))

		res, issued, err := ctrl.KeyCommand(ctx, rctx.Session.Token, body.Key, body.View, body.InputFocused)
		if issued {
			span.SetAttributes(observability.AttrAction.String(res.OperationStatus.String()))
		}
		observability.EndSpanWithError(span, err)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Issued bool                `json:"issued"`
			Result robot.CommandResult `json:"result"`
			Robot  model.RobotState    `json:"robot"`
		}{Issued: issued, Result: res, Robot: store.Robot()})
	}
}

// pollableViews maps the view path parameter onto a poller view.
var pollableViews = map[string]string{
	"kendali-manual": robot.PollControl,
	"dashboard":      robot.PollRealtime,
}

func handleViewActivate(poller *robot.Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		view, ok := pollableViews[chi.URLParam(r, "view")]
		if !ok {
			WriteError(w, model.NewNotFoundError("view tidak dikenal"))
			return
		}
		poller.Activate(view, rctx.Session.Token)
		WriteJSON(w, http.StatusOK, map[string]bool{"active": true})
	}
}

func handleViewDeactivate(poller *robot.Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := pollableViews[chi.URLParam(r, "view")]
		if !ok {
			WriteError(w, model.NewNotFoundError("view tidak dikenal"))
			return
		}
		poller.Deactivate(view)
		WriteJSON(w, http.StatusOK, map[string]bool{"active": false})
	}
}
