package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/model"
)

func handleUserList(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		users, err := api.ListUsers(r.Context(), rctx.Session.Token)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Users []model.User `json:"users"`
		}{Users: users})
	}
}

func handleUserCreate(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			Username string `json:"username" validate:"required"`
			FullName string `json:"fullName" validate:"required"`
			Password string `json:"password" validate:"required,min=6"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		user, err := api.CreateUser(r.Context(), rctx.Session.Token, backend.UserInput{
			Username: body.Username,
			FullName: body.FullName,
			Password: body.Password,
		})
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, struct {
			User model.User `json:"user"`
		}{User: user})
	}
}

func handleUserUpdate(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			Username string `json:"username" validate:"required"`
			FullName string `json:"fullName" validate:"required"`
			Password string `json:"password" validate:"omitempty,min=6"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		user, err := api.UpdateUser(r.Context(), rctx.Session.Token, chi.URLParam(r, "id"), backend.UserInput{
			Username: body.Username,
			FullName: body.FullName,
			Password: body.Password,
		})
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			User model.User `json:"user"`
		}{User: user})
	}
}

func handleUserDelete(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		if err := api.DeleteUser(r.Context(), rctx.Session.Token, chi.URLParam(r, "id")); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"message": "Pengguna dihapus"})
	}
}

func handleDefaultParametersGet(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		params, err := api.GetDefaultParameters(r.Context(), rctx.Session.Token)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, params)
	}
}

func handleDefaultParametersUpdate(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			DefaultDepth   float64 `json:"defaultDepth" validate:"required,gt=0"`
			DefaultSpacing float64 `json:"defaultSpacing" validate:"required,gt=0"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		params, err := api.UpdateDefaultParameters(r.Context(), rctx.Session.Token, backend.DefaultParameters{
			DefaultDepth:   body.DefaultDepth,
			DefaultSpacing: body.DefaultSpacing,
		})
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, params)
	}
}
