package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/model"
)

func handleNewsList(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		news, err := api.ListNews(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			News []backend.Article `json:"news"`
		}{News: news})
	}
}

func handleNewsGet(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		article, err := api.GetNews(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Article backend.Article `json:"article"`
		}{Article: article})
	}
}

func handleNewsCreate(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			Title    string `json:"title" validate:"required"`
			Content  string `json:"content" validate:"required"`
			ImageURL string `json:"imageUrl"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		article, err := api.CreateNews(r.Context(), rctx.Session.Token, backend.ArticleInput{
			Title:    body.Title,
			Content:  body.Content,
			ImageURL: body.ImageURL,
		})
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, struct {
			Article backend.Article `json:"article"`
		}{Article: article})
	}
}

func handleNewsUpdate(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			Title    string `json:"title" validate:"required"`
			Content  string `json:"content" validate:"required"`
			ImageURL string `json:"imageUrl"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		article, err := api.UpdateNews(r.Context(), rctx.Session.Token, chi.URLParam(r, "id"), backend.ArticleInput{
			Title:    body.Title,
			Content:  body.Content,
			ImageURL: body.ImageURL,
		})
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Article backend.Article `json:"article"`
		}{Article: article})
	}
}

func handleNewsDelete(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		if err := api.DeleteNews(r.Context(), rctx.Session.Token, chi.URLParam(r, "id")); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"message": "Berita dihapus"})
	}
}
