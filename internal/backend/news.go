package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Article is one published news item.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// ArticleInput is the writable subset of an article.
type ArticleInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ListNews returns all published articles. This endpoint is public.
func (c *Client) ListNews(ctx context.Context) ([]Article, error) {
	var out struct {
		News []Article `json:"news"`
	}
	err := c.do(ctx, http.MethodGet, "/news", "", nil, &out)
	return out.News, err
}

// GetNews returns one article by ID.
func (c *Client) GetNews(ctx context.Context, id string) (Article, error) {
	var out struct {
		News Article `json:"news"`
	}
	err := c.do(ctx, http.MethodGet, "/news/"+url.PathEscape(id), "", nil, &out)
	return out.News, err
}

// CreateNews publishes a new article.
func (c *Client) CreateNews(ctx context.Context, token string, in ArticleInput) (Article, error) {
	var out struct {
		News Article `json:"news"`
	}
	err := c.do(ctx, http.MethodPost, "/news", token, in, &out)
	return out.News, err
}

// UpdateNews replaces an article's content.
func (c *Client) UpdateNews(ctx context.Context, token, id string, in ArticleInput) (Article, error) {
	var out struct {
		News Article `json:"news"`
	}
	err := c.do(ctx, http.MethodPut, "/news/"+url.PathEscape(id), token, in, &out)
	return out.News, err
}

// DeleteNews removes an article.
func (c *Client) DeleteNews(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/news/"+url.PathEscape(id), token, nil, nil)
}
