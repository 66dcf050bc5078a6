package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mcoot/keyshop/internal/model"
)

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	return q
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ListGames calls GET /games with the filter as query parameters
func (c *Client) ListGames(ctx context.Context, f model.Filter, page, pageSize int) (model.Page[model.Game], error) {
	q := pageQuery(page, pageSize)
	if f.MinPrice != nil {
		q.Set("MinPrice", formatPrice(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		q.Set("MaxPrice", formatPrice(*f.MaxPrice))
	}
	if f.TitleQuery != "" {
		q.Set("GameTitle", f.TitleQuery)
	}
	for _, id := range f.GenreIDs {
		q.Add("Genres", id)
	}

	var reply wirePage[wireGame]
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/games", query: q}, &reply); err != nil {
		return model.Page[model.Game]{}, err
	}
	return toPage(reply, page, pageSize, wireGame.toModel), nil
}

// MyGames calls GET /games/my
func (c *Client) MyGames(ctx context.Context, page, pageSize int) (model.Page[model.Game], error) {
	var reply wirePage[wireGame]
	q := pageQuery(page, pageSize)
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/games/my", query: q}, &reply); err != nil {
		return model.Page[model.Game]{}, err
	}
	return toPage(reply, page, pageSize, wireGame.toModel), nil
}

// GetGame calls GET /games/{id}
func (c *Client) GetGame(ctx context.Context, id int64) (*model.Game, error) {
	var reply wireGame
	if _, err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/games/%d", id)}, &reply); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %w", model.ErrGameNotFound, err)
		}
		return nil, err
	}
	g := reply.toModel()
	if g.ID == 0 {
		g.ID = id
	}
	return &g, nil
}

// CreateGame calls POST /games with a multipart body
func (c *Client) CreateGame(ctx context.Context, d model.GameDraft) (*model.Game, error) {
	return c.sendGameForm(ctx, http.MethodPost, "/games", d, true)
}

// UpdateGame calls PUT /games/{id} with a multipart body. Key files are only sent on create.
func (c *Client) UpdateGame(ctx context.Context, id int64, d model.GameDraft) (*model.Game, error) {
	return c.sendGameForm(ctx, http.MethodPut, fmt.Sprintf("/games/%d", id), d, false)
}

func (c *Client) sendGameForm(ctx context.Context, method, path string, d model.GameDraft, withKeys bool) (*model.Game, error) {
	body, contentType, err := encodeGameForm(d, withKeys)
	if err != nil {
		return nil, err
	}
	var reply wireGame
	if _, err := c.do(ctx, request{method: method, path: path, body: body, contentType: contentType}, &reply); err != nil {
		return nil, err
	}
	g := reply.toModel()
	return &g, nil
}

// DeleteGame calls DELETE /games/{id}
func (c *Client) DeleteGame(ctx context.Context, id int64) error {
	_, err := c.send(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/games/%d", id)})
	return err
}

// AddKeys calls POST /games/{id}/keys with the key file
func (c *Client) AddKeys(ctx context.Context, id int64, keys model.Upload) error {
	body, contentType, err := encodeKeysForm(keys)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, request{
		method:      http.MethodPost,
		path:        fmt.Sprintf("/games/%d/keys", id),
		body:        body,
		contentType: contentType,
	})
	return err
}

// Genres calls GET /genres
func (c *Client) Genres(ctx context.Context) ([]model.Genre, error) {
	var reply []wireGenre
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/genres"}, &reply); err != nil {
		return nil, err
	}
	genres := make([]model.Genre, 0, len(reply))
	for _, g := range reply {
		if m := g.toModel(); m.ID != "" {
			genres = append(genres, m)
		}
	}
	return genres, nil
}
