package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/testutil"
)

type ClientSuite struct {
	suite.Suite
	mux    *http.ServeMux
	server *httptest.Server
	client *Client
	ctx    context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(s.mux)
	s.client = New(Config{BaseURL: s.server.URL + "/api/", Timeout: DefaultConfig().Timeout}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// Auth

func (s *ClientSuite) TestLoginSendsCredentialsAndReturnsCookies() {
	var got map[string]any
	s.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&got))
		http.SetCookie(w, &http.Cookie{Name: "auth", Value: "tok"})
		_, _ = io.WriteString(w, `{"Username":"alice","Email":"a@x.io","UserRole":"customer"}`)
	})

	result, err := s.client.Login(s.ctx, LoginCredentials("a@x.io", "pw", model.RoleCustomer))
	s.Require().NoError(err)

	s.Equal("a@x.io", got["Email"])
	s.NotContains(got, "Username")
	s.Equal("CUSTOMER", got["UserRole"])
	s.Equal("alice", result.User.Username)
	s.Equal(model.RoleCustomer, result.User.Role)
	s.Require().Len(result.Cookies, 1)
	s.Equal("auth", result.Cookies[0].Name)
}

func (s *ClientSuite) TestLoginNormalizesNestedUserAndRoleAlias() {
	s.mux.HandleFunc("POST /api/auth/login", s.reply(http.StatusOK, `{"user":{"userName":"bob"},"role":"Seller"}`))

	result, err := s.client.Login(s.ctx, LoginCredentials("bob", "pw", model.RoleCustomer))
	s.Require().NoError(err)
	s.Equal("bob", result.User.Username)
	s.Equal(model.RoleSeller, result.User.Role)
}

func (s *ClientSuite) TestLoginWithEmptyBodyFallsBackToCredentials() {
	s.mux.HandleFunc("POST /api/auth/login", s.reply(http.StatusOK, ``))

	result, err := s.client.Login(s.ctx, LoginCredentials("carol", "pw", model.RoleSeller))
	s.Require().NoError(err)
	s.Equal("carol", result.User.Username)
	s.Equal(model.RoleSeller, result.User.Role)
}

func (s *ClientSuite) TestErrorBodyShapes() {
	tests := []struct {
		body string
		want string
	}{
		{`{"statusCode":401,"message":"bad password"}`, "bad password"},
		{`{"Message":"locked"}`, "locked"},
		{`{"error":{"code":"unauthorized","message":"nope"}}`, "nope"},
		{`{"title":"Unauthorized","status":401}`, "Unauthorized"},
		{`plain failure`, "plain failure"},
	}
	for _, tt := range tests {
		s.Run(tt.want, func() {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/auth/login", s.reply(http.StatusUnauthorized, tt.body))
			srv := httptest.NewServer(mux)
			defer srv.Close()
			client := New(Config{BaseURL: srv.URL + "/api"}, testutil.NopLogger())

			_, err := client.Login(s.ctx, LoginCredentials("x", "y", model.RoleCustomer))

			var apiErr *APIError
			s.Require().ErrorAs(err, &apiErr)
			s.Equal(http.StatusUnauthorized, apiErr.Status)
			s.Equal(tt.want, apiErr.Message)
			s.True(IsUnauthorized(err))
		})
	}
}

func (s *ClientSuite) TestTransportFailure() {
	s.server.Close()

	err := s.client.Logout(s.ctx)
	s.ErrorIs(err, ErrTransport)
}

func (s *ClientSuite) TestCookiesFromContextAreForwarded() {
	var seen string
	s.mux.HandleFunc("GET /api/auth/check", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("auth"); err == nil {
			seen = c.Value
		}
		_, _ = io.WriteString(w, `{"username":"alice","role":"CUSTOMER"}`)
	})

	ctx := WithCookies(s.ctx, []*http.Cookie{{Name: "auth", Value: "tok"}})
	user, err := s.client.Check(ctx)
	s.Require().NoError(err)
	s.Equal("tok", seen)
	s.Equal("alice", user.Username)
}

func (s *ClientSuite) TestCheckWithoutUserIsUnauthorized() {
	s.mux.HandleFunc("GET /api/auth/check", s.reply(http.StatusOK, `{}`))

	_, err := s.client.Check(s.ctx)
	s.True(IsUnauthorized(err))
}

// Games

func (s *ClientSuite) TestListGamesEncodesFilter() {
	var query map[string][]string
	s.mux.HandleFunc("GET /api/games", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = io.WriteString(w, `{"Content":[{"Id":7,"Title":"Doom","Price":9.5,"Genres":[{"Id":1,"Title":"FPS"}]}],
			"PageNumber":2,"PageSize":20,"TotalPages":3,"TotalElements":41}`)
	})

	lo, hi := 100.0, 500.0
	page, err := s.client.ListGames(s.ctx, model.Filter{
		MinPrice:   &lo,
		MaxPrice:   &hi,
		TitleQuery: "doom",
		GenreIDs:   []string{"rpg", "action"},
	}, 2, 20)
	s.Require().NoError(err)

	s.Equal([]string{"2"}, query["page"])
	s.Equal([]string{"20"}, query["pageSize"])
	s.Equal([]string{"100"}, query["MinPrice"])
	s.Equal([]string{"500"}, query["MaxPrice"])
	s.Equal([]string{"doom"}, query["GameTitle"])
	s.Equal([]string{"rpg", "action"}, query["Genres"])

	s.Equal(3, page.TotalPages)
	s.Equal(41, page.TotalElements)
	s.Require().Len(page.Content, 1)
	s.Equal(int64(7), page.Content[0].ID)
	s.Equal("FPS", page.Content[0].Genres[0].ID)
}

func (s *ClientSuite) TestPageTotalsDerivedWhenMissing() {
	s.mux.HandleFunc("GET /api/games/my", s.reply(http.StatusOK, `{"content":[{"id":1,"gameTitle":"A"},{"id":2,"title":"B"}],"totalElements":45}`))

	page, err := s.client.MyGames(s.ctx, 1, 20)
	s.Require().NoError(err)
	s.Equal(1, page.PageNumber)
	s.Equal(3, page.TotalPages)
	s.Equal("A", page.Content[0].Title)
	s.Equal("B", page.Content[1].Title)
}

func (s *ClientSuite) TestGetGameNotFound() {
	s.mux.HandleFunc("GET /api/games/9", s.reply(http.StatusNotFound, `{"message":"no such game"}`))

	_, err := s.client.GetGame(s.ctx, 9)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ClientSuite) TestCreateGameSendsMultipart() {
	s.mux.HandleFunc("POST /api/games", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(r.ParseMultipartForm(1 << 20))
		s.Equal("Doom", r.FormValue("Title"))
		s.Equal("9.99", r.FormValue("Price"))
		s.Equal("FPS", r.FormValue("Genres[0].Title"))
		s.Equal("action", r.FormValue("Genres[1].Title"))

		file, header, err := r.FormFile("Keys")
		s.Require().NoError(err)
		defer func() { _ = file.Close() }()
		content, _ := io.ReadAll(file)
		s.Equal("keys.txt", header.Filename)
		s.Equal("AAA\nBBB", string(content))

		_, _ = io.WriteString(w, `{"id":12,"title":"Doom"}`)
	})

	game, err := s.client.CreateGame(s.ctx, model.GameDraft{
		Title:    "Doom",
		Price:    9.99,
		GenreIDs: []string{"FPS", "action"},
		Keys:     &model.Upload{Filename: "keys.txt", Content: []byte("AAA\nBBB")},
	})
	s.Require().NoError(err)
	s.Equal(int64(12), game.ID)
}

func (s *ClientSuite) TestUpdateGameOmitsKeys() {
	s.mux.HandleFunc("PUT /api/games/12", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(r.ParseMultipartForm(1 << 20))
		_, _, err := r.FormFile("Keys")
		s.ErrorIs(err, http.ErrMissingFile)
		_, _ = io.WriteString(w, `{"id":12}`)
	})

	_, err := s.client.UpdateGame(s.ctx, 12, model.GameDraft{
		Title: "Doom", Price: 1, GenreIDs: []string{"FPS"},
		Keys: &model.Upload{Content: []byte("x")},
	})
	s.NoError(err)
}

func (s *ClientSuite) TestDeleteGameAcceptsNoContent() {
	s.mux.HandleFunc("DELETE /api/games/3", s.reply(http.StatusNoContent, ``))
	s.NoError(s.client.DeleteGame(s.ctx, 3))
}

func (s *ClientSuite) TestGenresAcceptStringsAndObjects() {
	s.mux.HandleFunc("GET /api/genres", s.reply(http.StatusOK, `["rpg",{"id":4,"title":"HORROR"},{"id":"action","title":"Action"}]`))

	genres, err := s.client.Genres(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.Genre{
		{ID: "rpg", Label: "RPG"},
		{ID: "HORROR", Label: "Horror"},
		{ID: "action", Label: "Action"},
	}, genres)
}

// Carts and orders

func (s *ClientSuite) TestGetCartNormalizesCasing() {
	s.mux.HandleFunc("GET /api/carts", s.reply(http.StatusOK,
		`{"CartItems":[{"GameId":1,"Quantity":2,"Price":10,"GameTitle":"A"},{"gameId":2,"quantity":3,"title":"B"},{"gameId":3,"quantity":0}]}`))

	cart, err := s.client.GetCart(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(cart.Items, 2)
	s.Equal(5, cart.TotalQuantity())
	s.Equal("A", cart.Items[0].Title)
	s.Equal("B", cart.Items[1].Title)
}

func (s *ClientSuite) TestCartItemBodies() {
	var bodies []string
	record := func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, r.Method+" "+string(data))
		w.WriteHeader(http.StatusOK)
	}
	s.mux.HandleFunc("/api/carts/items", record)

	s.Require().NoError(s.client.AddCartItem(s.ctx, 5, 1))
	s.Require().NoError(s.client.RemoveCartItem(s.ctx, 5, 2))

	s.Equal([]string{
		`POST {"GameId":5,"Quantity":1}`,
		`DELETE {"GameId":5,"Quantity":2}`,
	}, bodies)
}

func (s *ClientSuite) TestCreateOrderBody() {
	var body string
	s.mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		_, _ = io.WriteString(w, `{"Id":17,"TotalAmount":30,"OrderItems":[{"GameId":1,"Quantity":3,"Price":10,"Key":"K-1"}]}`)
	})

	order, err := s.client.CreateOrder(s.ctx, []model.OrderLine{{GameID: 1, Quantity: 3}})
	s.Require().NoError(err)
	s.JSONEq(`{"OrderItems":[{"GameId":1,"Quantity":3}]}`, body)
	s.Equal("17", order.ID)
	s.Equal([]string{"K-1"}, order.Items[0].Keys)
}

func (s *ClientSuite) TestListOrders() {
	s.mux.HandleFunc("GET /api/orders", s.reply(http.StatusOK,
		`{"content":[{"id":"o-1","createdAt":"2024-01-01T12:00:00Z","orderItems":[{"gameId":1,"gameTitle":"A","quantity":2,"price":5}]}],"totalPages":1}`))

	page, err := s.client.ListOrders(s.ctx, 1, 10)
	s.Require().NoError(err)
	s.Require().Len(page.Content, 1)
	order := page.Content[0]
	s.Equal("o-1", order.ID)
	s.Equal(2024, order.CreatedAt.Year())
	s.InDelta(10.0, order.Total(), 0.001)
}

func (s *ClientSuite) TestPingTreatsHTTPErrorsAsReachable() {
	s.mux.HandleFunc("GET /api/genres", s.reply(http.StatusInternalServerError, `{}`))
	s.NoError(s.client.Ping(s.ctx))
}
