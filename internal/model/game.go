package model

import "strings"

// Game is a product listing
type Game struct {
	ID             int64
	Title          string
	Description    string
	Price          float64
	DeveloperTitle string
	PublisherTitle string
	ImageURL       string
	Genres         []Genre
	KeysAvailable  int
	SellerUsername string
}

// GenreIDs returns the ids of the game's genres
func (g *Game) GenreIDs() []string {
	ids := make([]string, 0, len(g.Genres))
	for _, genre := range g.Genres {
		ids = append(ids, genre.ID)
	}
	return ids
}

// Upload is a file attached to a multipart request
type Upload struct {
	Filename string
	Content  []byte
}

// GameDraft is the seller's create/update form
type GameDraft struct {
	Title          string
	Description    string
	Price          float64
	DeveloperTitle string
	PublisherTitle string
	GenreIDs       []string
	Keys           *Upload
	Image          *Upload
}

// Validate checks the draft before it is sent to the backend
func (d GameDraft) Validate() error {
	if len([]rune(strings.TrimSpace(d.Title))) < 2 {
		return ErrTitleTooShort
	}
	if !ValidPrice(d.Price) {
		return ErrInvalidPrice
	}
	if d.Price == 0 {
		return ErrPriceRequired
	}
	if len(d.GenreIDs) == 0 {
		return ErrGenreRequired
	}
	return nil
}
