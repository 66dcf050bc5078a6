package shop

import (
	"context"

	"github.com/mcoot/keyshop/internal/model"
)

// SeedKeysPerGame is the stock given to each seeded listing
const SeedKeysPerGame = 25

var seedGames = []model.GameDraft{
	{Title: "Starfall Tactics", Price: 24.99, DeveloperTitle: "Nine Moons", PublisherTitle: "Orbit House", GenreIDs: []string{"strategy", "TURN_BASED", "SCI_FI"},
		Description: "Command a fleet across a collapsing star cluster."},
	{Title: "Ashen Crown", Price: 39.99, DeveloperTitle: "Ember Forge", PublisherTitle: "Ember Forge", GenreIDs: []string{"rpg", "action"},
		Description: "A dark fantasy RPG about a kingdom without a king."},
	{Title: "Harbor Builder", Price: 14.5, DeveloperTitle: "Tidewright", PublisherTitle: "Slow Boat", GenreIDs: []string{"simulation", "BUILD_SIM"},
		Description: "Grow a fishing village into a trading port."},
	{Title: "Neon Drift", Price: 9.99, DeveloperTitle: "Pixel Asphalt", PublisherTitle: "Pixel Asphalt", GenreIDs: []string{"RACING", "CASUAL"},
		Description: "Arcade racing through a city that never sleeps."},
	{Title: "Hollow Signal", Price: 19.99, DeveloperTitle: "Quiet Static", PublisherTitle: "Night Bus", GenreIDs: []string{"HORROR", "adventure"},
		Description: "Something is broadcasting from the abandoned relay station."},
	{Title: "Deckbound", Price: 12, DeveloperTitle: "Paper Lantern", PublisherTitle: "Paper Lantern", GenreIDs: []string{"CARD_TABLETOP", "ROGUELIKE"},
		Description: "Build a deck, climb the tower, lose it all, try again."},
}

// Seed creates the demo listings owned by seller
func (s *Service) Seed(ctx context.Context, seller string) error {
	for _, draft := range seedGames {
		game, err := s.CreateGame(ctx, seller, draft)
		if err != nil {
			return err
		}
		keys := s.GenerateKeys(SeedKeysPerGame)
		s.mu.Lock()
		s.listings[game.ID].keys = keys
		s.mu.Unlock()
	}
	return nil
}
