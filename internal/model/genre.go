package model

// Genre is a catalog category
type Genre struct {
	ID    string
	Label string
}

// Genres is the canonical genre list, used when the backend list is unavailable
var Genres = []Genre{
	{ID: "action", Label: "Action"},
	{ID: "rpg", Label: "RPG"},
	{ID: "strategy", Label: "Strategy"},
	{ID: "adventure", Label: "Adventure"},
	{ID: "shooter", Label: "Shooter"},
	{ID: "simulation", Label: "Simulation"},
	{ID: "FPS", Label: "First-person shooter"},
	{ID: "TPS", Label: "Third-person shooter"},
	{ID: "STR_TACT_RPG", Label: "Strategy and tactical RPG"},
	{ID: "BUILD_SIM", Label: "Building and automation"},
	{ID: "HOBBY_SIM", Label: "Hobby and job simulators"},
	{ID: "CASUAL", Label: "Casual"},
	{ID: "ROGUELIKE", Label: "Roguelike"},
	{ID: "CARD_TABLETOP", Label: "Card and tabletop"},
	{ID: "TURN_BASED", Label: "Turn-based strategy"},
	{ID: "SCI_FI", Label: "Science fiction"},
	{ID: "PUZZLE", Label: "Puzzle"},
	{ID: "TOWER_DEF", Label: "Tower defense"},
	{ID: "SPORTS_SIM", Label: "Sports"},
	{ID: "HORROR", Label: "Horror"},
	{ID: "RACING", Label: "Racing"},
	{ID: "SURVIVAL", Label: "Survival"},
}

// GenreLabel returns the display label of a genre id, or the id itself
func GenreLabel(id string) string {
	for _, g := range Genres {
		if g.ID == id {
			return g.Label
		}
	}
	return id
}
