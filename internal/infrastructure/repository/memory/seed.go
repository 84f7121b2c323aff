package memory

import (
	"github.com/Devansh171021/swpl/internal/domain/player"
	"github.com/Devansh171021/swpl/internal/domain/team"
)

const seedPurse int64 = 100_000_000

// SeedTeams returns the default franchises used when no team sheet is
// configured.
func SeedTeams() []team.Team {
	return []team.Team{
		{Name: "Mumbai Mavericks", Purse: seedPurse, Color: "#FF6B35"},
		{Name: "Delhi Dragons", Purse: seedPurse, Color: "#004E89"},
		{Name: "Bangalore Blasters", Purse: seedPurse, Color: "#F72585"},
		{Name: "Chennai Champions", Purse: seedPurse, Color: "#FFD60A"},
		{Name: "Kolkata Kings", Purse: seedPurse, Color: "#7209B7"},
		{Name: "Punjab Panthers", Purse: seedPurse, Color: "#FF0054"},
		{Name: "Hyderabad Hawks", Purse: seedPurse, Color: "#06FFA5"},
		{Name: "Rajasthan Royals", Purse: seedPurse, Color: "#FF006E"},
		{Name: "Gujarat Giants", Purse: seedPurse, Color: "#8338EC"},
		{Name: "Lucknow Legends", Purse: seedPurse, Color: "#FB5607"},
	}
}

// SeedPlayers is the built-in fallback roster used when the spreadsheet
// import fails or yields nothing.
func SeedPlayers() []player.Player {
	const openCategory = "Men (Above 14 to Everyone who wants to Play in open)"

	return []player.Player{
		{ID: "1", Name: "Virat Kohli", Role: player.RoleBatsman, Category: openCategory, BasePrice: 20_000_000},
		{ID: "2", Name: "Jasprit Bumrah", Role: player.RoleBowler, Category: openCategory, BasePrice: 18_000_000},
		{ID: "3", Name: "Rohit Sharma", Role: player.RoleBatsman, Category: openCategory, BasePrice: 19_000_000},
		{ID: "4", Name: "KL Rahul", Role: player.RoleWicketKeeper, Category: openCategory, BasePrice: 17_000_000},
		{ID: "5", Name: "Ravindra Jadeja", Role: player.RoleAllrounder, Category: openCategory, BasePrice: 16_000_000},
		{ID: "6", Name: "Mohammed Shami", Role: player.RoleBowler, Category: openCategory, BasePrice: 15_000_000},
		{ID: "7", Name: "Rishabh Pant", Role: player.RoleWicketKeeper, Category: openCategory, BasePrice: 14_000_000},
		{ID: "8", Name: "Hardik Pandya", Role: player.RoleAllrounder, Category: openCategory, BasePrice: 15_000_000},
		{ID: "9", Name: "Shubman Gill", Role: player.RoleBatsman, Category: openCategory, BasePrice: 13_000_000},
		{ID: "10", Name: "Yuzvendra Chahal", Role: player.RoleBowler, Category: openCategory, BasePrice: 12_000_000},
	}
}
