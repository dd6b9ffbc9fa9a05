package character

import (
	"github.com/kindredkeeper/keeper/core"
)

type createRequest struct {
	Name string `json:"name"`
}

// LeaderboardResponse is one leaderboard page
type LeaderboardResponse = core.Paged[core.Character]
