package contest

import (
	"fmt"
	"time"

	"github.com/codearena/arena/internal/database/models"
)

// LeaderboardEntry joins a ranking row with participant identity for display.
type LeaderboardEntry struct {
	Rank           int                     `json:"rank"`
	ParticipantID  string                  `json:"participant_id"`
	UserID         string                  `json:"user_id"`
	DisplayName    string                  `json:"display_name"`
	TeamName       string                  `json:"team_name,omitempty"`
	TotalScore     int                     `json:"total_score"`
	ProblemsSolved int                     `json:"problems_solved"`
	TotalPenalty   int                     `json:"total_penalty"`
	LastAccepted   *time.Time              `json:"last_accepted,omitempty"`
	ProblemResults models.ProblemResultMap `json:"problem_results"`
}

// Leaderboard is the ordered, cacheable view of a contest's rankings.
type Leaderboard struct {
	ContestID   string             `json:"contest_id"`
	Entries     []LeaderboardEntry `json:"entries"`
	LastUpdated time.Time          `json:"last_updated"`
}

func leaderboardKey(contestID string) string {
	return fmt.Sprintf("leaderboard:%s", contestID)
}
