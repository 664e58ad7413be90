package contest

import (
	"sort"
	"time"

	"github.com/codearena/arena/internal/database/models"
)

// Fallbacks for contests created before scoring configuration existed.
const (
	defaultPointsPerProblem = 100
	defaultPenaltyPerWrong  = 20
)

// problemState accumulates one participant's judged submissions to one
// problem, in submission-time order.
type problemState struct {
	attempts int // rejected tries strictly before the first accept
	solved   bool
	solvedAt time.Time
	best     int // best score seen (ioi)
	bestAt   time.Time
}

type standing struct {
	participantID  string
	totalScore     int
	totalPenalty   int
	problemsSolved int
	lastAccepted   time.Time
	problems       map[string]*problemState
}

// ComputeRankings derives the full ranking set for a contest from its
// submission history. It is a pure function: given the same contest and the
// same submissions in any order it produces identical output, so concurrent
// recomputations converge on the same state.
func ComputeRankings(c *models.Contest, subs []models.Submission) []models.Ranking {
	ordered := make([]models.Submission, len(subs))
	copy(ordered, subs)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].SubmittedAt.Equal(ordered[j].SubmittedAt) {
			return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	byParticipant := make(map[string]*standing)
	for _, sub := range ordered {
		if !sub.Status.Judged() {
			continue
		}
		if !c.ProblemIDs.Contains(sub.ProblemID) {
			continue
		}

		st, ok := byParticipant[sub.ParticipantID]
		if !ok {
			st = &standing{
				participantID: sub.ParticipantID,
				problems:      make(map[string]*problemState),
			}
			byParticipant[sub.ParticipantID] = st
		}
		ps, ok := st.problems[sub.ProblemID]
		if !ok {
			ps = &problemState{}
			st.problems[sub.ProblemID] = ps
		}

		if sub.Score > ps.best {
			ps.best = sub.Score
			ps.bestAt = sub.SubmittedAt
		}
		if ps.solved {
			// Additional tries after the accept never add penalty.
			continue
		}
		if sub.Status == models.SubmissionAccepted {
			ps.solved = true
			ps.solvedAt = sub.SubmittedAt
		} else {
			ps.attempts++
		}
	}

	points := c.PointsPerProblem
	if points <= 0 {
		points = defaultPointsPerProblem
	}
	penaltyPerWrong := c.PenaltyPerWrong
	if penaltyPerWrong <= 0 {
		penaltyPerWrong = defaultPenaltyPerWrong
	}

	standings := make([]*standing, 0, len(byParticipant))
	for _, st := range byParticipant {
		for _, ps := range st.problems {
			if ps.solved {
				st.problemsSolved++
			}
			switch c.ScoringType {
			case models.ScoringIOI:
				st.totalScore += ps.best
				if ps.best > 0 && ps.bestAt.After(st.lastAccepted) {
					st.lastAccepted = ps.bestAt
				}
			default: // standard, icpc
				if !ps.solved {
					continue
				}
				st.totalScore += points
				st.totalPenalty += ps.attempts*penaltyPerWrong + int(ps.solvedAt.Sub(c.StartTime).Minutes())
				if ps.solvedAt.After(st.lastAccepted) {
					st.lastAccepted = ps.solvedAt
				}
			}
		}
		standings = append(standings, st)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.totalScore != b.totalScore {
			return a.totalScore > b.totalScore
		}
		if a.totalPenalty != b.totalPenalty {
			return a.totalPenalty < b.totalPenalty
		}
		if !a.lastAccepted.Equal(b.lastAccepted) {
			// Earlier overall finish wins; never having scored sorts last.
			if a.lastAccepted.IsZero() {
				return false
			}
			if b.lastAccepted.IsZero() {
				return true
			}
			return a.lastAccepted.Before(b.lastAccepted)
		}
		return a.participantID < b.participantID
	})

	rankings := make([]models.Ranking, 0, len(standings))
	rank := 0
	for i, st := range standings {
		// Standard competition ranking: tied tuples share a rank and the
		// next distinct tuple ranks below all of them.
		if i == 0 || !tiedWith(st, standings[i-1]) {
			rank = i + 1
		}

		results := make(models.ProblemResultMap, len(st.problems))
		for problemID, ps := range st.problems {
			r := models.ProblemResult{
				Attempts: ps.attempts,
				Solved:   ps.solved,
			}
			if c.ScoringType == models.ScoringIOI {
				r.Score = ps.best
			} else if ps.solved {
				r.Score = points
			}
			if ps.solved {
				solvedAt := ps.solvedAt
				r.SolvedAt = &solvedAt
			}
			results[problemID] = r
		}

		entry := models.Ranking{
			ContestID:      c.ID,
			ParticipantID:  st.participantID,
			Rank:           rank,
			TotalScore:     st.totalScore,
			ProblemsSolved: st.problemsSolved,
			TotalPenalty:   st.totalPenalty,
			ProblemResults: results,
		}
		if !st.lastAccepted.IsZero() {
			last := st.lastAccepted
			entry.LastAccepted = &last
		}
		rankings = append(rankings, entry)
	}
	return rankings
}

func tiedWith(a, b *standing) bool {
	return a.totalScore == b.totalScore &&
		a.totalPenalty == b.totalPenalty &&
		a.lastAccepted.Equal(b.lastAccepted)
}
