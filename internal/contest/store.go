package contest

import (
	"context"
	"time"

	"github.com/codearena/arena/internal/database/models"
)

// SubmissionResult is the one-shot verdict write applied to a pending
// submission.
type SubmissionResult struct {
	Status          models.SubmissionStatus
	Score           int
	ExecutionTimeMs *int
	MemoryKb        *int
	TestsPassed     int
	TestsTotal      int
	JudgedAt        time.Time
}

// ContestQuery filters contest searches.
type ContestQuery struct {
	Title  string
	Status models.ContestStatus
	Limit  int
	Offset int
}

// Store is the durable record of contests, participants, submissions and
// rankings. It is the single source of truth; conflicting writes are
// serialized by store-level constraints, not application locks.
type Store interface {
	CreateContest(ctx context.Context, c *models.Contest) error
	// GetContestByID returns ErrContestNotFound when the contest is absent.
	GetContestByID(ctx context.Context, id string) (*models.Contest, error)
	UpdateContest(ctx context.Context, c *models.Contest) error
	DeleteContest(ctx context.Context, id string) error
	SearchContests(ctx context.Context, q ContestQuery) ([]models.Contest, error)
	// TransitionContestStatus performs a guarded status update and reports
	// whether the row was in the expected state. Safe to call concurrently
	// and repeatedly: at most one caller observes applied=true per step.
	TransitionContestStatus(ctx context.Context, id string, from, to models.ContestStatus) (bool, error)
	ListContestsByStatus(ctx context.Context, statuses ...models.ContestStatus) ([]models.Contest, error)

	// GetParticipant returns (nil, nil) when no row exists for the pair.
	GetParticipant(ctx context.Context, contestID, userID string) (*models.Participant, error)
	GetParticipantByID(ctx context.Context, id string) (*models.Participant, error)
	// RegisterParticipant returns ErrAlreadyRegistered when a row for
	// (contest, user) already exists; the store's unique constraint makes
	// this atomic under concurrent registration.
	RegisterParticipant(ctx context.Context, p *models.Participant) error
	CountParticipants(ctx context.Context, contestID string) (int64, error)
	GetContestParticipants(ctx context.Context, contestID string) ([]models.Participant, error)
	UpdateParticipantStatus(ctx context.Context, id string, status models.ParticipantStatus) error

	CreateSubmission(ctx context.Context, s *models.Submission) error
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	ListContestSubmissions(ctx context.Context, contestID string) ([]models.Submission, error)
	ListPendingSubmissions(ctx context.Context) ([]models.Submission, error)
	// UpdateSubmissionResult writes the judging fields at most once and
	// reports whether this call was the one that landed.
	UpdateSubmissionResult(ctx context.Context, id string, res SubmissionResult) (bool, error)

	// ReplaceRankings atomically swaps the full ranking set for a contest.
	ReplaceRankings(ctx context.Context, contestID string, rankings []models.Ranking) error
	GetContestRankings(ctx context.Context, contestID string, limit int) ([]models.Ranking, error)
}
