package contest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codearena/arena/internal/cache"
	"github.com/codearena/arena/internal/database/models"
	"github.com/codearena/arena/internal/judge"
)

// Options tunes the orchestrator. Zero values fall back to sane defaults.
type Options struct {
	PenaltyPerWrong  int
	PointsPerProblem int

	LeaderboardActiveTTL time.Duration
	LeaderboardFinalTTL  time.Duration

	JudgeTimeout time.Duration
	Workers      int
	QueueSize    int
}

func (o *Options) applyDefaults() {
	if o.PenaltyPerWrong <= 0 {
		o.PenaltyPerWrong = defaultPenaltyPerWrong
	}
	if o.PointsPerProblem <= 0 {
		o.PointsPerProblem = defaultPointsPerProblem
	}
	if o.LeaderboardActiveTTL <= 0 {
		o.LeaderboardActiveTTL = 10 * time.Second
	}
	if o.LeaderboardFinalTTL <= 0 {
		o.LeaderboardFinalTTL = 24 * time.Hour
	}
	if o.JudgeTimeout <= 0 {
		o.JudgeTimeout = 60 * time.Second
	}
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 1024
	}
}

// Service coordinates contest lifecycle, registration, submission intake,
// asynchronous judging, ranking recomputation and leaderboard caching. All
// collaborators are injected so tests can substitute in-memory fakes.
type Service struct {
	store Store
	cache cache.Cache
	judge judge.Client
	opts  Options

	queue chan string // submission IDs awaiting judging
	now   func() time.Time
}

func NewService(store Store, c cache.Cache, j judge.Client, opts Options) *Service {
	opts.applyDefaults()
	return &Service{
		store: store,
		cache: c,
		judge: j,
		opts:  opts,
		queue: make(chan string, opts.QueueSize),
		now:   time.Now,
	}
}

// CreateContestInput carries the owner-provided contest definition.
type CreateContestInput struct {
	Title           string
	Description     string
	OwnerID         string
	StartTime       time.Time
	EndTime         time.Time
	RegistrationEnd time.Time
	MaxParticipants *int
	ProblemIDs      []string
	ScoringType     models.ScoringType

	PenaltyPerWrong  int
	PointsPerProblem int
}

func (s *Service) CreateContest(ctx context.Context, in CreateContestInput) (*models.Contest, error) {
	if !in.StartTime.Before(in.EndTime) {
		return nil, ErrInvalidTimeWindow
	}

	c := &models.Contest{
		ID:              uuid.New().String(),
		Title:           in.Title,
		Description:     in.Description,
		OwnerID:         in.OwnerID,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		RegistrationEnd: in.RegistrationEnd,
		MaxParticipants: in.MaxParticipants,
		ProblemIDs:      models.StringList(in.ProblemIDs),
		ScoringType:     in.ScoringType,
		Status:          models.ContestDraft,
	}
	c.PenaltyPerWrong = in.PenaltyPerWrong
	c.PointsPerProblem = in.PointsPerProblem
	if c.RegistrationEnd.IsZero() {
		c.RegistrationEnd = c.StartTime
	}
	if c.ScoringType == "" {
		c.ScoringType = models.ScoringStandard
	}
	if c.PenaltyPerWrong <= 0 {
		c.PenaltyPerWrong = s.opts.PenaltyPerWrong
	}
	if c.PointsPerProblem <= 0 {
		c.PointsPerProblem = s.opts.PointsPerProblem
	}

	if err := s.store.CreateContest(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}
	zap.S().Infof("contest %s created by %s", c.ID, c.OwnerID)
	return c, nil
}

func (s *Service) GetContest(ctx context.Context, id string) (*models.Contest, error) {
	return s.store.GetContestByID(ctx, id)
}

func (s *Service) SearchContests(ctx context.Context, q ContestQuery) ([]models.Contest, error) {
	return s.store.SearchContests(ctx, q)
}

// ContestUpdate carries a partial contest edit; nil fields stay unchanged.
type ContestUpdate struct {
	Title           *string
	Description     *string
	StartTime       *time.Time
	EndTime         *time.Time
	RegistrationEnd *time.Time
	MaxParticipants *int
	ProblemIDs      []string
	ScoringType     *models.ScoringType
}

func (s *Service) UpdateContest(ctx context.Context, ownerID, id string, upd ContestUpdate) (*models.Contest, error) {
	c, err := s.store.GetContestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}
	if c.Status != models.ContestDraft && c.Status != models.ContestUpcoming {
		return nil, ErrContestImmutable
	}

	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.StartTime != nil {
		c.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		c.EndTime = *upd.EndTime
	}
	if upd.RegistrationEnd != nil {
		c.RegistrationEnd = *upd.RegistrationEnd
	}
	if upd.MaxParticipants != nil {
		c.MaxParticipants = upd.MaxParticipants
	}
	if upd.ProblemIDs != nil {
		c.ProblemIDs = models.StringList(upd.ProblemIDs)
	}
	if upd.ScoringType != nil {
		c.ScoringType = *upd.ScoringType
	}
	if !c.StartTime.Before(c.EndTime) {
		return nil, ErrInvalidTimeWindow
	}

	if err := s.store.UpdateContest(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update contest: %w", err)
	}
	return c, nil
}

func (s *Service) DeleteContest(ctx context.Context, ownerID, id string) error {
	c, err := s.store.GetContestByID(ctx, id)
	if err != nil {
		return err
	}
	if c.OwnerID != ownerID {
		return ErrUnauthorized
	}
	if c.Status != models.ContestDraft {
		return ErrContestImmutable
	}
	return s.store.DeleteContest(ctx, id)
}

// PublishContest moves a draft contest into the public upcoming state.
func (s *Service) PublishContest(ctx context.Context, ownerID, id string) error {
	c, err := s.store.GetContestByID(ctx, id)
	if err != nil {
		return err
	}
	if c.OwnerID != ownerID {
		return ErrUnauthorized
	}
	applied, err := s.store.TransitionContestStatus(ctx, id, models.ContestDraft, models.ContestUpcoming)
	if err != nil {
		return fmt.Errorf("failed to publish contest: %w", err)
	}
	if !applied {
		return ErrContestImmutable
	}
	zap.S().Infof("contest %s published", id)
	return nil
}

// CancelContest moves a non-terminal contest to cancelled.
func (s *Service) CancelContest(ctx context.Context, ownerID, id string) error {
	c, err := s.store.GetContestByID(ctx, id)
	if err != nil {
		return err
	}
	if c.OwnerID != ownerID {
		return ErrUnauthorized
	}
	if c.Status == models.ContestEnded || c.Status == models.ContestCancelled {
		return ErrContestImmutable
	}
	applied, err := s.store.TransitionContestStatus(ctx, id, c.Status, models.ContestCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel contest: %w", err)
	}
	if !applied {
		// Lost the race against a concurrent transition; terminal either way.
		return ErrContestImmutable
	}
	zap.S().Infof("contest %s cancelled", id)
	return nil
}

// UpdateContestStatuses is the periodic lifecycle sweep. It compares each
// contest's window against the clock and advances one guarded step at a
// time, so it is idempotent and never skips a state even when a window
// opened and closed between sweeps.
func (s *Service) UpdateContestStatuses(ctx context.Context) error {
	contests, err := s.store.ListContestsByStatus(ctx, models.ContestUpcoming, models.ContestActive)
	if err != nil {
		return fmt.Errorf("failed to list contests for status sweep: %w", err)
	}

	now := s.now()
	for i := range contests {
		c := &contests[i]
		if c.Status == models.ContestUpcoming && !now.Before(c.StartTime) {
			applied, err := s.store.TransitionContestStatus(ctx, c.ID, models.ContestUpcoming, models.ContestActive)
			if err != nil {
				zap.S().Errorf("failed to activate contest %s: %v", c.ID, err)
				continue
			}
			if applied {
				c.Status = models.ContestActive
				zap.S().Infof("contest %s is now active", c.ID)
			}
		}
		if c.Status == models.ContestActive && !now.Before(c.EndTime) {
			applied, err := s.store.TransitionContestStatus(ctx, c.ID, models.ContestActive, models.ContestEnded)
			if err != nil {
				zap.S().Errorf("failed to end contest %s: %v", c.ID, err)
				continue
			}
			if applied {
				zap.S().Infof("contest %s has ended", c.ID)
				// Drop the short-TTL live entry; the next read re-caches
				// the final board with the long TTL.
				s.invalidateLeaderboard(ctx, c.ID)
			}
		}
	}
	return nil
}

// Register performs admission control and creates a participant row.
func (s *Service) Register(ctx context.Context, contestID, userID, displayName, teamName string) (*models.Participant, error) {
	c, err := s.store.GetContestByID(ctx, contestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if c.Status == models.ContestEnded || c.Status == models.ContestCancelled || now.After(c.RegistrationEnd) {
		return nil, ErrRegistrationClosed
	}

	existing, err := s.store.GetParticipant(ctx, contestID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	// Best-effort capacity gate. Two racing registrations may both pass the
	// count; the unique (contest, user) constraint still guarantees at most
	// one row per user.
	if c.MaxParticipants != nil {
		count, err := s.store.CountParticipants(ctx, contestID)
		if err != nil {
			return nil, fmt.Errorf("failed to count participants: %w", err)
		}
		if count >= int64(*c.MaxParticipants) {
			return nil, ErrContestFull
		}
	}

	if displayName == "" {
		displayName = userID
	}
	p := &models.Participant{
		ID:           uuid.New().String(),
		ContestID:    contestID,
		UserID:       userID,
		DisplayName:  displayName,
		TeamName:     teamName,
		Status:       models.ParticipantRegistered,
		RegisteredAt: now,
	}
	if err := s.store.RegisterParticipant(ctx, p); err != nil {
		return nil, err
	}
	zap.S().Infof("user %s registered for contest %s", userID, contestID)
	return p, nil
}

// Submit validates eligibility, persists a pending submission and enqueues
// it for judging. The pending submission is returned immediately; the
// verdict lands asynchronously.
func (s *Service) Submit(ctx context.Context, contestID, userID, problemID, code, language string) (*models.Submission, error) {
	c, err := s.store.GetContestByID(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.ContestActive {
		return nil, ErrContestNotActive
	}

	p, err := s.store.GetParticipant(ctx, contestID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	if p == nil || p.Status == models.ParticipantDisqualified {
		return nil, ErrNotRegistered
	}

	if !c.ProblemIDs.Contains(problemID) {
		return nil, ErrProblemNotInContest
	}

	sub := &models.Submission{
		ID:            uuid.New().String(),
		ContestID:     contestID,
		ParticipantID: p.ID,
		ProblemID:     problemID,
		Code:          code,
		Language:      language,
		Status:        models.SubmissionPending,
		SubmittedAt:   s.now(),
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.enqueue(sub.ID)
	zap.S().Infof("submission %s for problem %s queued", sub.ID, problemID)
	return sub, nil
}

// GetSubmission returns a submission to its submitter.
func (s *Service) GetSubmission(ctx context.Context, userID, id string) (*models.Submission, error) {
	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.store.GetParticipantByID(ctx, sub.ParticipantID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	if p == nil || p.UserID != userID {
		return nil, ErrUnauthorized
	}
	return sub, nil
}

// GetLeaderboard serves the contest leaderboard cache-aside: on a miss (or
// any cache failure) it rebuilds from the store and repopulates the cache
// with a TTL chosen by contest status.
func (s *Service) GetLeaderboard(ctx context.Context, contestID string, limit int) (*Leaderboard, error) {
	c, err := s.store.GetContestByID(ctx, contestID)
	if err != nil {
		return nil, err
	}

	key := leaderboardKey(contestID)
	if data, err := s.cache.Get(ctx, key); err != nil {
		zap.S().Warnf("leaderboard cache read failed for contest %s: %v", contestID, err)
	} else if data != nil {
		var lb Leaderboard
		if err := json.Unmarshal(data, &lb); err != nil {
			zap.S().Warnf("dropping malformed leaderboard cache entry for contest %s: %v", contestID, err)
		} else {
			return trimLeaderboard(&lb, limit), nil
		}
	}

	lb, err := s.buildLeaderboard(ctx, c)
	if err != nil {
		return nil, err
	}

	ttl := s.opts.LeaderboardActiveTTL
	if c.Status == models.ContestEnded || c.Status == models.ContestCancelled {
		ttl = s.opts.LeaderboardFinalTTL
	}
	if data, err := json.Marshal(lb); err != nil {
		zap.S().Errorf("failed to encode leaderboard for contest %s: %v", contestID, err)
	} else if err := s.cache.SetWithTTL(ctx, key, data, ttl); err != nil {
		zap.S().Warnf("leaderboard cache write failed for contest %s: %v", contestID, err)
	}

	return trimLeaderboard(lb, limit), nil
}

func (s *Service) buildLeaderboard(ctx context.Context, c *models.Contest) (*Leaderboard, error) {
	rankings, err := s.store.GetContestRankings(ctx, c.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load rankings: %w", err)
	}
	participants, err := s.store.GetContestParticipants(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	byID := make(map[string]*models.Participant, len(participants))
	for i := range participants {
		byID[participants[i].ID] = &participants[i]
	}

	entries := make([]LeaderboardEntry, 0, len(rankings))
	for _, r := range rankings {
		entry := LeaderboardEntry{
			Rank:           r.Rank,
			ParticipantID:  r.ParticipantID,
			TotalScore:     r.TotalScore,
			ProblemsSolved: r.ProblemsSolved,
			TotalPenalty:   r.TotalPenalty,
			LastAccepted:   r.LastAccepted,
			ProblemResults: r.ProblemResults,
		}
		if p, ok := byID[r.ParticipantID]; ok {
			entry.UserID = p.UserID
			entry.DisplayName = p.DisplayName
			entry.TeamName = p.TeamName
		}
		entries = append(entries, entry)
	}

	return &Leaderboard{
		ContestID:   c.ID,
		Entries:     entries,
		LastUpdated: s.now(),
	}, nil
}

func trimLeaderboard(lb *Leaderboard, limit int) *Leaderboard {
	if limit <= 0 || limit >= len(lb.Entries) {
		return lb
	}
	trimmed := *lb
	trimmed.Entries = lb.Entries[:limit]
	return &trimmed
}

// recomputeRankings rebuilds and atomically replaces a contest's rankings
// from the full submission set. Replacing rather than patching keeps
// concurrent recomputations convergent.
func (s *Service) recomputeRankings(ctx context.Context, contestID string) error {
	c, err := s.store.GetContestByID(ctx, contestID)
	if err != nil {
		return err
	}
	subs, err := s.store.ListContestSubmissions(ctx, contestID)
	if err != nil {
		return fmt.Errorf("failed to load submissions: %w", err)
	}
	rankings := ComputeRankings(c, subs)
	if err := s.store.ReplaceRankings(ctx, contestID, rankings); err != nil {
		return fmt.Errorf("failed to replace rankings: %w", err)
	}
	return nil
}

// invalidateLeaderboard is the single call site that evicts a contest's
// cached leaderboard; the next read rebuilds it (cache-aside).
func (s *Service) invalidateLeaderboard(ctx context.Context, contestID string) {
	if err := s.cache.Delete(ctx, leaderboardKey(contestID)); err != nil {
		zap.S().Warnf("failed to invalidate leaderboard cache for contest %s: %v", contestID, err)
	}
}
