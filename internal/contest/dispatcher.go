package contest

import (
	"context"

	"go.uber.org/zap"

	"github.com/codearena/arena/internal/database/models"
	"github.com/codearena/arena/internal/judge"
)

// Start launches the judging worker pool. Workers drain the submission
// queue until ctx is cancelled. Each job is independent; no ordering is
// guaranteed between submissions.
func (s *Service) Start(ctx context.Context) {
	for i := 0; i < s.opts.Workers; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-s.queue:
					s.processSubmission(ctx, id)
				}
			}
		}()
	}
	zap.S().Infof("judging dispatcher started with %d workers", s.opts.Workers)
}

func (s *Service) enqueue(submissionID string) {
	s.queue <- submissionID
}

// RequeuePending re-enqueues submissions that never received a verdict,
// typically after a restart interrupted their judging tasks.
func (s *Service) RequeuePending(ctx context.Context) error {
	pending, err := s.store.ListPendingSubmissions(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		zap.S().Info("no pending submissions to requeue")
		return nil
	}
	zap.S().Infof("requeueing %d pending submissions", len(pending))
	for _, sub := range pending {
		s.enqueue(sub.ID)
	}
	return nil
}

// processSubmission runs one judging task to its terminal state. Judge
// failures and timeouts are converted to a runtime_error verdict and never
// retried; only an accepted verdict triggers ranking recomputation and
// leaderboard invalidation.
func (s *Service) processSubmission(ctx context.Context, submissionID string) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		zap.S().Errorf("failed to load submission %s for judging: %v", submissionID, err)
		return
	}
	if sub.Status.Judged() {
		zap.S().Infof("submission %s already judged (%s), skipping", sub.ID, sub.Status)
		return
	}

	judgeCtx, cancel := context.WithTimeout(ctx, s.opts.JudgeTimeout)
	verdict, err := s.judge.Execute(judgeCtx, judge.Request{
		SubmissionID: sub.ID,
		ProblemID:    sub.ProblemID,
		Language:     sub.Language,
		Code:         sub.Code,
	})
	cancel()

	res := SubmissionResult{JudgedAt: s.now()}
	if err != nil {
		zap.S().Warnf("judging failed for submission %s: %v", sub.ID, err)
		res.Status = models.SubmissionRuntimeError
	} else {
		res.Status = verdict.Status
		res.Score = verdict.Score
		res.ExecutionTimeMs = verdict.ExecutionTimeMs
		res.MemoryKb = verdict.MemoryKb
		res.TestsPassed = verdict.TestsPassed
		res.TestsTotal = verdict.TestsTotal
	}

	applied, err := s.store.UpdateSubmissionResult(ctx, sub.ID, res)
	if err != nil {
		zap.S().Errorf("failed to store verdict for submission %s: %v", sub.ID, err)
		return
	}
	if !applied {
		zap.S().Infof("submission %s was judged concurrently, dropping duplicate verdict", sub.ID)
		return
	}
	zap.S().Infof("submission %s judged: %s (score %d)", sub.ID, res.Status, res.Score)

	if res.Status != models.SubmissionAccepted {
		return
	}

	s.markParticipating(ctx, sub.ParticipantID)
	if err := s.recomputeRankings(ctx, sub.ContestID); err != nil {
		zap.S().Errorf("failed to recompute rankings for contest %s: %v", sub.ContestID, err)
	}
	s.invalidateLeaderboard(ctx, sub.ContestID)
}

// markParticipating advances a participant from registered to participating
// on their first accepted interaction. Disqualified is terminal and is
// never overwritten.
func (s *Service) markParticipating(ctx context.Context, participantID string) {
	p, err := s.store.GetParticipantByID(ctx, participantID)
	if err != nil || p == nil {
		zap.S().Warnf("failed to load participant %s: %v", participantID, err)
		return
	}
	if p.Status != models.ParticipantRegistered {
		return
	}
	if err := s.store.UpdateParticipantStatus(ctx, participantID, models.ParticipantParticipating); err != nil {
		zap.S().Warnf("failed to mark participant %s as participating: %v", participantID, err)
	}
}
