package contest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codearena/arena/internal/database/models"
	"github.com/codearena/arena/internal/judge"
)

func seedPendingSubmission(st *fakeStore, id, contestID, participantID string) *models.Submission {
	sub := &models.Submission{
		ID:            id,
		ContestID:     contestID,
		ParticipantID: participantID,
		ProblemID:     "prob-a",
		Code:          "print(42)",
		Language:      "python",
		Status:        models.SubmissionPending,
		SubmittedAt:   contestStart.Add(10 * time.Minute),
	}
	st.submissions[id] = sub
	return sub
}

func TestProcessSubmissionAccepted(t *testing.T) {
	st := newFakeStore()
	fc := newFakeCache()
	timeMs := 120
	fj := &fakeJudge{verdict: &judge.Verdict{
		Status:          models.SubmissionAccepted,
		Score:           100,
		ExecutionTimeMs: &timeMs,
		TestsPassed:     10,
		TestsTotal:      10,
	}}
	s := newTestService(st, fc, fj)
	ctx := context.Background()

	c := seedContest(st, "contest-1", models.ContestActive)
	p := seedParticipant(st, c.ID, "user-1", models.ParticipantRegistered)
	sub := seedPendingSubmission(st, "sub-1", c.ID, p.ID)

	s.processSubmission(ctx, sub.ID)

	got := st.submissions[sub.ID]
	if got.Status != models.SubmissionAccepted || got.Score != 100 {
		t.Fatalf("expected accepted with score 100, got %s score %d", got.Status, got.Score)
	}
	if got.JudgedAt == nil || !got.JudgedAt.Equal(testNow) {
		t.Fatalf("expected judged_at %v, got %v", testNow, got.JudgedAt)
	}
	if got.ExecutionTimeMs == nil || *got.ExecutionTimeMs != 120 {
		t.Errorf("expected execution time recorded, got %v", got.ExecutionTimeMs)
	}

	if st.participants[p.ID].Status != models.ParticipantParticipating {
		t.Errorf("expected participant promoted to participating, got %s", st.participants[p.ID].Status)
	}
	if st.replaceCalls != 1 {
		t.Errorf("expected one ranking recomputation, got %d", st.replaceCalls)
	}
	if fc.deletes != 1 {
		t.Errorf("expected one leaderboard invalidation, got %d", fc.deletes)
	}
	if len(st.rankings[c.ID]) != 1 || st.rankings[c.ID][0].TotalScore != 100 {
		t.Errorf("expected recomputed ranking with score 100, got %+v", st.rankings[c.ID])
	}
}

func TestProcessSubmissionRejected(t *testing.T) {
	st := newFakeStore()
	fc := newFakeCache()
	fj := &fakeJudge{verdict: &judge.Verdict{
		Status:      models.SubmissionWrongAnswer,
		TestsPassed: 3,
		TestsTotal:  10,
	}}
	s := newTestService(st, fc, fj)
	ctx := context.Background()

	c := seedContest(st, "contest-1", models.ContestActive)
	p := seedParticipant(st, c.ID, "user-1", models.ParticipantRegistered)
	sub := seedPendingSubmission(st, "sub-1", c.ID, p.ID)

	s.processSubmission(ctx, sub.ID)

	if got := st.submissions[sub.ID].Status; got != models.SubmissionWrongAnswer {
		t.Fatalf("expected wrong_answer, got %s", got)
	}
	if st.participants[p.ID].Status != models.ParticipantRegistered {
		t.Errorf("rejected verdicts must not promote the participant, got %s", st.participants[p.ID].Status)
	}
	if st.replaceCalls != 0 {
		t.Errorf("rejected verdicts must not trigger recomputation, got %d", st.replaceCalls)
	}
	if fc.deletes != 0 {
		t.Errorf("rejected verdicts must not invalidate the leaderboard, got %d deletes", fc.deletes)
	}
}

func TestProcessSubmissionJudgeFailure(t *testing.T) {
	st := newFakeStore()
	fc := newFakeCache()
	fj := &fakeJudge{err: errors.New("judge unavailable")}
	s := newTestService(st, fc, fj)
	ctx := context.Background()

	c := seedContest(st, "contest-1", models.ContestActive)
	p := seedParticipant(st, c.ID, "user-1", models.ParticipantRegistered)
	sub := seedPendingSubmission(st, "sub-1", c.ID, p.ID)

	s.processSubmission(ctx, sub.ID)

	got := st.submissions[sub.ID]
	if got.Status != models.SubmissionRuntimeError {
		t.Fatalf("expected judge failure to land as runtime_error, got %s", got.Status)
	}
	if got.Score != 0 {
		t.Errorf("expected score 0 on judge failure, got %d", got.Score)
	}
	if got.JudgedAt == nil {
		t.Error("expected judged_at set so the submission is terminal")
	}
	if st.replaceCalls != 0 {
		t.Errorf("judge failures must not trigger recomputation, got %d", st.replaceCalls)
	}
}

func TestProcessSubmissionAlreadyJudged(t *testing.T) {
	st := newFakeStore()
	fj := &fakeJudge{verdict: &judge.Verdict{Status: models.SubmissionAccepted, Score: 100}}
	s := newTestService(st, newFakeCache(), fj)
	ctx := context.Background()

	c := seedContest(st, "contest-1", models.ContestActive)
	p := seedParticipant(st, c.ID, "user-1", models.ParticipantRegistered)
	sub := seedPendingSubmission(st, "sub-1", c.ID, p.ID)
	judgedAt := contestStart.Add(15 * time.Minute)
	sub.Status = models.SubmissionWrongAnswer
	sub.JudgedAt = &judgedAt

	s.processSubmission(ctx, sub.ID)

	if fj.calls != 0 {
		t.Fatalf("already-judged submission must not reach the judge, got %d calls", fj.calls)
	}
	if got := st.submissions[sub.ID].Status; got != models.SubmissionWrongAnswer {
		t.Fatalf("verdict must be written at most once, got %s", got)
	}
}

func TestRequeuePending(t *testing.T) {
	st := newFakeStore()
	s := newTestService(st, newFakeCache(), &fakeJudge{})
	ctx := context.Background()

	c := seedContest(st, "contest-1", models.ContestActive)
	p := seedParticipant(st, c.ID, "user-1", models.ParticipantRegistered)
	seedPendingSubmission(st, "sub-1", c.ID, p.ID)
	seedPendingSubmission(st, "sub-2", c.ID, p.ID)
	judged := seedPendingSubmission(st, "sub-3", c.ID, p.ID)
	judgedAt := contestStart.Add(20 * time.Minute)
	judged.Status = models.SubmissionAccepted
	judged.JudgedAt = &judgedAt

	if err := s.RequeuePending(ctx); err != nil {
		t.Fatalf("RequeuePending: %v", err)
	}

	var queued []string
	for {
		select {
		case id := <-s.queue:
			queued = append(queued, id)
			continue
		default:
		}
		break
	}
	if len(queued) != 2 {
		t.Fatalf("expected 2 requeued submissions, got %d (%v)", len(queued), queued)
	}
	for _, id := range queued {
		if id == "sub-3" {
			t.Fatal("judged submission must not be requeued")
		}
	}
}

func TestDispatcherDrainsQueue(t *testing.T) {
	st := newFakeStore()
	fj := &fakeJudge{verdict: &judge.Verdict{Status: models.SubmissionAccepted, Score: 100}}
	s := newTestService(st, newFakeCache(), fj)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := seedContest(st, "contest-1", models.ContestActive)
	p := seedParticipant(st, c.ID, "user-1", models.ParticipantRegistered)
	sub := seedPendingSubmission(st, "sub-1", c.ID, p.ID)

	s.Start(ctx)
	s.enqueue(sub.ID)

	deadline := time.After(2 * time.Second)
	for {
		st.mu.Lock()
		status := st.submissions[sub.ID].Status
		st.mu.Unlock()
		if status.Judged() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("submission was not judged before the deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.submissions[sub.ID].Status != models.SubmissionAccepted {
		t.Fatalf("expected accepted, got %s", st.submissions[sub.ID].Status)
	}
}
