package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/codearena/arena/internal/contest"
	"github.com/codearena/arena/internal/database/models"
)

// Store implements contest.Store on gorm. Uniqueness and at-most-once
// judging writes are enforced by constraints and guarded updates, never by
// application-level locks.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateContest(ctx context.Context, c *models.Contest) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Store) GetContestByID(ctx context.Context, id string) (*models.Contest, error) {
	var c models.Contest
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contest.ErrContestNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateContest(ctx context.Context, c *models.Contest) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *Store) DeleteContest(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Contest{}, "id = ?", id).Error
}

func (s *Store) SearchContests(ctx context.Context, q contest.ContestQuery) ([]models.Contest, error) {
	tx := s.db.WithContext(ctx).Model(&models.Contest{})
	if q.Title != "" {
		tx = tx.Where("title LIKE ?", "%"+q.Title+"%")
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var contests []models.Contest
	if err := tx.Order("start_time desc").Find(&contests).Error; err != nil {
		return nil, err
	}
	return contests, nil
}

func (s *Store) TransitionContestStatus(ctx context.Context, id string, from, to models.ContestStatus) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.Contest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) ListContestsByStatus(ctx context.Context, statuses ...models.ContestStatus) ([]models.Contest, error) {
	var contests []models.Contest
	if err := s.db.WithContext(ctx).Where("status IN ?", statuses).Find(&contests).Error; err != nil {
		return nil, err
	}
	return contests, nil
}

func (s *Store) GetParticipant(ctx context.Context, contestID, userID string) (*models.Participant, error) {
	var p models.Participant
	err := s.db.WithContext(ctx).Where("contest_id = ? AND user_id = ?", contestID, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetParticipantByID(ctx context.Context, id string) (*models.Participant, error) {
	var p models.Participant
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) RegisterParticipant(ctx context.Context, p *models.Participant) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return contest.ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to register participant: %w", err)
	}
	return nil
}

func (s *Store) CountParticipants(ctx context.Context, contestID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Participant{}).
		Where("contest_id = ?", contestID).
		Count(&count).Error
	return count, err
}

func (s *Store) GetContestParticipants(ctx context.Context, contestID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := s.db.WithContext(ctx).Where("contest_id = ?", contestID).
		Order("registered_at asc").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (s *Store) UpdateParticipantStatus(ctx context.Context, id string, status models.ParticipantStatus) error {
	return s.db.WithContext(ctx).Model(&models.Participant{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *Store) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	return s.db.WithContext(ctx).Create(sub).Error
}

func (s *Store) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contest.ErrSubmissionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (s *Store) ListContestSubmissions(ctx context.Context, contestID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.WithContext(ctx).Where("contest_id = ?", contestID).
		Order("submitted_at asc").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *Store) ListPendingSubmissions(ctx context.Context) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.WithContext(ctx).Where("status = ?", models.SubmissionPending).
		Order("submitted_at asc").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// UpdateSubmissionResult writes the judging fields exactly once: the guard
// on judged_at makes a second verdict for the same submission a no-op.
func (s *Store) UpdateSubmissionResult(ctx context.Context, id string, res contest.SubmissionResult) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ? AND judged_at IS NULL", id).
		Updates(map[string]interface{}{
			"status":            res.Status,
			"score":             res.Score,
			"execution_time_ms": res.ExecutionTimeMs,
			"memory_kb":         res.MemoryKb,
			"tests_passed":      res.TestsPassed,
			"tests_total":       res.TestsTotal,
			"judged_at":         res.JudgedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) ReplaceRankings(ctx context.Context, contestID string, rankings []models.Ranking) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contest_id = ?", contestID).Delete(&models.Ranking{}).Error; err != nil {
			return err
		}
		if len(rankings) == 0 {
			return nil
		}
		return tx.Create(&rankings).Error
	})
}

func (s *Store) GetContestRankings(ctx context.Context, contestID string, limit int) ([]models.Ranking, error) {
	tx := s.db.WithContext(ctx).Where("contest_id = ?", contestID).Order("rank asc, participant_id asc")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rankings []models.Ranking
	if err := tx.Find(&rankings).Error; err != nil {
		return nil, err
	}
	return rankings, nil
}
