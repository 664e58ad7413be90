package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ContestStatus string

const (
	ContestDraft     ContestStatus = "draft"
	ContestUpcoming  ContestStatus = "upcoming"
	ContestActive    ContestStatus = "active"
	ContestEnded     ContestStatus = "ended"
	ContestCancelled ContestStatus = "cancelled"
)

type ScoringType string

const (
	ScoringStandard ScoringType = "standard"
	ScoringICPC     ScoringType = "icpc"
	ScoringIOI      ScoringType = "ioi"
)

type ParticipantStatus string

const (
	ParticipantRegistered    ParticipantStatus = "registered"
	ParticipantParticipating ParticipantStatus = "participating"
	ParticipantDisqualified  ParticipantStatus = "disqualified"
)

type SubmissionStatus string

const (
	SubmissionPending             SubmissionStatus = "pending"
	SubmissionAccepted            SubmissionStatus = "accepted"
	SubmissionWrongAnswer         SubmissionStatus = "wrong_answer"
	SubmissionTimeLimitExceeded   SubmissionStatus = "time_limit_exceeded"
	SubmissionMemoryLimitExceeded SubmissionStatus = "memory_limit_exceeded"
	SubmissionRuntimeError        SubmissionStatus = "runtime_error"
	SubmissionCompilationError    SubmissionStatus = "compilation_error"
)

// Judged reports whether a status is terminal, i.e. the submission has
// received its verdict.
func (s SubmissionStatus) Judged() bool {
	return s != SubmissionPending
}

// StringList is a helper type for storing an ordered list of IDs as JSON.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}
	return json.Unmarshal(bytes, l)
}

func (l StringList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// ProblemResult is one participant's standing on one problem.
type ProblemResult struct {
	Score    int        `json:"score"`
	Attempts int        `json:"attempts"` // wrong tries strictly before the first accept
	Solved   bool       `json:"solved"`
	SolvedAt *time.Time `json:"solved_at,omitempty"`
}

// ProblemResultMap is a helper type for storing per-problem results as JSON.
type ProblemResultMap map[string]ProblemResult

func (m ProblemResultMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *ProblemResultMap) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}
	return json.Unmarshal(bytes, m)
}

type Contest struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     string `gorm:"index" json:"owner_id"`

	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	RegistrationEnd time.Time `json:"registration_end"`

	MaxParticipants *int          `json:"max_participants"`
	ProblemIDs      StringList    `gorm:"type:text" json:"problem_ids"`
	ScoringType     ScoringType   `json:"scoring_type"`
	Status          ContestStatus `gorm:"index" json:"status"`

	// Scoring configuration for standard/icpc contests.
	PenaltyPerWrong  int `json:"penalty_per_wrong"`  // minutes per rejected try before the accept
	PointsPerProblem int `json:"points_per_problem"` // value of a solved problem
}

type Participant struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ContestID string `gorm:"uniqueIndex:idx_contest_user" json:"contest_id"`
	UserID    string `gorm:"uniqueIndex:idx_contest_user" json:"user_id"`

	DisplayName  string            `json:"display_name"`
	TeamName     string            `json:"team_name,omitempty"`
	Status       ParticipantStatus `json:"status"`
	RegisteredAt time.Time         `json:"registered_at"`
}

type Submission struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ContestID     string `gorm:"index" json:"contest_id"`
	ParticipantID string `gorm:"index" json:"participant_id"`
	ProblemID     string `gorm:"index" json:"problem_id"`

	Code     string `gorm:"type:text" json:"code"`
	Language string `json:"language"`

	Status          SubmissionStatus `gorm:"index" json:"status"`
	Score           int              `json:"score"`
	ExecutionTimeMs *int             `json:"execution_time_ms,omitempty"`
	MemoryKb        *int             `json:"memory_kb,omitempty"`
	TestsPassed     int              `json:"tests_passed"`
	TestsTotal      int              `json:"tests_total"`

	SubmittedAt time.Time  `json:"submitted_at"`
	JudgedAt    *time.Time `json:"judged_at"` // nil until the verdict lands, written exactly once
}

// Ranking is the derived standing of one participant in one contest. Rows
// are fully replaced by each ranking run and are never edited in place.
type Ranking struct {
	ID        uint `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time

	ContestID     string `gorm:"uniqueIndex:idx_contest_participant" json:"contest_id"`
	ParticipantID string `gorm:"uniqueIndex:idx_contest_participant" json:"participant_id"`

	Rank           int              `json:"rank"`
	TotalScore     int              `json:"total_score"`
	ProblemsSolved int              `json:"problems_solved"`
	TotalPenalty   int              `json:"total_penalty"`
	LastAccepted   *time.Time       `json:"last_accepted,omitempty"`
	ProblemResults ProblemResultMap `gorm:"type:text" json:"problem_results"`
}
