package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codearena/arena/internal/contest"
	"github.com/codearena/arena/internal/database/models"
	"github.com/codearena/arena/internal/util"
)

type createContestRequest struct {
	Title            string    `json:"title" binding:"required"`
	Description      string    `json:"description"`
	StartTime        time.Time `json:"start_time" binding:"required"`
	EndTime          time.Time `json:"end_time" binding:"required"`
	RegistrationEnd  time.Time `json:"registration_end"`
	MaxParticipants  *int      `json:"max_participants"`
	ProblemIDs       []string  `json:"problem_ids"`
	ScoringType      string    `json:"scoring_type"`
	PenaltyPerWrong  int       `json:"penalty_per_wrong"`
	PointsPerProblem int       `json:"points_per_problem"`
}

func (h *Handler) createContest(c *gin.Context) {
	userID := c.GetString("userID")

	var req createContestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	created, err := h.svc.CreateContest(c.Request.Context(), contest.CreateContestInput{
		Title:            req.Title,
		Description:      req.Description,
		OwnerID:          userID,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		RegistrationEnd:  req.RegistrationEnd,
		MaxParticipants:  req.MaxParticipants,
		ProblemIDs:       req.ProblemIDs,
		ScoringType:      models.ScoringType(req.ScoringType),
		PenaltyPerWrong:  req.PenaltyPerWrong,
		PointsPerProblem: req.PointsPerProblem,
	})
	if err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, created, "Contest created")
}

func (h *Handler) getContest(c *gin.Context) {
	found, err := h.svc.GetContest(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, found, "Contest found")
}

func (h *Handler) searchContests(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	contests, err := h.svc.SearchContests(c.Request.Context(), contest.ContestQuery{
		Title:  c.Query("title"),
		Status: models.ContestStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, contests, "Contests loaded")
}

type updateContestRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	RegistrationEnd *time.Time `json:"registration_end"`
	MaxParticipants *int       `json:"max_participants"`
	ProblemIDs      []string   `json:"problem_ids"`
	ScoringType     *string    `json:"scoring_type"`
}

func (h *Handler) updateContest(c *gin.Context) {
	userID := c.GetString("userID")

	var req updateContestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	upd := contest.ContestUpdate{
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		RegistrationEnd: req.RegistrationEnd,
		MaxParticipants: req.MaxParticipants,
		ProblemIDs:      req.ProblemIDs,
	}
	if req.ScoringType != nil {
		st := models.ScoringType(*req.ScoringType)
		upd.ScoringType = &st
	}

	updated, err := h.svc.UpdateContest(c.Request.Context(), userID, c.Param("id"), upd)
	if err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, updated, "Contest updated")
}

func (h *Handler) deleteContest(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.svc.DeleteContest(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, nil, "Contest deleted")
}

func (h *Handler) publishContest(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.svc.PublishContest(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, nil, "Contest published")
}

func (h *Handler) cancelContest(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.svc.CancelContest(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, nil, "Contest cancelled")
}

type registerRequest struct {
	DisplayName string `json:"display_name"`
	TeamName    string `json:"team_name"`
}

func (h *Handler) registerForContest(c *gin.Context) {
	userID := c.GetString("userID")

	var req registerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, err)
			return
		}
	}

	p, err := h.svc.Register(c.Request.Context(), c.Param("id"), userID, req.DisplayName, req.TeamName)
	if err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, p, "Successfully registered for contest")
}

func (h *Handler) getLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	lb, err := h.svc.GetLeaderboard(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, lb, "Leaderboard retrieved")
}
