package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codearena/arena/internal/util"
)

type submitRequest struct {
	ProblemID string `json:"problem_id" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Language  string `json:"language" binding:"required"`
}

func (h *Handler) submitSolution(c *gin.Context) {
	userID := c.GetString("userID")
	contestID := c.Param("id")

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	sub, err := h.svc.Submit(c.Request.Context(), contestID, userID, req.ProblemID, req.Code, req.Language)
	if err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, sub, "Submission received")
}

func (h *Handler) getSubmission(c *gin.Context) {
	userID := c.GetString("userID")

	sub, err := h.svc.GetSubmission(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.Error(c, statusFromError(err), err)
		return
	}
	util.Success(c, sub, "ok")
}
