package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hirewise-backend/internal/service"
)

type MatchController struct {
	matches service.MatchService
}

func NewMatchController(matches service.MatchService) *MatchController {
	return &MatchController{matches: matches}
}

// MatchResume scores one resume against the job description in the path.
func (mc *MatchController) MatchResume(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ResumeID uint `json:"resume_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: missing required fields"})
		return
	}
	match, err := mc.matches.MatchResume(c.Request.Context(), jobID, req.ResumeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

func (mc *MatchController) MatchAllResumes(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		UnmatchedOnly bool `json:"unmatched_only"`
	}
	// Body is optional; the default matches every extracted resume.
	_ = c.ShouldBindJSON(&req)

	result, err := mc.matches.MatchAllResumes(c.Request.Context(), jobID, req.UnmatchedOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListJobMatches serves the per-job ranking.
func (mc *MatchController) ListJobMatches(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	mc.listMatches(c, jobID)
}

// ListMatches serves the cross-job listing with the same filters.
func (mc *MatchController) ListMatches(c *gin.Context) {
	mc.listMatches(c, queryUint(c, "job_description_id"))
}

func (mc *MatchController) listMatches(c *gin.Context, jobID uint) {
	status := c.Query("status")
	minScore, _ := strconv.ParseFloat(c.Query("min_score"), 64)

	matches, err := mc.matches.ListMatches(jobID, status, minScore)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

func (mc *MatchController) UpdateMatchStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: missing required fields"})
		return
	}
	match, err := mc.matches.UpdateMatchStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}
