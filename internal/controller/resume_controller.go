package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hirewise-backend/internal/model"
	"hirewise-backend/internal/repository"
)

type ResumeController struct {
	resumeRepo repository.ResumeRepository
}

func NewResumeController(resumeRepo repository.ResumeRepository) *ResumeController {
	return &ResumeController{resumeRepo: resumeRepo}
}

// CreateResume registers resume text that an upstream pipeline has already
// extracted from the original document.
func (rc *ResumeController) CreateResume(c *gin.Context) {
	var req struct {
		OriginalFilename string `json:"original_filename"`
		ExtractedText    string `json:"extracted_text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: missing required fields"})
		return
	}
	if strings.TrimSpace(req.ExtractedText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Extracted text cannot be blank"})
		return
	}
	resume := model.Resume{
		OriginalFilename: req.OriginalFilename,
		ExtractedText:    req.ExtractedText,
		Status:           "extracted",
	}
	if err := rc.resumeRepo.CreateResume(&resume); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resume)
}

func (rc *ResumeController) GetResume(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resume, err := rc.resumeRepo.GetResumeByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resume)
}

func (rc *ResumeController) ListResumes(c *gin.Context) {
	resumes, err := rc.resumeRepo.ListResumes()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resumes)
}
