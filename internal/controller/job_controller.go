package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hirewise-backend/internal/model"
	"hirewise-backend/internal/repository"
)

type JobController struct {
	jobRepo repository.JobRepository
}

func NewJobController(jobRepo repository.JobRepository) *JobController {
	return &JobController{jobRepo: jobRepo}
}

func (jc *JobController) CreateJobDescription(c *gin.Context) {
	var jd model.JobDescription
	if err := c.ShouldBindJSON(&jd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if jd.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if err := jc.jobRepo.CreateJobDescription(&jd); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, jd)
}

func (jc *JobController) GetJobDescription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	jd, err := jc.jobRepo.GetJobDescriptionByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jd)
}

func (jc *JobController) ListJobDescriptions(c *gin.Context) {
	jds, err := jc.jobRepo.ListJobDescriptions()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jds)
}

func (jc *JobController) UpdateJobDescription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	jd, err := jc.jobRepo.GetJobDescriptionByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := c.ShouldBindJSON(jd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	jd.ID = id
	if err := jc.jobRepo.UpdateJobDescription(jd); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jd)
}

func (jc *JobController) DeleteJobDescription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := jc.jobRepo.DeleteJobDescription(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job description deleted"})
}
