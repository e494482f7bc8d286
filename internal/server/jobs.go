package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	jobdomain "github.com/smallbiznis/servisdesk/internal/job/domain"
)

func (s *Server) ListJobs(c *gin.Context) {
	filter := jobdomain.ListFilter{
		Status:         jobdomain.JobStatus(c.Query("status")),
		ActiveOnly:     c.Query("active") == "true",
		NumberContains: c.Query("q"),
		Limit:          queryLimit(c),
	}

	jobs, err := s.jobSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs})
}

func (s *Server) CreateJob(c *gin.Context) {
	var req jobdomain.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	job, err := s.jobSvc.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (s *Server) GetJobByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	job, err := s.jobSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) TransitionJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var body struct {
		Status jobdomain.JobStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	job, err := s.jobSvc.Transition(c.Request.Context(), id, body.Status, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) AssignJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var body struct {
		AssignedUserID *string `json:"assigned_user_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	job, err := s.jobSvc.Assign(c.Request.Context(), id, body.AssignedUserID, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) ReplaceJobTasks(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var body struct {
		Tasks []jobdomain.TaskInput `json:"tasks"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	job, err := s.jobSvc.UpdateTasks(c.Request.Context(), id, body.Tasks, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) ToggleJobTask(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	taskID, err := pathID(c, "taskId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	job, err := s.jobSvc.ToggleTask(c.Request.Context(), id, taskID, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) UpdateJobNotes(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var patch jobdomain.NotesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	job, err := s.jobSvc.UpdateNotes(c.Request.Context(), id, patch, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) UpdateJobCosts(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var patch jobdomain.CostsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	job, err := s.jobSvc.UpdateCosts(c.Request.Context(), id, patch, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}
