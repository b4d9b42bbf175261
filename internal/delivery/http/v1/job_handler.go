package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-jobmatch-backend/internal/delivery/http/response"
	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/apperror"
)

type JobHandler struct {
	jobUC   domain.JobUsecase
	matchUC domain.MatchUsecase
}

func NewJobHandler(protected *gin.RouterGroup, jobUC domain.JobUsecase, matchUC domain.MatchUsecase, matchLimit gin.HandlerFunc) {
	handler := &JobHandler{jobUC: jobUC, matchUC: matchUC}

	jobs := protected.Group("/jobs")
	{
		jobs.GET("", handler.List)
		jobs.GET("/:id", handler.GetDetails)
		jobs.POST("/match", matchLimit, handler.Match)
	}
}

// JobListQuery holds the job board filters
type JobListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=15"`
	Location  string `form:"location" binding:"omitempty,max=100,no_emoji"`
	Search    string `form:"search" binding:"omitempty,max=100,no_emoji"`
	MinSalary int64  `form:"min_salary" binding:"omitempty,min=0"`
	MaxSalary int64  `form:"max_salary" binding:"omitempty,min=0"`
}

// ListJobs godoc
// @Summary      List jobs with match scores
// @Description  Paginated active jobs joined with the caller's similarity, best matches first
// @Tags         jobs
// @Produce      json
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size (max 15)"
// @Param        location    query     string  false  "Location contains"
// @Param        search      query     string  false  "Title or description contains"
// @Param        min_salary  query     int     false  "Minimum salary"
// @Param        max_salary  query     int     false  "Maximum salary"
// @Success      200  {object}  response.Response{data=domain.JobPage}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /jobs [get]
// @Security     BearerAuth
func (h *JobHandler) List(c *gin.Context) {
	var q JobListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(bindError(err))
		return
	}

	userID := c.GetString(string(domain.KeyUserID))
	filter := domain.JobFilter{
		Location:   q.Location,
		SearchTerm: q.Search,
		MinSalary:  q.MinSalary,
		MaxSalary:  q.MaxSalary,
	}

	page, err := h.jobUC.ListJobs(c.Request.Context(), userID, filter, q.Page, q.Limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Jobs", page)
}

// GetJobDetails godoc
// @Summary      Get job details
// @Description  One job with its company and the caller's similarity
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.JobWithSimilarity}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
// @Security     BearerAuth
func (h *JobHandler) GetDetails(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.Error(apperror.BadRequest("Invalid job ID"))
		return
	}

	job, err := h.jobUC.GetJobDetails(c.Request.Context(), id, c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job details", job)
}

// MatchJobs godoc
// @Summary      Score the caller's CV against all jobs
// @Description  Runs once per user; later calls return cached: true without recomputing
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.MatchOutcome}
// @Failure      404  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /jobs/match [post]
// @Security     BearerAuth
func (h *JobHandler) Match(c *gin.Context) {
	out, err := h.matchUC.MatchJobs(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, out.Message, out)
}
