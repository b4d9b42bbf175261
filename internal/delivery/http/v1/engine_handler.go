package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-jobmatch-backend/internal/delivery/http/response"
	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/apperror"
	"go-jobmatch-backend/pkg/logger"
)

// maxEngineBody caps the match-job request body
const maxEngineBody = 32 << 20

type EngineHandler struct {
	scoringUC domain.ScoringUsecase
}

// NewEngineHandler mounts POST /match-job on every given group
func NewEngineHandler(scoringUC domain.ScoringUsecase, groups ...*gin.RouterGroup) {
	handler := &EngineHandler{scoringUC: scoringUC}
	for _, g := range groups {
		g.POST("/match-job", handler.MatchJob)
	}
}

// MatchJob godoc
// @Summary      Score a CV against job descriptions
// @Description  Stateless scoring. Results keep input order with job_index = position + 1.
// @Tags         engine
// @Accept       json
// @Produce      json
// @Param        request  body      domain.MatchJobRequest  true  "CV analysis and job descriptions"
// @Success      200      {object}  domain.MatchJobResponse
// @Failure      400      {object}  response.DetailResponse
// @Failure      413      {object}  response.DetailResponse
// @Failure      500      {object}  response.DetailResponse
// @Router       /match-job [post]
func (h *EngineHandler) MatchJob(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxEngineBody)

	var req domain.MatchJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Detail(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		response.Detail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	results, err := h.scoringUC.Score(c.Request.Context(), req)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("match-job failed", "error", err, "jobs", len(req.JobDescriptions))
			}
			response.Detail(c, appErr.Code, appErr.Message)
			return
		}
		logger.Log.Error("match-job failed", "error", err)
		response.Detail(c, http.StatusInternalServerError, "Error processing job matching")
		return
	}

	c.JSON(http.StatusOK, domain.MatchJobResponse{Success: true, Results: results})
}
