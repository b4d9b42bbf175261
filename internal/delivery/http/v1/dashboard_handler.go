package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-jobmatch-backend/internal/delivery/http/response"
	"go-jobmatch-backend/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	dashboardUC domain.DashboardUsecase
}

func NewDashboardHandler(protected *gin.RouterGroup, dashboardUC domain.DashboardUsecase) {
	handler := &DashboardHandler{dashboardUC: dashboardUC}

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("/stats", handler.Stats)
		dashboard.GET("/top-matches", handler.TopMatches)
		dashboard.GET("/newest-jobs", handler.NewestJobs)
		dashboard.GET("/distribution", handler.Distribution)
	}
	protected.GET("/matches/export", handler.Export)
}

// DashboardStats godoc
// @Summary      Match statistics
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.MatchStats}
// @Router       /dashboard/stats [get]
// @Security     BearerAuth
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardUC.GetStats(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard stats", stats)
}

// TopMatches godoc
// @Summary      Best five matches
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.MatchWithJob}
// @Router       /dashboard/top-matches [get]
// @Security     BearerAuth
func (h *DashboardHandler) TopMatches(c *gin.Context) {
	matches, err := h.dashboardUC.GetTopMatches(c.Request.Context(), c.GetString(string(domain.KeyUserID)), 5)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Top matches", matches)
}

// NewestJobs godoc
// @Summary      Five most recently posted jobs
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.JobWithSimilarity}
// @Router       /dashboard/newest-jobs [get]
// @Security     BearerAuth
func (h *DashboardHandler) NewestJobs(c *gin.Context) {
	jobs, err := h.dashboardUC.GetNewestJobs(c.Request.Context(), 5)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Newest jobs", jobs)
}

// Distribution godoc
// @Summary      Match quality distribution
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.DistributionBucket}
// @Router       /dashboard/distribution [get]
// @Security     BearerAuth
func (h *DashboardHandler) Distribution(c *gin.Context) {
	buckets, err := h.dashboardUC.GetDistribution(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Match distribution", buckets)
}

// ExportMatches godoc
// @Summary      Export matches as XLSX
// @Tags         dashboard
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /matches/export [get]
// @Security     BearerAuth
func (h *DashboardHandler) Export(c *gin.Context) {
	data, err := h.dashboardUC.ExportMatches(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	filename := fmt.Sprintf("job_matches_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
