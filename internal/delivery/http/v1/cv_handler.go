package v1

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"go-jobmatch-backend/internal/delivery/http/response"
	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/apperror"
)

type CVHandler struct {
	cvUC     domain.CVUsecase
	maxBytes int64
}

func NewCVHandler(protected *gin.RouterGroup, cvUC domain.CVUsecase, maxBytes int64, uploadLimit gin.HandlerFunc) {
	handler := &CVHandler{cvUC: cvUC, maxBytes: maxBytes}

	cv := protected.Group("/cv")
	{
		cv.POST("/upload", uploadLimit, handler.Upload)
		cv.GET("", handler.Get)
		cv.GET("/url", handler.URL)
		cv.DELETE("", handler.Delete)
	}
}

// uploadMeta is validated before the file is read
type uploadMeta struct {
	FileName string `validate:"required,pdf_filename"`
	Size     int64  `validate:"gt=0"`
}

// UploadCV godoc
// @Summary      Upload and analyse a CV
// @Description  Multipart field "file", PDF only. Stores the file and its analysis.
// @Tags         cv
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CV (PDF)"
// @Success      201   {object}  response.Response{data=domain.CVSummary}
// @Failure      400   {object}  response.Response
// @Failure      413   {object}  response.Response
// @Failure      502   {object}  response.Response
// @Router       /cv/upload [post]
// @Security     BearerAuth
func (h *CVHandler) Upload(c *gin.Context) {
	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("No file provided"))
		return
	}
	if fh.Size > h.maxBytes {
		c.Error(apperror.TooLarge(fmt.Sprintf("File size too large. Maximum size is %dMB", h.maxBytes>>20)))
		return
	}

	meta := uploadMeta{FileName: filepath.Base(fh.Filename), Size: fh.Size}
	if err := validate.Struct(meta); err != nil {
		c.Error(apperror.BadRequest("Only PDF files are supported"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Could not read uploaded file"))
		return
	}
	defer f.Close()

	summary, err := h.cvUC.UploadCV(c.Request.Context(), c.GetString(string(domain.KeyUserID)), domain.CVUpload{
		FileName:    meta.FileName,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "CV analyzed and saved successfully", summary)
}

// GetCV godoc
// @Summary      Current CV analysis
// @Tags         cv
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.CVAnalysis}
// @Failure      404  {object}  response.Response
// @Router       /cv [get]
// @Security     BearerAuth
func (h *CVHandler) Get(c *gin.Context) {
	a, err := h.cvUC.GetCurrentCV(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV analysis", a)
}

// GetCVURL godoc
// @Summary      Presigned download URL for the current CV
// @Tags         cv
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /cv/url [get]
// @Security     BearerAuth
func (h *CVHandler) URL(c *gin.Context) {
	url, err := h.cvUC.GetCVURL(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV url", gin.H{"url": url})
}

// DeleteCV godoc
// @Summary      Delete the CV and reset match results
// @Tags         cv
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /cv [delete]
// @Security     BearerAuth
func (h *CVHandler) Delete(c *gin.Context) {
	if err := h.cvUC.DeleteCV(c.Request.Context(), c.GetString(string(domain.KeyUserID))); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV deleted", nil)
}
