package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/dto"
	"github.com/Mathumitha-create/grievance-cell/internal/middleware"
	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/Mathumitha-create/grievance-cell/internal/service"
	"github.com/Mathumitha-create/grievance-cell/pkg/apperror"
	"github.com/Mathumitha-create/grievance-cell/pkg/response"
	"github.com/Mathumitha-create/grievance-cell/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GrievanceHandler struct {
	service service.GrievanceService
}

func NewGrievanceHandler(service service.GrievanceService) *GrievanceHandler {
	return &GrievanceHandler{service: service}
}

func (h *GrievanceHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	var req dto.CreateGrievanceRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	input := service.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    model.Category(req.Category),
		Department:  req.Department,
	}

	var attachment *service.AttachmentFile
	if fileHeader, err := c.FormFile("attachment"); err == nil && fileHeader != nil {
		// Size is validated again in the service before any storage
		// write; this early check avoids reading an oversized body.
		if fileHeader.Size > model.MaxAttachmentSize {
			response.ResponseError(c, apperror.New(http.StatusBadRequest,
				"attachment exceeds the 500KB limit", apperror.ErrInvalidInput))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			response.ResponseError(c, fmt.Errorf("failed to open attachment: %w", err))
			return
		}
		defer file.Close()

		attachment = &service.AttachmentFile{
			Reader:      file,
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
		}
	}

	grievance, err := h.service.Submit(c.Request.Context(), user, input, attachment)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dto.NewGrievanceResponse(*grievance, 8)})
}

func (h *GrievanceHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := service.Filter{
		Search:   query.Search,
		Category: model.Category(query.Category),
		Status:   model.Status(query.Status),
	}

	records, err := h.service.List(c.Request.Context(), user, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.NewGrievanceList(records)})
}

func (h *GrievanceHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grievance id"})
		return
	}

	grievance, err := h.service.Get(c.Request.Context(), user, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.NewGrievanceResponse(*grievance, 8)})
}

func (h *GrievanceHandler) UpdateStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grievance id"})
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	input := service.StatusInput{
		Status:         model.Status(req.Status),
		ResolutionNote: req.ResolutionNote,
	}

	grievance, err := h.service.UpdateStatus(c.Request.Context(), user, id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.NewGrievanceResponse(*grievance, 8)})
}

func (h *GrievanceHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grievance id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), user, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "grievance deleted successfully"})
}

// Export streams the full record set as CSV. Admin only (enforced by the
// route group).
func (h *GrievanceHandler) Export(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	records, err := h.service.List(c.Request.Context(), user, service.Filter{})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileName := fmt.Sprintf("grievances_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := service.WriteCSV(c.Writer, records); err != nil {
		response.ResponseError(c, err)
		return
	}
}

// Meta lists the closed category and status sets so clients never hardcode
// them.
func (h *GrievanceHandler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": model.Categories,
		"statuses":   model.Statuses,
	})
}

// Classify suggests a category for a draft submission. Advisory only; the
// submitter may pick another category.
func (h *GrievanceHandler) Classify(c *gin.Context) {
	var req dto.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := dto.ClassifyResponse{}
	if category, ok := service.SuggestCategory(req.Title, req.Description); ok {
		resp.Suggestion = &category
	}

	c.JSON(http.StatusOK, resp)
}
