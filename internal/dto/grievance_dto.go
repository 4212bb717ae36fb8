package dto

import (
	"github.com/Mathumitha-create/grievance-cell/internal/model"
)

type CreateGrievanceRequest struct {
	Title       string  `form:"title" binding:"required"`
	Description string  `form:"description" binding:"required"`
	Category    string  `form:"category" binding:"required"`
	Department  *string `form:"department"`
}

type UpdateStatusRequest struct {
	Status         string  `json:"status" binding:"required"`
	ResolutionNote *string `json:"resolution_note"`
}

type ListQuery struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Status   string `form:"status"`
}

type ClassifyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ClassifyResponse struct {
	Suggestion *model.Category `json:"suggestion"`
}

type GrievanceResponse struct {
	model.Grievance
	DisplayID string `json:"display_id"`
}

// NewGrievanceResponse attaches the GR-prefixed short reference. n is the id
// prefix length: 4 in list views, 8 in detail views.
func NewGrievanceResponse(g model.Grievance, n int) GrievanceResponse {
	return GrievanceResponse{Grievance: g, DisplayID: g.DisplayID(n)}
}

func NewGrievanceList(records []model.Grievance) []GrievanceResponse {
	out := make([]GrievanceResponse, 0, len(records))
	for _, g := range records {
		out = append(out, NewGrievanceResponse(g, 4))
	}
	return out
}
