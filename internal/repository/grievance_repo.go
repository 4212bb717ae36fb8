package repository

import (
	"context"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusUpdate carries the fields written by a staff status change.
type StatusUpdate struct {
	Status         model.Status
	ResolvedBy     string
	ResolutionNote *string
}

type GrievanceRepository interface {
	Create(ctx context.Context, grievance *model.Grievance) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Grievance, error)
	FindAll(ctx context.Context) ([]model.Grievance, error)
	FindBySubmitter(ctx context.Context, email string) ([]model.Grievance, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type grievanceRepository struct {
	db *gorm.DB
}

func NewGrievanceRepository(db *gorm.DB) GrievanceRepository {
	return &grievanceRepository{db: db}
}

func (r *grievanceRepository) Create(ctx context.Context, grievance *model.Grievance) error {
	return r.db.WithContext(ctx).Create(grievance).Error
}

func (r *grievanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Grievance, error) {
	var grievance model.Grievance
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&grievance).Error; err != nil {
		return nil, err
	}

	return &grievance, nil
}

func (r *grievanceRepository) FindAll(ctx context.Context) ([]model.Grievance, error) {
	var grievances []model.Grievance
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&grievances).Error; err != nil {
		return nil, err
	}

	return grievances, nil
}

func (r *grievanceRepository) FindBySubmitter(ctx context.Context, email string) ([]model.Grievance, error) {
	var grievances []model.Grievance
	if err := r.db.WithContext(ctx).
		Where("submitter_email = ?", email).
		Order("created_at DESC").
		Find(&grievances).Error; err != nil {
		return nil, err
	}

	return grievances, nil
}

func (r *grievanceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error {
	fields := map[string]any{
		"status":      update.Status,
		"resolved_by": update.ResolvedBy,
		"updated_at":  time.Now(),
	}
	if update.ResolutionNote != nil {
		fields["resolution_note"] = *update.ResolutionNote
	}

	res := r.db.WithContext(ctx).
		Model(&model.Grievance{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *grievanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Grievance{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
