package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/live"
	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/Mathumitha-create/grievance-cell/internal/repository"
	"github.com/Mathumitha-create/grievance-cell/pkg/apperror"
	"github.com/Mathumitha-create/grievance-cell/pkg/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type SubmitInput struct {
	Title       string
	Description string
	Category    model.Category
	Department  *string
}

// AttachmentFile represents an uploaded attachment before storage.
type AttachmentFile struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
}

type StatusInput struct {
	Status         model.Status
	ResolutionNote *string
}

// GrievanceService owns the grievance lifecycle: creation by students, status
// transitions by staff, deletion by admins, and role-scoped reads. Every
// mutation is fanned out to live subscribers through the relay.
type GrievanceService interface {
	Submit(ctx context.Context, submitter *model.User, input SubmitInput, attachment *AttachmentFile) (*model.Grievance, error)
	UpdateStatus(ctx context.Context, actor *model.User, id uuid.UUID, input StatusInput) (*model.Grievance, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
	Get(ctx context.Context, viewer *model.User, id uuid.UUID) (*model.Grievance, error)
	List(ctx context.Context, viewer *model.User, filter Filter) ([]model.Grievance, error)
}

type grievanceService struct {
	repo         repository.GrievanceRepository
	blobStorage  storage.BlobStorage
	search       SearchService
	relay        *live.Relay
	redisClient  *redis.Client
	submitRate   time.Duration
	uploadFolder string
}

func NewGrievanceService(
	repo repository.GrievanceRepository,
	blobStorage storage.BlobStorage,
	search SearchService,
	relay *live.Relay,
	redisClient *redis.Client,
	submitRate time.Duration,
	uploadFolder string,
) GrievanceService {
	return &grievanceService{
		repo:         repo,
		blobStorage:  blobStorage,
		search:       search,
		relay:        relay,
		redisClient:  redisClient,
		submitRate:   submitRate,
		uploadFolder: uploadFolder,
	}
}

func (s *grievanceService) Submit(ctx context.Context, submitter *model.User, input SubmitInput, attachment *AttachmentFile) (*model.Grievance, error) {
	if submitter.Role != model.RoleStudent {
		return nil, apperror.New(http.StatusForbidden, "only students may file grievances", apperror.ErrForbidden)
	}

	// Local validation: nothing below may reach the store or the blob
	// storage when it fails.
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperror.New(http.StatusBadRequest, "title and description are required", apperror.ErrInvalidInput)
	}
	if !input.Category.Valid() {
		return nil, apperror.New(http.StatusBadRequest, "category must be one of the known categories", apperror.ErrInvalidInput)
	}
	if attachment != nil && attachment.Size > model.MaxAttachmentSize {
		return nil, apperror.New(http.StatusBadRequest, "attachment exceeds the 500KB limit", apperror.ErrInvalidInput)
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, submitter.ID, submitAction, s.submitRate)
	if err != nil {
		log.Printf("rate limit check failed, allowing submission: %v", err)
	} else if !allowed {
		ttl, _ := GetRateLimitTTL(ctx, s.redisClient, submitter.ID, submitAction)
		return nil, apperror.New(http.StatusTooManyRequests, rateLimitMessage(s.submitRate, ttl), apperror.ErrRateLimitExceeded)
	}

	grievance := &model.Grievance{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Category:       input.Category,
		Status:         model.StatusPending,
		SubmitterID:    submitter.ID,
		SubmitterEmail: submitter.Email,
		Department:     normalizeOptional(input.Department),
	}

	if attachment != nil && attachment.Reader != nil {
		if s.blobStorage == nil {
			return nil, apperror.New(http.StatusServiceUnavailable, "attachment storage is not configured", apperror.ErrInternal)
		}
		url, err := s.blobStorage.Upload(ctx, attachment.Reader, s.uploadFolder, attachment.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		size := attachment.Size
		grievance.AttachmentURL = &url
		grievance.AttachmentName = &attachment.FileName
		grievance.AttachmentType = &attachment.ContentType
		grievance.AttachmentSize = &size
	}

	if err := s.repo.Create(ctx, grievance); err != nil {
		return nil, fmt.Errorf("failed to create grievance: %w", err)
	}

	s.index(grievance)
	s.publish(ctx, live.EventCreated, grievance)

	return grievance, nil
}

func (s *grievanceService) UpdateStatus(ctx context.Context, actor *model.User, id uuid.UUID, input StatusInput) (*model.Grievance, error) {
	if !actor.Role.IsStaff() {
		return nil, apperror.New(http.StatusForbidden, "students may not change grievance status", apperror.ErrForbidden)
	}
	if !input.Status.Valid() {
		return nil, apperror.New(http.StatusBadRequest, "unknown status", apperror.ErrInvalidInput)
	}

	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	update := repository.StatusUpdate{
		Status:         input.Status,
		ResolvedBy:     actor.Email,
		ResolutionNote: normalizeOptional(input.ResolutionNote),
	}
	if err := s.repo.UpdateStatus(ctx, id, update); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.index(updated)
	s.publish(ctx, live.EventUpdated, updated)

	return updated, nil
}

func (s *grievanceService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if actor.Role != model.RoleAdmin {
		return apperror.New(http.StatusForbidden, "only admins may delete grievances", apperror.ErrForbidden)
	}

	grievance, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	// Irreversible: subscribers observe a removal, not a status value.
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("failed to delete grievance: %w", err)
	}

	if s.search != nil {
		if err := s.search.DeleteGrievance(id.String()); err != nil {
			log.Printf("failed to remove grievance %s from search index: %v", id, err)
		}
	}
	if grievance.AttachmentURL != nil && s.blobStorage != nil {
		if err := s.blobStorage.Delete(ctx, *grievance.AttachmentURL); err != nil {
			log.Printf("failed to delete attachment for grievance %s: %v", id, err)
		}
	}

	s.publish(ctx, live.EventDeleted, grievance)

	return nil
}

func (s *grievanceService) Get(ctx context.Context, viewer *model.User, id uuid.UUID) (*model.Grievance, error) {
	grievance, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	scope := live.ScopeForRole(viewer.Role, viewer.Email)
	if !scope(*grievance) {
		return nil, apperror.ErrNotFound
	}

	return grievance, nil
}

// List returns the viewer's scoped record set, narrowed by the filter and
// sorted newest first. The warden subset is a re-filter over the full set:
// there is no store-level hostel query.
func (s *grievanceService) List(ctx context.Context, viewer *model.User, filter Filter) ([]model.Grievance, error) {
	var records []model.Grievance
	var err error

	switch viewer.Role {
	case model.RoleStudent:
		records, err = s.repo.FindBySubmitter(ctx, viewer.Email)
	default:
		records, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load grievances: %w", err)
	}

	if viewer.Role == model.RoleWarden {
		hostel := records[:0]
		for _, g := range records {
			if live.ScopeHostel(g) {
				hostel = append(hostel, g)
			}
		}
		records = hostel
	}

	return SortByNewest(ApplyFilter(records, filter)), nil
}

func (s *grievanceService) find(ctx context.Context, id uuid.UUID) (*model.Grievance, error) {
	grievance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load grievance: %w", err)
	}
	return grievance, nil
}

func (s *grievanceService) index(grievance *model.Grievance) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexGrievance(grievance); err != nil {
		log.Printf("failed to index grievance %s: %v", grievance.ID, err)
	}
}

func (s *grievanceService) publish(ctx context.Context, eventType live.EventType, grievance *model.Grievance) {
	if s.relay == nil {
		return
	}
	s.relay.Publish(ctx, live.Event{Type: eventType, Record: *grievance})
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
