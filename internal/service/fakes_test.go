package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/Mathumitha-create/grievance-cell/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*model.User
	creates int
	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	copied := *user
	f.users[user.ID] = &copied
	f.creates++
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Role = role
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

// fakeGrievanceRepo is an in-memory repository.GrievanceRepository.
type fakeGrievanceRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.Grievance
	creates int
}

func newFakeGrievanceRepo() *fakeGrievanceRepo {
	return &fakeGrievanceRepo{records: make(map[uuid.UUID]*model.Grievance)}
}

func (f *fakeGrievanceRepo) Create(ctx context.Context, grievance *model.Grievance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if grievance.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		grievance.ID = id
	}
	now := time.Now()
	if grievance.CreatedAt.IsZero() {
		grievance.CreatedAt = now
	}
	if grievance.UpdatedAt.IsZero() {
		grievance.UpdatedAt = now
	}
	copied := *grievance
	f.records[grievance.ID] = &copied
	f.creates++
	return nil
}

func (f *fakeGrievanceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Grievance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeGrievanceRepo) FindAll(ctx context.Context) ([]model.Grievance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Grievance, 0, len(f.records))
	for _, record := range f.records {
		out = append(out, *record)
	}
	return out, nil
}

func (f *fakeGrievanceRepo) FindBySubmitter(ctx context.Context, email string) ([]model.Grievance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Grievance
	for _, record := range f.records {
		if record.SubmitterEmail == email {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (f *fakeGrievanceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, update repository.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.Status = update.Status
	record.ResolvedBy = &update.ResolvedBy
	record.ResolutionNote = update.ResolutionNote
	record.UpdatedAt = time.Now()
	return nil
}

func (f *fakeGrievanceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.records, id)
	return nil
}

// fakeBlobStorage records calls without talking to any backend.
type fakeBlobStorage struct {
	mu      sync.Mutex
	uploads int
	deletes int
	failNow error
}

func (f *fakeBlobStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNow != nil {
		return "", f.failNow
	}
	f.uploads++
	return "https://blobs.example/" + folder + "/" + fileName, nil
}

func (f *fakeBlobStorage) Delete(ctx context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

// fakeSearch records index operations.
type fakeSearch struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
}

func (f *fakeSearch) IndexGrievance(grievance *model.Grievance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, grievance.ID.String())
	return nil
}

func (f *fakeSearch) DeleteGrievance(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSearch) GenerateSearchToken(role model.Role, email string) (string, error) {
	return "token", nil
}
