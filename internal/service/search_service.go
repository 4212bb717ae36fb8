package service

import (
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const grievanceIndex = "grievances"

// SearchService mirrors grievances into Meilisearch and mints role-scoped
// tenant tokens so clients can query without widening their visibility.
type SearchService interface {
	IndexGrievance(grievance *model.Grievance) error
	DeleteGrievance(id string) error
	GenerateSearchToken(role model.Role, email string) (string, error)
}

type searchService struct {
	client        meilisearch.ServiceManager
	masterKey     string
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager, masterKey string) SearchService {
	if masterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}

	s := &searchService{
		client:    client,
		masterKey: masterKey,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	s.initSigningKey()
	return s
}

func (s *searchService) initIndex() {
	filterableAttrs := []string{"category", "status", "submitter_email", "department"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index(grievanceIndex).UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update grievances filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at"}
	_, err = s.client.Index(grievanceIndex).UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update grievances sortable attributes: %v", err)
	}

	log.Println("Meilisearch index initialized")
}

func (s *searchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "TenantTokenSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	expiry := time.Now().AddDate(100, 0, 0)

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign tenant tokens",
		Name:        "TenantTokenSigner",
		Actions:     []string{"search"},
		Indexes:     []string{grievanceIndex},
		ExpiresAt:   expiry,
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

type meiliGrievanceDoc struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	Status         string `json:"status"`
	SubmitterEmail string `json:"submitter_email"`
	Department     string `json:"department,omitempty"`
	CreatedAt      int64  `json:"created_at"`
}

func (s *searchService) cleanContentForIndex(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexGrievance(grievance *model.Grievance) error {
	doc := meiliGrievanceDoc{
		ID:             grievance.ID.String(),
		Title:          s.cleanContentForIndex(grievance.Title),
		Description:    s.cleanContentForIndex(grievance.Description),
		Category:       string(grievance.Category),
		Status:         string(grievance.Status),
		SubmitterEmail: grievance.SubmitterEmail,
		CreatedAt:      grievance.CreatedAt.Unix(),
	}
	if grievance.Department != nil {
		doc.Department = strings.ToLower(*grievance.Department)
	}

	task, err := s.client.Index(grievanceIndex).AddDocuments([]meiliGrievanceDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed grievance %s, task id: %d", grievance.ID, task.TaskUID)
	return nil
}

func (s *searchService) DeleteGrievance(id string) error {
	_, err := s.client.Index(grievanceIndex).DeleteDocument(id)
	return err
}

// GenerateSearchToken mints a tenant token whose filter matches the viewer's
// dashboard scope: students see their own records, wardens the hostel subset,
// every other staff role the full set.
func (s *searchService) GenerateSearchToken(role model.Role, email string) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	var filterRules string
	switch role {
	case model.RoleAdmin, model.RoleFaculty, model.RoleHod:
		filterRules = "" // No filter
	case model.RoleWarden:
		filterRules = "category = 'Hostel' OR department = 'hostel'"
	default:
		filterRules = fmt.Sprintf("submitter_email = %q", email)
	}

	searchRules := map[string]any{}
	if filterRules != "" {
		searchRules[grievanceIndex] = map[string]any{"filter": filterRules}
	} else {
		searchRules[grievanceIndex] = map[string]any{"filter": nil}
	}

	token, err := s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func strPtr(s string) *string {
	return &s
}
