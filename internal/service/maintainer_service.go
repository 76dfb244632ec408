package service

import (
	"database/sql"
	"errors"
	"strings"

	"civicreport/internal/apperr"
	"civicreport/internal/auth"
	"civicreport/internal/models"
	"civicreport/internal/repository"
)

// MaintainerInput is the administrator-facing payload for creating or
// updating a maintainer.
type MaintainerInput struct {
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Password   string              `json:"password,omitempty"`
	Categories []models.OfficeType `json:"categories"`
	Active     bool                `json:"active"`
}

// MaintainerService handles the administrator-managed maintainer directory.
type MaintainerService struct {
	maintainers *repository.MaintainerRepository
	reports     *repository.ReportRepository
	authService *auth.Service
}

func NewMaintainerService(maintainers *repository.MaintainerRepository, reports *repository.ReportRepository, authService *auth.Service) *MaintainerService {
	return &MaintainerService{maintainers: maintainers, reports: reports, authService: authService}
}

func validateCategories(categories []models.OfficeType) error {
	if len(categories) == 0 {
		return apperr.Validationf("a maintainer needs at least one category")
	}
	seen := map[models.OfficeType]struct{}{}
	for _, c := range categories {
		if !c.Valid() {
			return apperr.Validationf("unknown category %q", c)
		}
		if _, dup := seen[c]; dup {
			return apperr.Validationf("duplicate category %s", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// Create adds a maintainer to the directory.
func (s *MaintainerService) Create(input MaintainerInput) (*models.Maintainer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Name == "" || input.Email == "" {
		return nil, apperr.Validationf("name and email are required")
	}
	if input.Password == "" {
		return nil, apperr.Validationf("password is required")
	}
	if err := validateCategories(input.Categories); err != nil {
		return nil, err
	}

	existing, err := s.maintainers.GetByEmail(input.Email)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to check email")
	}
	if existing != nil {
		return nil, apperr.Conflictf("a maintainer with email %s already exists", input.Email)
	}

	hash, err := s.authService.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to hash password")
	}

	maintainer := &models.Maintainer{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Categories:   input.Categories,
		Active:       input.Active,
	}
	if err := s.maintainers.Create(maintainer); err != nil {
		return nil, apperr.Infrastructure(err, "failed to create maintainer")
	}
	return maintainer, nil
}

// Get returns one maintainer.
func (s *MaintainerService) Get(id uint) (*models.Maintainer, error) {
	maintainer, err := s.maintainers.GetByID(id)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load maintainer")
	}
	if maintainer == nil {
		return nil, apperr.NotFoundf("maintainer %d not found", id)
	}
	return maintainer, nil
}

// List returns the full maintainer directory.
func (s *MaintainerService) List() ([]models.Maintainer, error) {
	maintainers, err := s.maintainers.List()
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list maintainers")
	}
	return maintainers, nil
}

// ListCandidates returns the active maintainers eligible for binding to a
// report of the given category.
func (s *MaintainerService) ListCandidates(category models.OfficeType) ([]models.Maintainer, error) {
	if !category.Valid() {
		return nil, apperr.Validationf("unknown category %q", category)
	}
	maintainers, err := s.maintainers.ListActiveByCategory(category)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list maintainers")
	}
	return maintainers, nil
}

// Update replaces a maintainer's profile, categories and active flag.
// Deactivating a maintainer unbinds it from its live reports; reports that
// already had a maintainer fall back to awaiting one.
func (s *MaintainerService) Update(id uint, input MaintainerInput) (*models.Maintainer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Name == "" || input.Email == "" {
		return nil, apperr.Validationf("name and email are required")
	}
	if err := validateCategories(input.Categories); err != nil {
		return nil, err
	}

	maintainer := &models.Maintainer{
		ID:         id,
		Name:       input.Name,
		Email:      input.Email,
		Categories: input.Categories,
		Active:     input.Active,
	}
	err := s.maintainers.Update(maintainer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("maintainer %d not found", id)
	}
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to update maintainer")
	}

	if !input.Active {
		if err := s.reports.ResetAssignmentsByMaintainer(id); err != nil {
			return nil, apperr.Infrastructure(err, "failed to release assigned reports")
		}
	}
	return s.Get(id)
}

// Delete removes a maintainer, unbinding it from its live reports first.
func (s *MaintainerService) Delete(id uint) error {
	if err := s.reports.ResetAssignmentsByMaintainer(id); err != nil {
		return apperr.Infrastructure(err, "failed to release assigned reports")
	}
	err := s.maintainers.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("maintainer %d not found", id)
	}
	if err != nil {
		return apperr.Infrastructure(err, "failed to delete maintainer")
	}
	return nil
}
