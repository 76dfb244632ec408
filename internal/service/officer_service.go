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

// OfficerInput is the administrator-facing payload for creating or updating
// an officer.
type OfficerInput struct {
	Name      string                   `json:"name"`
	Surname   string                   `json:"surname"`
	Email     string                   `json:"email"`
	Password  string                   `json:"password,omitempty"`
	Positions []models.OfficerPosition `json:"positions"`
}

// OfficerService handles the administrator-managed officer directory.
type OfficerService struct {
	officers    *repository.OfficerRepository
	reports     *repository.ReportRepository
	authService *auth.Service
}

func NewOfficerService(officers *repository.OfficerRepository, reports *repository.ReportRepository, authService *auth.Service) *OfficerService {
	return &OfficerService{officers: officers, reports: reports, authService: authService}
}

func validatePositions(positions []models.OfficerPosition) error {
	if len(positions) == 0 {
		return apperr.Validationf("an officer needs at least one position")
	}
	seen := map[models.OfficerPosition]struct{}{}
	for _, p := range positions {
		if !p.Office.Valid() {
			return apperr.Validationf("unknown office %q", p.Office)
		}
		if !p.Role.Valid() {
			return apperr.Validationf("unknown role %q", p.Role)
		}
		if _, dup := seen[p]; dup {
			return apperr.Validationf("duplicate position %s/%s", p.Office, p.Role)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Create adds an officer to the directory.
func (s *OfficerService) Create(input OfficerInput) (*models.Officer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Surname = strings.TrimSpace(input.Surname)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Name == "" || input.Surname == "" || input.Email == "" {
		return nil, apperr.Validationf("name, surname and email are required")
	}
	if input.Password == "" {
		return nil, apperr.Validationf("password is required")
	}
	if err := validatePositions(input.Positions); err != nil {
		return nil, err
	}

	existing, err := s.officers.GetByEmail(input.Email)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to check email")
	}
	if existing != nil {
		return nil, apperr.Conflictf("an officer with email %s already exists", input.Email)
	}

	hash, err := s.authService.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to hash password")
	}

	officer := &models.Officer{
		Name:         input.Name,
		Surname:      input.Surname,
		Email:        input.Email,
		PasswordHash: hash,
		Positions:    input.Positions,
	}
	if err := s.officers.Create(officer); err != nil {
		return nil, apperr.Infrastructure(err, "failed to create officer")
	}
	return officer, nil
}

// Get returns one officer.
func (s *OfficerService) Get(id uint) (*models.Officer, error) {
	officer, err := s.officers.GetByID(id)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load officer")
	}
	if officer == nil {
		return nil, apperr.NotFoundf("officer %d not found", id)
	}
	return officer, nil
}

// List returns the full officer directory.
func (s *OfficerService) List() ([]models.Officer, error) {
	officers, err := s.officers.List()
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list officers")
	}
	return officers, nil
}

// ListTechnicalStaff returns the officers eligible for assignment within an
// office, for the review screen.
func (s *OfficerService) ListTechnicalStaff(office models.OfficeType) ([]models.Officer, error) {
	if !office.Valid() {
		return nil, apperr.Validationf("unknown office %q", office)
	}
	officers, err := s.officers.ListByPosition(office, models.RoleTechnicalStaff)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list officers")
	}
	return officers, nil
}

// Update replaces an officer's profile and position set. Reports the officer
// can no longer service because a position was removed go back to PENDING
// for re-review.
func (s *OfficerService) Update(id uint, input OfficerInput) (*models.Officer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Surname = strings.TrimSpace(input.Surname)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Name == "" || input.Surname == "" || input.Email == "" {
		return nil, apperr.Validationf("name, surname and email are required")
	}
	if err := validatePositions(input.Positions); err != nil {
		return nil, err
	}

	officer := &models.Officer{
		ID:        id,
		Name:      input.Name,
		Surname:   input.Surname,
		Email:     input.Email,
		Positions: input.Positions,
	}
	err := s.officers.Update(officer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("officer %d not found", id)
	}
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to update officer")
	}

	updated, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.releaseUncoveredReports(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// releaseUncoveredReports returns live reports to PENDING when the officer's
// new position set no longer carries technical staff for their office.
func (s *OfficerService) releaseUncoveredReports(officer *models.Officer) error {
	assigned, err := s.reports.ListByAssignedOfficer(officer.ID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to list assigned reports")
	}
	for i := range assigned {
		report := &assigned[i]
		if report.State.Terminal() || officer.HasPosition(report.Category, models.RoleTechnicalStaff) {
			continue
		}
		if err := s.reports.ResetAssignment(report.ID); err != nil {
			return apperr.Infrastructure(err, "failed to release report")
		}
	}
	return nil
}

// Delete removes an officer. Live reports bound to the officer go back to
// PENDING so review can route them to someone else; terminal reports keep
// their history.
func (s *OfficerService) Delete(id uint) error {
	if err := s.reports.ResetAssignmentsByOfficer(id); err != nil {
		return apperr.Infrastructure(err, "failed to release assigned reports")
	}
	err := s.officers.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("officer %d not found", id)
	}
	if err != nil {
		return apperr.Infrastructure(err, "failed to delete officer")
	}
	return nil
}
