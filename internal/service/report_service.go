package service

import (
	"log/slog"
	"strings"

	"civicreport/internal/apperr"
	"civicreport/internal/models"
	"civicreport/internal/repository"
)

// CreateReportInput is the citizen-facing creation payload.
type CreateReportInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    models.OfficeType `json:"category"`
	Anonymity   bool              `json:"anonymity"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Address     *string           `json:"address,omitempty"`
	Photos      []string          `json:"photos"`
}

// ReportService handles report creation, queries and follow subscriptions.
type ReportService struct {
	reports *repository.ReportRepository
	follows *repository.FollowRepository
}

func NewReportService(reports *repository.ReportRepository, follows *repository.FollowRepository) *ReportService {
	return &ReportService{reports: reports, follows: follows}
}

// Create stores a new report in PENDING state and subscribes the author to
// its notifications. Photos are references into external storage; between
// one and three are required.
func (s *ReportService) Create(authorID uint, input CreateReportInput) (*models.Report, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	if input.Title == "" {
		return nil, apperr.Validationf("title must not be empty")
	}
	if input.Description == "" {
		return nil, apperr.Validationf("description must not be empty")
	}
	if !input.Category.Valid() {
		return nil, apperr.Validationf("unknown category %q", input.Category)
	}
	if len(input.Photos) < 1 || len(input.Photos) > 3 {
		return nil, apperr.Validationf("a report requires between 1 and 3 photos, got %d", len(input.Photos))
	}
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		return nil, apperr.Validationf("coordinates out of range")
	}

	report := &models.Report{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		AuthorID:    &authorID,
		Anonymity:   input.Anonymity,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Address:     input.Address,
		Photos:      input.Photos,
	}
	if err := s.reports.Create(report); err != nil {
		return nil, apperr.Infrastructure(err, "failed to create report")
	}

	// authors always follow their own reports
	if err := s.follows.Follow(authorID, report.ID); err != nil {
		slog.Error("failed to auto-follow own report", "report_id", report.ID, "error", err)
	}

	return report, nil
}

// Get returns one report by id.
func (s *ReportService) Get(id uint) (*models.Report, error) {
	report, err := s.reports.GetByID(id)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load report")
	}
	if report == nil {
		return nil, apperr.NotFoundf("report %d not found", id)
	}
	return report, nil
}

// ListPublished returns every report visible on the public map, i.e.
// everything past review that was not declined.
func (s *ReportService) ListPublished() ([]models.Report, error) {
	reports, err := s.reports.ListPublished()
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list reports")
	}
	return reports, nil
}

// ListPending returns reports awaiting review.
func (s *ReportService) ListPending() ([]models.Report, error) {
	reports, err := s.reports.ListByState(models.StatePending)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list reports")
	}
	return reports, nil
}

// ListByCategory returns every report of one category.
func (s *ReportService) ListByCategory(category models.OfficeType) ([]models.Report, error) {
	if !category.Valid() {
		return nil, apperr.Validationf("unknown category %q", category)
	}
	reports, err := s.reports.ListByCategory(category)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list reports")
	}
	return reports, nil
}

// ListMine returns the reports a citizen authored.
func (s *ReportService) ListMine(authorID uint) ([]models.Report, error) {
	reports, err := s.reports.ListByAuthor(authorID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list reports")
	}
	return reports, nil
}

// ListAssignedToOfficer returns the reports bound to an officer.
func (s *ReportService) ListAssignedToOfficer(officerID uint) ([]models.Report, error) {
	reports, err := s.reports.ListByAssignedOfficer(officerID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list reports")
	}
	return reports, nil
}

// ListAssignedToMaintainer returns the reports bound to a maintainer.
func (s *ReportService) ListAssignedToMaintainer(maintainerID uint) ([]models.Report, error) {
	reports, err := s.reports.ListByAssignedMaintainer(maintainerID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list reports")
	}
	return reports, nil
}

// Follow subscribes a user to a report's notifications. Idempotent.
func (s *ReportService) Follow(userID, reportID uint) error {
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to load report")
	}
	if report == nil {
		return apperr.NotFoundf("report %d not found", reportID)
	}
	if err := s.follows.Follow(userID, reportID); err != nil {
		return apperr.Infrastructure(err, "failed to follow report")
	}
	return nil
}

// Unfollow removes a follow subscription. Idempotent.
func (s *ReportService) Unfollow(userID, reportID uint) error {
	if err := s.follows.Unfollow(userID, reportID); err != nil {
		return apperr.Infrastructure(err, "failed to unfollow report")
	}
	return nil
}
