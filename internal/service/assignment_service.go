package service

import (
	"civicreport/internal/apperr"
	"civicreport/internal/models"
)

// AssignmentService binds officers and maintainers to reports, enforcing
// category and role compatibility.
type AssignmentService struct {
	reports     ReportStore
	officers    OfficerDirectory
	maintainers MaintainerDirectory
	notifier    Notifier
}

func NewAssignmentService(reports ReportStore, officers OfficerDirectory, maintainers MaintainerDirectory, notifier Notifier) *AssignmentService {
	return &AssignmentService{
		reports:     reports,
		officers:    officers,
		maintainers: maintainers,
		notifier:    notifier,
	}
}

// AssignToOfficer binds a technical officer to an approved report and
// advances it to ASSIGNED_AWAITING_MAINTAINER. The officer must hold a
// technical staff position in the office matching the report's category.
func (s *AssignmentService) AssignToOfficer(reportID, officerID uint) error {
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to load report")
	}
	if report == nil {
		return apperr.NotFoundf("report %d not found", reportID)
	}
	if report.State.Terminal() {
		return apperr.Conflictf("report %d is %s and cannot be assigned", reportID, report.State)
	}
	if report.State != models.StateApproved {
		return apperr.Conflictf("report %d is %s, only approved reports can be assigned", reportID, report.State)
	}

	officer, err := s.officers.GetByID(officerID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to load officer")
	}
	if officer == nil {
		return apperr.NotFoundf("officer %d not found", officerID)
	}
	if !officer.HasPosition(report.Category, models.RoleTechnicalStaff) {
		return apperr.Validationf("officer %d holds no technical staff position for office %s", officerID, report.Category)
	}

	ok, err := s.reports.AssignOfficer(reportID, officerID, models.StateApproved)
	if err != nil {
		return apperr.Infrastructure(err, "failed to assign officer")
	}
	if !ok {
		return apperr.Conflictf("report %d changed concurrently", reportID)
	}

	if s.notifier != nil {
		if updated, err := s.reports.GetByID(reportID); err == nil && updated != nil {
			s.notifier.StatusChanged(updated, models.StateApproved)
		}
	}
	return nil
}

// AssignToMaintainer binds an external maintainer to a report that already
// has an officer. Only the report's assigned officer, or an officer holding
// a public relations or administrator role, may bind one. The maintainer
// must be active and service the report's category. A report awaiting a
// maintainer advances to ASSIGNED_WITH_MAINTAINER; rebinding in a later
// operational state keeps the state and only swaps the maintainer.
func (s *AssignmentService) AssignToMaintainer(actorOfficerID, reportID, maintainerID uint) error {
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to load report")
	}
	if report == nil {
		return apperr.NotFoundf("report %d not found", reportID)
	}
	if report.State.Terminal() {
		return apperr.Conflictf("report %d is %s and cannot be assigned", reportID, report.State)
	}
	if report.AssignedOfficerID == nil {
		return apperr.Conflictf("report %d has no assigned officer yet", reportID)
	}

	actor, err := s.officers.GetByID(actorOfficerID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to load officer")
	}
	if actor == nil {
		return apperr.Authorizationf("officer %d not found", actorOfficerID)
	}
	if *report.AssignedOfficerID != actorOfficerID &&
		!actor.HasRole(models.RolePublicRelations) &&
		!actor.HasRole(models.RoleAdministrator) {
		return apperr.Authorizationf("officer %d may not bind a maintainer to report %d", actorOfficerID, reportID)
	}

	maintainer, err := s.maintainers.GetByID(maintainerID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to load maintainer")
	}
	if maintainer == nil {
		return apperr.NotFoundf("maintainer %d not found", maintainerID)
	}
	if !maintainer.Active {
		return apperr.Validationf("maintainer %d is not active", maintainerID)
	}
	if !maintainer.Services(report.Category) {
		return apperr.Validationf("maintainer %d does not service category %s", maintainerID, report.Category)
	}

	previous := report.State
	ok, err := s.reports.AssignMaintainer(reportID, maintainerID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to assign maintainer")
	}
	if !ok {
		return apperr.Conflictf("report %d changed concurrently", reportID)
	}

	if s.notifier != nil && previous == models.StateAwaitingMaintainer {
		if updated, err := s.reports.GetByID(reportID); err == nil && updated != nil {
			s.notifier.StatusChanged(updated, previous)
		}
	}
	return nil
}
