package service

import (
	"strings"
	"unicode/utf8"

	"civicreport/internal/apperr"
	"civicreport/internal/models"
)

// MinDeclineReasonLen is the shortest acceptable decline reason. Enforced
// here, at the single authoritative boundary, regardless of call path.
const MinDeclineReasonLen = 30

// ReportStore is the slice of the report repository the lifecycle and
// assignment services depend on. All state changes go through conditional
// updates keyed on the previously observed state, so concurrent callers
// racing on the same report converge to exactly one winner.
type ReportStore interface {
	GetByID(id uint) (*models.Report, error)
	Transition(id uint, from, to models.ReportState, reason *string) (bool, error)
	AssignOfficer(id, officerID uint, from models.ReportState) (bool, error)
	AssignMaintainer(id, maintainerID uint) (bool, error)
}

// OfficerDirectory resolves officers for authorization checks.
type OfficerDirectory interface {
	GetByID(id uint) (*models.Officer, error)
}

// MaintainerDirectory resolves maintainers for assignment checks.
type MaintainerDirectory interface {
	GetByID(id uint) (*models.Maintainer, error)
}

// Notifier receives lifecycle and messaging events for best-effort delivery.
// Implementations must never fail the operation that produced the event.
type Notifier interface {
	StatusChanged(report *models.Report, previous models.ReportState)
}

// transitions is the full edge set of the report lifecycle. Anything not
// listed is illegal from that state.
var transitions = map[models.ReportState][]models.ReportState{
	models.StatePending:            {models.StateApproved, models.StateDeclined},
	models.StateApproved:           {models.StateAwaitingMaintainer},
	models.StateAwaitingMaintainer: {models.StateWithMaintainer, models.StateInProgress, models.StateSuspended, models.StateResolved},
	models.StateWithMaintainer:     {models.StateInProgress, models.StateSuspended, models.StateResolved},
	models.StateInProgress:         {models.StateSuspended, models.StateResolved},
	models.StateSuspended:          {models.StateInProgress, models.StateResolved},
}

// CanTransition reports whether the edge from → to exists in the lifecycle.
func CanTransition(from, to models.ReportState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// operationalStates are the states from which the bound officer or maintainer
// may drive the report.
func operational(s models.ReportState) bool {
	switch s {
	case models.StateAwaitingMaintainer, models.StateWithMaintainer,
		models.StateInProgress, models.StateSuspended:
		return true
	}
	return false
}

// LifecycleService validates and applies report state transitions.
type LifecycleService struct {
	reports    ReportStore
	officers   OfficerDirectory
	assignment *AssignmentService
	notifier   Notifier
}

func NewLifecycleService(reports ReportStore, officers OfficerDirectory, assignment *AssignmentService, notifier Notifier) *LifecycleService {
	return &LifecycleService{
		reports:    reports,
		officers:   officers,
		assignment: assignment,
		notifier:   notifier,
	}
}

// ReviewReport approves or declines a pending report. Only officers holding
// a public relations position may review. Declining requires a reason of at
// least MinDeclineReasonLen characters. When assignOfficerID is set on an
// approval, the report is bound to that officer in the same flow.
func (s *LifecycleService) ReviewReport(reviewerID, reportID uint, decision models.ReportState, reason *string, assignOfficerID *uint) (*models.Report, error) {
	if decision != models.StateApproved && decision != models.StateDeclined {
		return nil, apperr.Validationf("review decision must be APPROVED or DECLINED, got %s", decision)
	}

	reviewer, err := s.officers.GetByID(reviewerID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load reviewer")
	}
	if reviewer == nil {
		return nil, apperr.NotFoundf("officer %d not found", reviewerID)
	}
	if !reviewer.HasRole(models.RolePublicRelations) {
		return nil, apperr.Authorizationf("officer %d holds no public relations position", reviewerID)
	}

	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load report")
	}
	if report == nil {
		return nil, apperr.NotFoundf("report %d not found", reportID)
	}
	if report.State != models.StatePending {
		return nil, apperr.Conflictf("report %d already reviewed, state is %s", reportID, report.State)
	}

	if decision == models.StateDeclined {
		if reason == nil || utf8.RuneCountInString(strings.TrimSpace(*reason)) < MinDeclineReasonLen {
			return nil, apperr.Validationf("decline reason must be at least %d characters", MinDeclineReasonLen)
		}
	}

	ok, err := s.reports.Transition(reportID, models.StatePending, decision, reason)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to apply review")
	}
	if !ok {
		return nil, apperr.Conflictf("report %d already reviewed", reportID)
	}

	if decision == models.StateApproved && assignOfficerID != nil {
		if err := s.assignment.AssignToOfficer(reportID, *assignOfficerID); err != nil {
			// the approval itself is committed; surface the assignment failure
			return nil, err
		}
	}

	updated, err := s.reports.GetByID(reportID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to reload report")
	}
	if s.notifier != nil {
		s.notifier.StatusChanged(updated, models.StatePending)
	}
	return updated, nil
}

// UpdateStatus moves an assigned report between the operational states.
// The actor must be the currently bound officer or, once one is bound, the
// currently bound maintainer. Binding a maintainer adds a second authorized
// actor; it never strips the officer's access.
func (s *LifecycleService) UpdateStatus(actor models.ParticipantRef, reportID uint, next models.ReportState, reason *string) (*models.Report, error) {
	switch next {
	case models.StateInProgress, models.StateSuspended, models.StateResolved:
	default:
		return nil, apperr.Validationf("target state must be IN_PROGRESS, SUSPENDED or RESOLVED, got %s", next)
	}

	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load report")
	}
	if report == nil {
		return nil, apperr.NotFoundf("report %d not found", reportID)
	}
	if report.State.Terminal() {
		return nil, apperr.Conflictf("report %d is %s and can no longer change", reportID, report.State)
	}
	if !operational(report.State) {
		return nil, apperr.Conflictf("report %d is %s, not yet assigned", reportID, report.State)
	}

	if err := authorizeActor(report, actor); err != nil {
		return nil, err
	}

	if !CanTransition(report.State, next) {
		return nil, apperr.Conflictf("cannot move report %d from %s to %s", reportID, report.State, next)
	}

	ok, err := s.reports.Transition(reportID, report.State, next, reason)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to update status")
	}
	if !ok {
		return nil, apperr.Conflictf("report %d changed concurrently", reportID)
	}

	previous := report.State
	updated, err := s.reports.GetByID(reportID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to reload report")
	}
	if s.notifier != nil {
		s.notifier.StatusChanged(updated, previous)
	}
	return updated, nil
}

// authorizeActor checks the actor against the report's current assignment.
// The report row is the source of truth; nothing here is cached or derived.
func authorizeActor(report *models.Report, actor models.ParticipantRef) error {
	switch actor.Type {
	case models.ParticipantOfficer:
		if report.AssignedOfficerID == nil || *report.AssignedOfficerID != actor.ID {
			return apperr.Authorizationf("officer %d is not assigned to report %d", actor.ID, report.ID)
		}
	case models.ParticipantMaintainer:
		if report.AssignedMaintainerID == nil || *report.AssignedMaintainerID != actor.ID {
			return apperr.Authorizationf("maintainer %d is not assigned to report %d", actor.ID, report.ID)
		}
	default:
		return apperr.Authorizationf("unknown actor type %q", actor.Type)
	}
	return nil
}
