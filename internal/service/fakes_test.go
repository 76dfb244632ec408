package service

import (
	"sync"

	"civicreport/internal/models"
	"civicreport/internal/realtime"
)

// fakeReportStore implements ReportStore with the same conditional-update
// semantics as the SQL repository: a transition only lands when the stored
// state still matches the expected one.
type fakeReportStore struct {
	mu      sync.Mutex
	reports map[uint]*models.Report
}

func newFakeReportStore(reports ...*models.Report) *fakeReportStore {
	s := &fakeReportStore{reports: map[uint]*models.Report{}}
	for _, r := range reports {
		s.reports[r.ID] = r
	}
	return s
}

func (s *fakeReportStore) GetByID(id uint) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (s *fakeReportStore) Transition(id uint, from, to models.ReportState, reason *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok || r.State != from {
		return false, nil
	}
	r.State = to
	if to == models.StateDeclined {
		r.DeclineReason = reason
	}
	if to == models.StateSuspended {
		r.SuspendReason = reason
	} else {
		r.SuspendReason = nil
	}
	return true, nil
}

func (s *fakeReportStore) AssignOfficer(id, officerID uint, from models.ReportState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok || r.State != from {
		return false, nil
	}
	r.AssignedOfficerID = &officerID
	r.State = models.StateAwaitingMaintainer
	return true, nil
}

func (s *fakeReportStore) AssignMaintainer(id, maintainerID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return false, nil
	}
	switch r.State {
	case models.StateAwaitingMaintainer, models.StateWithMaintainer,
		models.StateInProgress, models.StateSuspended:
	default:
		return false, nil
	}
	r.AssignedMaintainerID = &maintainerID
	if r.State == models.StateAwaitingMaintainer {
		r.State = models.StateWithMaintainer
	}
	return true, nil
}

type fakeOfficerDir struct {
	officers map[uint]*models.Officer
}

func (d *fakeOfficerDir) GetByID(id uint) (*models.Officer, error) {
	return d.officers[id], nil
}

type fakeMaintainerDir struct {
	maintainers map[uint]*models.Maintainer
}

func (d *fakeMaintainerDir) GetByID(id uint) (*models.Maintainer, error) {
	return d.maintainers[id], nil
}

type fakeUserDir struct {
	users map[uint]*models.User
}

func (d *fakeUserDir) GetByID(id uint) (*models.User, error) {
	return d.users[id], nil
}

type fakeInternalStore struct {
	mu       sync.Mutex
	messages []models.InternalMessage
}

func (s *fakeInternalStore) Create(msg *models.InternalMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = uint(len(s.messages) + 1)
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *fakeInternalStore) ListByReport(reportID uint) ([]models.InternalMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.InternalMessage{}
	for _, m := range s.messages {
		if m.ReportID == reportID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakePublicStore struct {
	messages []models.PublicMessage
}

func (s *fakePublicStore) Create(msg *models.PublicMessage) error {
	msg.ID = uint(len(s.messages) + 1)
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *fakePublicStore) ListByReport(reportID uint) ([]models.PublicMessage, error) {
	out := []models.PublicMessage{}
	for _, m := range s.messages {
		if m.ReportID == reportID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	changes []models.ReportState
}

func (n *fakeNotifier) StatusChanged(report *models.Report, previous models.ReportState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, report.State)
}

type fakeBroadcaster struct {
	events []realtime.Event
}

func (b *fakeBroadcaster) Broadcast(event realtime.Event) {
	b.events = append(b.events, event)
}

func ptr[T any](v T) *T { return &v }
