package service

import (
	"strings"

	"civicreport/internal/apperr"
	"civicreport/internal/models"
	"civicreport/internal/realtime"
)

// Broadcaster pushes events to everyone watching a report's room. The room
// is a delivery optimization only; every send and every history read is
// authorized against the report itself.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// InternalMessageStore persists the staff-only channel.
type InternalMessageStore interface {
	Create(msg *models.InternalMessage) error
	ListByReport(reportID uint) ([]models.InternalMessage, error)
}

// PublicMessageStore persists the citizen-facing channel.
type PublicMessageStore interface {
	Create(msg *models.PublicMessage) error
	ListByReport(reportID uint) ([]models.PublicMessage, error)
}

// UserDirectory resolves citizen accounts for display names and author
// checks.
type UserDirectory interface {
	GetByID(id uint) (*models.User, error)
}

// MessageNotifier is notified after a public message is persisted so the
// author and followers can be told. Best effort only.
type MessageNotifier interface {
	MessagePosted(report *models.Report, msg *models.PublicMessage)
}

// MessagingService authorizes and persists messages on both report channels.
// Authorization is recomputed from the report's current assignment on every
// send; nothing is cached between calls.
type MessagingService struct {
	reports     ReportStore
	officers    OfficerDirectory
	maintainers MaintainerDirectory
	users       UserDirectory
	internal    InternalMessageStore
	public      PublicMessageStore
	broadcaster Broadcaster
	notifier    MessageNotifier
}

func NewMessagingService(
	reports ReportStore,
	officers OfficerDirectory,
	maintainers MaintainerDirectory,
	users UserDirectory,
	internal InternalMessageStore,
	public PublicMessageStore,
	broadcaster Broadcaster,
	notifier MessageNotifier,
) *MessagingService {
	return &MessagingService{
		reports:     reports,
		officers:    officers,
		maintainers: maintainers,
		users:       users,
		internal:    internal,
		public:      public,
		broadcaster: broadcaster,
		notifier:    notifier,
	}
}

// SendInternal posts a message on the officer/maintainer channel. The
// sender/receiver pair must exactly equal the report's currently assigned
// officer and maintainer, in either direction. Nothing is written when any
// check fails.
func (s *MessagingService) SendInternal(reportID uint, sender, receiver models.ParticipantRef, text string) (*models.InternalMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validationf("message text must not be empty")
	}
	if !sender.Type.Valid() || !receiver.Type.Valid() {
		return nil, apperr.Authorizationf("internal channel participants must be technical staff or maintainer")
	}

	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load report")
	}
	if report == nil {
		return nil, apperr.NotFoundf("report %d not found", reportID)
	}
	if report.AssignedOfficerID == nil || report.AssignedMaintainerID == nil {
		return nil, apperr.Authorizationf("report %d does not have both an officer and a maintainer bound", reportID)
	}

	if !pairMatches(report, sender, receiver) {
		return nil, apperr.Authorizationf("sender/receiver do not match the currently assigned pair of report %d", reportID)
	}

	msg := &models.InternalMessage{
		ReportID:     reportID,
		SenderType:   sender.Type,
		SenderID:     sender.ID,
		ReceiverType: receiver.Type,
		ReceiverID:   receiver.ID,
		Message:      text,
	}
	if err := s.internal.Create(msg); err != nil {
		return nil, apperr.Infrastructure(err, "failed to store message")
	}

	s.resolveInternalNames(msg)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(realtime.Event{
			Kind:     realtime.EventInternalMessage,
			ReportID: reportID,
			Payload:  msg,
		})
	}
	return msg, nil
}

// isAssignedParticipant reports whether p is the report's currently bound
// officer or maintainer.
func isAssignedParticipant(report *models.Report, p models.ParticipantRef) bool {
	switch p.Type {
	case models.ParticipantOfficer:
		return report.AssignedOfficerID != nil && *report.AssignedOfficerID == p.ID
	case models.ParticipantMaintainer:
		return report.AssignedMaintainerID != nil && *report.AssignedMaintainerID == p.ID
	}
	return false
}

// pairMatches verifies {sender, receiver} is exactly the report's assigned
// officer/maintainer pair, order independent.
func pairMatches(report *models.Report, sender, receiver models.ParticipantRef) bool {
	officer := models.ParticipantRef{Type: models.ParticipantOfficer, ID: *report.AssignedOfficerID}
	maintainer := models.ParticipantRef{Type: models.ParticipantMaintainer, ID: *report.AssignedMaintainerID}
	if sender == officer && receiver == maintainer {
		return true
	}
	if sender == maintainer && receiver == officer {
		return true
	}
	return false
}

// SendPublic posts a message on the citizen/officer channel. A citizen
// sender must be the report's author; an officer sender must hold at least
// one officer position, in any office.
func (s *MessagingService) SendPublic(reportID uint, senderType models.PublicSenderType, senderID uint, text string) (*models.PublicMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validationf("message text must not be empty")
	}
	if !senderType.Valid() {
		return nil, apperr.Validationf("unknown sender type %q", senderType)
	}

	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load report")
	}
	if report == nil {
		return nil, apperr.NotFoundf("report %d not found", reportID)
	}

	switch senderType {
	case models.SenderCitizen:
		if report.AuthorID == nil || *report.AuthorID != senderID {
			return nil, apperr.Authorizationf("user %d is not the author of report %d", senderID, reportID)
		}
	case models.SenderOfficer:
		officer, err := s.officers.GetByID(senderID)
		if err != nil {
			return nil, apperr.Infrastructure(err, "failed to load officer")
		}
		if officer == nil || len(officer.Positions) == 0 {
			return nil, apperr.Authorizationf("sender %d holds no officer position", senderID)
		}
	}

	msg := &models.PublicMessage{
		ReportID:   reportID,
		SenderType: senderType,
		SenderID:   senderID,
		Message:    text,
	}
	if err := s.public.Create(msg); err != nil {
		return nil, apperr.Infrastructure(err, "failed to store message")
	}

	s.resolvePublicName(report, msg)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(realtime.Event{
			Kind:     realtime.EventPublicMessage,
			ReportID: reportID,
			Payload:  msg,
		})
	}
	if s.notifier != nil {
		s.notifier.MessagePosted(report, msg)
	}
	return msg, nil
}

// ListInternal returns the internal history of a report in send order. The
// reader must be the report's currently assigned officer or maintainer;
// like sends, reads are authorized against the report's current assignment
// on every call. Display names are resolved from the directories at read
// time, never stored with the row, so renames show up retroactively.
func (s *MessagingService) ListInternal(reportID uint, reader models.ParticipantRef) ([]models.InternalMessage, error) {
	if !reader.Type.Valid() {
		return nil, apperr.Authorizationf("internal channel is restricted to technical staff and maintainers")
	}

	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load report")
	}
	if report == nil {
		return nil, apperr.NotFoundf("report %d not found", reportID)
	}
	if !isAssignedParticipant(report, reader) {
		return nil, apperr.Authorizationf("reader is not assigned to report %d", reportID)
	}

	messages, err := s.internal.ListByReport(reportID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list messages")
	}
	for i := range messages {
		s.resolveInternalNames(&messages[i])
	}
	return messages, nil
}

// ListPublic returns the public history of a report in send order.
func (s *MessagingService) ListPublic(reportID uint) ([]models.PublicMessage, error) {
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load report")
	}
	if report == nil {
		return nil, apperr.NotFoundf("report %d not found", reportID)
	}

	messages, err := s.public.ListByReport(reportID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list messages")
	}
	for i := range messages {
		s.resolvePublicName(report, &messages[i])
	}
	return messages, nil
}

func (s *MessagingService) resolveInternalNames(msg *models.InternalMessage) {
	msg.SenderName = s.participantName(msg.SenderType, msg.SenderID)
	msg.ReceiverName = s.participantName(msg.ReceiverType, msg.ReceiverID)
}

func (s *MessagingService) participantName(t models.ParticipantType, id uint) string {
	switch t {
	case models.ParticipantOfficer:
		if officer, err := s.officers.GetByID(id); err == nil && officer != nil {
			return officer.DisplayName()
		}
	case models.ParticipantMaintainer:
		if maintainer, err := s.maintainers.GetByID(id); err == nil && maintainer != nil {
			return maintainer.Name
		}
	}
	return ""
}

// resolvePublicName fills the sender display name. Authors of anonymous
// reports stay anonymous on the public channel too.
func (s *MessagingService) resolvePublicName(report *models.Report, msg *models.PublicMessage) {
	switch msg.SenderType {
	case models.SenderCitizen:
		if report.Anonymity {
			msg.SenderName = "Anonymous"
			return
		}
		if user, err := s.users.GetByID(msg.SenderID); err == nil && user != nil {
			msg.SenderName = user.DisplayName()
		}
	case models.SenderOfficer:
		if officer, err := s.officers.GetByID(msg.SenderID); err == nil && officer != nil {
			msg.SenderName = officer.DisplayName()
		}
	}
}
