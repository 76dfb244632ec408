package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"civicreport/internal/apperr"
	"civicreport/internal/models"
	"civicreport/internal/realtime"
)

// NotificationStore persists notification records.
type NotificationStore interface {
	Create(n *models.Notification) error
	ListByUser(userID uint) ([]models.Notification, error)
	MarkRead(userID, notificationID uint) error
	MarkAllRead(userID uint) error
}

// FollowStore resolves who follows a report.
type FollowStore interface {
	ListFollowerIDs(reportID uint) ([]uint, error)
}

// PushPublisher forwards notification payloads to an external delivery
// queue. May be nil when no broker is configured.
type PushPublisher interface {
	Publish(payload any) error
}

// StatusMailer sends status-change mail to the report author. May be nil
// when mail delivery is disabled.
type StatusMailer interface {
	SendStatusChangeEmail(to, reportTitle, newState, reason string) error
}

// NotificationService records what happened to a report for its author and
// followers. Everything past the insert is best effort: a failed push or a
// failed follower row never rolls back the operation that triggered it.
type NotificationService struct {
	notifications NotificationStore
	follows       FollowStore
	publisher     PushPublisher
	broadcaster   Broadcaster
	users         UserDirectory
	mailer        StatusMailer
}

func NewNotificationService(notifications NotificationStore, follows FollowStore, publisher PushPublisher, broadcaster Broadcaster, users UserDirectory, mailer StatusMailer) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		follows:       follows,
		publisher:     publisher,
		broadcaster:   broadcaster,
		users:         users,
		mailer:        mailer,
	}
}

// StatusChanged emits a status-change notification to the report's author
// and every follower.
func (s *NotificationService) StatusChanged(report *models.Report, previous models.ReportState) {
	if report == nil {
		return
	}
	s.emit(report, models.NotificationStatusChange, statusMessage(report))
	s.mailAuthor(report)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(realtime.Event{
			Kind:     realtime.EventStatusChange,
			ReportID: report.ID,
			Payload:  map[string]any{"id": report.ID, "state": report.State, "previous": previous},
		})
	}
}

// MessagePosted emits a message notification to the author and followers,
// skipping the sender when the sender is the author.
func (s *NotificationService) MessagePosted(report *models.Report, msg *models.PublicMessage) {
	if report == nil || msg == nil {
		return
	}
	skip := uint(0)
	if msg.SenderType == models.SenderCitizen {
		skip = msg.SenderID
	}
	s.emitExcept(report, models.NotificationMessage,
		fmt.Sprintf("New message on report #%d: %q", report.ID, msg.Message), skip)
}

// mailAuthor sends status-change mail to the report author, best effort.
func (s *NotificationService) mailAuthor(report *models.Report) {
	if s.mailer == nil || s.users == nil || report.AuthorID == nil {
		return
	}
	author, err := s.users.GetByID(*report.AuthorID)
	if err != nil || author == nil {
		slog.Error("failed to resolve report author for mail", "report_id", report.ID, "error", err)
		return
	}
	reason := ""
	switch {
	case report.State == models.StateDeclined && report.DeclineReason != nil:
		reason = *report.DeclineReason
	case report.State == models.StateSuspended && report.SuspendReason != nil:
		reason = *report.SuspendReason
	}
	if err := s.mailer.SendStatusChangeEmail(author.Email, report.Title, string(report.State), reason); err != nil {
		slog.Error("failed to send status mail", "report_id", report.ID, "error", err)
	}
}

func (s *NotificationService) emit(report *models.Report, t models.NotificationType, text string) {
	s.emitExcept(report, t, text, 0)
}

func (s *NotificationService) emitExcept(report *models.Report, t models.NotificationType, text string, skipUserID uint) {
	recipients := map[uint]struct{}{}
	if report.AuthorID != nil {
		recipients[*report.AuthorID] = struct{}{}
	}
	followers, err := s.follows.ListFollowerIDs(report.ID)
	if err != nil {
		slog.Error("failed to resolve followers", "report_id", report.ID, "error", err)
	}
	for _, id := range followers {
		recipients[id] = struct{}{}
	}
	delete(recipients, skipUserID)

	for userID := range recipients {
		n := &models.Notification{
			UserID:   userID,
			ReportID: report.ID,
			Type:     t,
			Message:  text,
		}
		if err := s.notifications.Create(n); err != nil {
			slog.Error("failed to store notification", "user_id", userID, "report_id", report.ID, "error", err)
			continue
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(n); err != nil {
				slog.Error("failed to push notification", "notification_id", n.ID, "error", err)
			}
		}
	}
}

// statusMessage renders the human text for a state change. Declines carry
// the reviewer's reason.
func statusMessage(report *models.Report) string {
	switch report.State {
	case models.StateApproved:
		return fmt.Sprintf("Report #%d was approved and will be assigned shortly.", report.ID)
	case models.StateDeclined:
		reason := ""
		if report.DeclineReason != nil {
			reason = " Reason: " + *report.DeclineReason
		}
		return fmt.Sprintf("Report #%d was declined.%s", report.ID, reason)
	case models.StateAwaitingMaintainer:
		return fmt.Sprintf("Report #%d was assigned to a municipal office.", report.ID)
	case models.StateWithMaintainer:
		return fmt.Sprintf("Report #%d was handed to an external maintainer.", report.ID)
	case models.StateInProgress:
		return fmt.Sprintf("Work on report #%d has started.", report.ID)
	case models.StateSuspended:
		reason := ""
		if report.SuspendReason != nil {
			reason = " Reason: " + *report.SuspendReason
		}
		return fmt.Sprintf("Work on report #%d is suspended.%s", report.ID, reason)
	case models.StateResolved:
		return fmt.Sprintf("Report #%d has been resolved.", report.ID)
	}
	return fmt.Sprintf("Report #%d changed state to %s.", report.ID, report.State)
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(userID uint) ([]models.Notification, error) {
	notifications, err := s.notifications.ListByUser(userID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead marks one notification read. Idempotent.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	err := s.notifications.MarkRead(userID, notificationID)
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("notification %d not found", notificationID)
	}
	return apperr.Infrastructure(err, "failed to mark notification read")
}

// MarkAllRead marks every notification of the user read.
func (s *NotificationService) MarkAllRead(userID uint) error {
	if err := s.notifications.MarkAllRead(userID); err != nil {
		return apperr.Infrastructure(err, "failed to mark notifications read")
	}
	return nil
}
