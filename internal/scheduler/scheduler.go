package scheduler

import (
	"log/slog"
	"time"

	"civicreport/internal/config"
	"civicreport/internal/email"
	"civicreport/internal/repository"
)

// Scheduler runs the periodic unread-notification digest. The digest mails
// citizens who accumulated unread notifications since their last visit.
type Scheduler struct {
	notifications *repository.NotificationRepository
	users         *repository.UserRepository
	emailService  *email.Service
	config        *config.SchedulerConfig
	stopChan      chan struct{}
}

func NewScheduler(
	notifications *repository.NotificationRepository,
	users *repository.UserRepository,
	emailService *email.Service,
	cfg *config.SchedulerConfig,
) *Scheduler {
	return &Scheduler{
		notifications: notifications,
		users:         users,
		emailService:  emailService,
		config:        cfg,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the digest loop when it is enabled.
func (s *Scheduler) Start() {
	if !s.config.EnableDigest {
		slog.Info("Notification digest disabled")
		return
	}

	slog.Info("Starting notification digest", "interval", s.config.DigestInterval)
	go func() {
		ticker := time.NewTicker(s.config.DigestInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sendDigests()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// Stop terminates the digest loop.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) sendDigests() {
	userIDs, err := s.notifications.ListUsersWithUnread()
	if err != nil {
		slog.Error("Failed to collect digest recipients", "error", err)
		return
	}

	sent := 0
	for _, userID := range userIDs {
		user, err := s.users.GetByID(userID)
		if err != nil || user == nil {
			continue
		}
		count, err := s.notifications.CountUnread(userID)
		if err != nil || count == 0 {
			continue
		}
		if err := s.emailService.SendUnreadDigestEmail(user.Email, count); err != nil {
			slog.Error("Failed to send digest", "user_id", userID, "error", err)
			continue
		}
		sent++
	}

	slog.Info("Notification digest complete", "recipients", len(userIDs), "sent", sent)
}
