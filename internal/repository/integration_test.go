package repository_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicreport/internal/models"
	"civicreport/internal/repository"
	"civicreport/internal/testutil"
)

// Walks a report through its whole lifecycle against a real database,
// exercising the conditional updates that the sqlmock tests only simulate.
func TestReportLifecycleAgainstPostgres(t *testing.T) {
	tc := testutil.SetupTestContainers(t)
	defer tc.Cleanup(t)
	f := testutil.SetupFixtures(t, tc.DB)

	reports := repository.NewReportRepository(tc.DB)
	report := testutil.CreateReport(t, tc.DB, f.Citizen.ID, models.OfficeWaste)

	ok, err := reports.Transition(report.ID, models.StatePending, models.StateApproved, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = reports.AssignOfficer(report.ID, f.Technician.ID, models.StateApproved)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = reports.AssignMaintainer(report.ID, f.Maintainer.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := reports.GetByID(report.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StateWithMaintainer, got.State)
	require.NotNil(t, got.AssignedOfficerID)
	assert.Equal(t, f.Technician.ID, *got.AssignedOfficerID)
	require.NotNil(t, got.AssignedMaintainerID)
	assert.Equal(t, f.Maintainer.ID, *got.AssignedMaintainerID)

	ok, err = reports.Transition(report.ID, models.StateWithMaintainer, models.StateInProgress, nil)
	require.NoError(t, err)
	require.True(t, ok)

	reason := "waiting for replacement bins to be delivered"
	ok, err = reports.Transition(report.ID, models.StateInProgress, models.StateSuspended, &reason)
	require.NoError(t, err)
	require.True(t, ok)

	got, err = reports.GetByID(report.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SuspendReason)
	assert.Equal(t, reason, *got.SuspendReason)

	ok, err = reports.Transition(report.ID, models.StateSuspended, models.StateInProgress, nil)
	require.NoError(t, err)
	require.True(t, ok)

	got, err = reports.GetByID(report.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SuspendReason, "resuming clears the suspend reason")

	ok, err = reports.Transition(report.ID, models.StateInProgress, models.StateResolved, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestConcurrentTransitionsHaveOneWinner(t *testing.T) {
	tc := testutil.SetupTestContainers(t)
	defer tc.Cleanup(t)
	f := testutil.SetupFixtures(t, tc.DB)

	reports := repository.NewReportRepository(tc.DB)
	report := testutil.CreateReport(t, tc.DB, f.Citizen.ID, models.OfficeWaste)

	const workers = 8
	results := make(chan bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := reports.Transition(report.ID, models.StatePending, models.StateApproved, nil)
			assert.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for ok := range results {
		if ok {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestFollowAndNotificationRoundTrip(t *testing.T) {
	tc := testutil.SetupTestContainers(t)
	defer tc.Cleanup(t)
	f := testutil.SetupFixtures(t, tc.DB)

	follows := repository.NewFollowRepository(tc.DB)
	notifications := repository.NewNotificationRepository(tc.DB)
	report := testutil.CreateReport(t, tc.DB, f.Citizen.ID, models.OfficeWaste)

	follower := testutil.CreateUser(t, tc.DB, "neighbour@test.local", "Nino", "Russo")

	require.NoError(t, follows.Follow(follower.ID, report.ID))
	require.NoError(t, follows.Follow(follower.ID, report.ID), "following twice is a no-op")

	ids, err := follows.ListFollowerIDs(report.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{follower.ID}, ids)

	n := &models.Notification{
		UserID:   follower.ID,
		ReportID: report.ID,
		Type:     models.NotificationStatusChange,
		Message:  "Your report was approved.",
	}
	require.NoError(t, notifications.Create(n))

	unread, err := notifications.CountUnread(follower.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	pending, err := notifications.ListUsersWithUnread()
	require.NoError(t, err)
	assert.Contains(t, pending, follower.ID)

	require.NoError(t, notifications.MarkRead(follower.ID, n.ID))
	unread, err = notifications.CountUnread(follower.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	require.NoError(t, follows.Unfollow(follower.ID, report.ID))
	ids, err = follows.ListFollowerIDs(report.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestInternalMessagesOrderedByCreation(t *testing.T) {
	tc := testutil.SetupTestContainers(t)
	defer tc.Cleanup(t)
	f := testutil.SetupFixtures(t, tc.DB)

	messages := repository.NewInternalMessageRepository(tc.DB)
	report := testutil.CreateReport(t, tc.DB, f.Citizen.ID, models.OfficeWaste)

	first := &models.InternalMessage{
		ReportID:     report.ID,
		SenderType:   models.ParticipantOfficer,
		SenderID:     f.Technician.ID,
		ReceiverType: models.ParticipantMaintainer,
		ReceiverID:   f.Maintainer.ID,
		Message:      "Crew needed on Via Roma tomorrow morning.",
	}
	require.NoError(t, messages.Create(first))

	reply := &models.InternalMessage{
		ReportID:     report.ID,
		SenderType:   models.ParticipantMaintainer,
		SenderID:     f.Maintainer.ID,
		ReceiverType: models.ParticipantOfficer,
		ReceiverID:   f.Technician.ID,
		Message:      "Confirmed, truck scheduled for 7:00.",
	}
	require.NoError(t, messages.Create(reply))

	history, err := messages.ListByReport(report.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, reply.ID, history[1].ID)
}
