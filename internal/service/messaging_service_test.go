package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicreport/internal/apperr"
	"civicreport/internal/models"
	"civicreport/internal/realtime"
)

type messagingFixture struct {
	svc         *MessagingService
	store       *fakeReportStore
	internal    *fakeInternalStore
	public      *fakePublicStore
	broadcaster *fakeBroadcaster
}

func newMessaging(report *models.Report, officers map[uint]*models.Officer, maintainers map[uint]*models.Maintainer, users map[uint]*models.User) *messagingFixture {
	f := &messagingFixture{
		store:       newFakeReportStore(report),
		internal:    &fakeInternalStore{},
		public:      &fakePublicStore{},
		broadcaster: &fakeBroadcaster{},
	}
	f.svc = NewMessagingService(
		f.store,
		&fakeOfficerDir{officers: officers},
		&fakeMaintainerDir{maintainers: maintainers},
		&fakeUserDir{users: users},
		f.internal,
		f.public,
		f.broadcaster,
		nil,
	)
	return f
}

func assignedReport(officerID, maintainerID uint) *models.Report {
	return &models.Report{
		ID: 1, Category: models.OfficeWaste, State: models.StateWithMaintainer,
		AuthorID:          ptr(uint(42)),
		AssignedOfficerID: ptr(officerID), AssignedMaintainerID: ptr(maintainerID),
	}
}

func TestSendInternalBetweenAssignedPair(t *testing.T) {
	f := newMessaging(assignedReport(7, 3),
		map[uint]*models.Officer{7: techOfficer(7, models.OfficeWaste)},
		map[uint]*models.Maintainer{3: wasteMaintainer(3, true)}, nil)

	officer := models.ParticipantRef{Type: models.ParticipantOfficer, ID: 7}
	maintainer := models.ParticipantRef{Type: models.ParticipantMaintainer, ID: 3}

	msg, err := f.svc.SendInternal(1, maintainer, officer, "Starting today")
	require.NoError(t, err)
	assert.Equal(t, "Starting today", msg.Message)
	assert.Equal(t, "CleanCo", msg.SenderName)
	assert.Equal(t, "Teo Bianchi", msg.ReceiverName)

	// either direction works
	_, err = f.svc.SendInternal(1, officer, maintainer, "Thanks, keep me posted")
	require.NoError(t, err)

	require.Len(t, f.broadcaster.events, 2)
	assert.Equal(t, realtime.EventInternalMessage, f.broadcaster.events[0].Kind)
	assert.Equal(t, uint(1), f.broadcaster.events[0].ReportID)
}

func TestSendInternalRejectsNonAssignedSender(t *testing.T) {
	f := newMessaging(assignedReport(7, 3), nil, nil, nil)

	stranger := models.ParticipantRef{Type: models.ParticipantOfficer, ID: 8}
	maintainer := models.ParticipantRef{Type: models.ParticipantMaintainer, ID: 3}

	_, err := f.svc.SendInternal(1, stranger, maintainer, "let me in")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
	assert.Empty(t, f.internal.messages)
	assert.Empty(t, f.broadcaster.events)
}

func TestSendInternalRejectsWrongReceiver(t *testing.T) {
	f := newMessaging(assignedReport(7, 3), nil, nil, nil)

	officer := models.ParticipantRef{Type: models.ParticipantOfficer, ID: 7}

	// receiver is not the counterpart of the pair
	_, err := f.svc.SendInternal(1, officer, models.ParticipantRef{Type: models.ParticipantMaintainer, ID: 4}, "hi")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	// officer to officer is never a valid pair
	_, err = f.svc.SendInternal(1, officer, officer, "hi")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestSendInternalRequiresBothPartiesBound(t *testing.T) {
	report := &models.Report{
		ID: 1, State: models.StateAwaitingMaintainer, AssignedOfficerID: ptr(uint(7)),
	}
	f := newMessaging(report, nil, nil, nil)

	_, err := f.svc.SendInternal(1,
		models.ParticipantRef{Type: models.ParticipantOfficer, ID: 7},
		models.ParticipantRef{Type: models.ParticipantMaintainer, ID: 3}, "anyone there?")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestSendInternalRejectsEmptyText(t *testing.T) {
	f := newMessaging(assignedReport(7, 3), nil, nil, nil)

	_, err := f.svc.SendInternal(1,
		models.ParticipantRef{Type: models.ParticipantOfficer, ID: 7},
		models.ParticipantRef{Type: models.ParticipantMaintainer, ID: 3}, "   ")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestRebindingKeepsHistoryButRevokesOldMaintainer(t *testing.T) {
	f := newMessaging(assignedReport(7, 3), nil,
		map[uint]*models.Maintainer{3: wasteMaintainer(3, true), 4: wasteMaintainer(4, true)}, nil)

	officer := models.ParticipantRef{Type: models.ParticipantOfficer, ID: 7}
	m1 := models.ParticipantRef{Type: models.ParticipantMaintainer, ID: 3}
	m2 := models.ParticipantRef{Type: models.ParticipantMaintainer, ID: 4}

	_, err := f.svc.SendInternal(1, m1, officer, "on it")
	require.NoError(t, err)

	// maintainer binding changes from M1 to M2
	ok, err := f.store.AssignMaintainer(1, 4)
	require.NoError(t, err)
	require.True(t, ok)

	// history with M1 stays retrievable by the current pair
	history, err := f.svc.ListInternal(1, m2)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, uint(3), history[0].SenderID)

	// but M1 can no longer send
	_, err = f.svc.SendInternal(1, m1, officer, "one more thing")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	// and M2 can
	_, err = f.svc.SendInternal(1, m2, officer, "taking over")
	require.NoError(t, err)
}

func TestSendPublicByAuthor(t *testing.T) {
	f := newMessaging(assignedReport(7, 3), nil, nil,
		map[uint]*models.User{42: {ID: 42, FirstName: "Carla", LastName: "Verdi"}})

	msg, err := f.svc.SendPublic(1, models.SenderCitizen, 42, "Any progress?")
	require.NoError(t, err)
	assert.Equal(t, "Carla Verdi", msg.SenderName)

	require.Len(t, f.broadcaster.events, 1)
	assert.Equal(t, realtime.EventPublicMessage, f.broadcaster.events[0].Kind)
}

func TestSendPublicRejectsNonAuthorCitizen(t *testing.T) {
	f := newMessaging(assignedReport(7, 3), nil, nil, nil)

	_, err := f.svc.SendPublic(1, models.SenderCitizen, 43, "me too")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
	assert.Empty(t, f.public.messages)
}

func TestSendPublicByAnyOfficer(t *testing.T) {
	// the sender holds a position in a different office; any officer role
	// may answer on the public channel
	f := newMessaging(assignedReport(7, 3),
		map[uint]*models.Officer{9: techOfficer(9, models.OfficeRoads)}, nil, nil)

	_, err := f.svc.SendPublic(1, models.SenderOfficer, 9, "We are looking into it.")
	require.NoError(t, err)
}

func TestSendPublicRejectsUnknownOfficer(t *testing.T) {
	f := newMessaging(assignedReport(7, 3), map[uint]*models.Officer{}, nil, nil)

	_, err := f.svc.SendPublic(1, models.SenderOfficer, 9, "hello")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestListPublicAnonymousAuthor(t *testing.T) {
	report := assignedReport(7, 3)
	report.Anonymity = true
	f := newMessaging(report, nil, nil,
		map[uint]*models.User{42: {ID: 42, FirstName: "Carla", LastName: "Verdi"}})

	_, err := f.svc.SendPublic(1, models.SenderCitizen, 42, "still broken")
	require.NoError(t, err)

	messages, err := f.svc.ListPublic(1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Anonymous", messages[0].SenderName)
}

func TestMessagingUnknownReport(t *testing.T) {
	f := newMessaging(assignedReport(7, 3), nil, nil, nil)

	_, err := f.svc.SendPublic(99, models.SenderCitizen, 42, "hi")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.svc.ListInternal(99, models.ParticipantRef{Type: models.ParticipantOfficer, ID: 7})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListInternalRestrictedToAssignedPair(t *testing.T) {
	f := newMessaging(assignedReport(7, 3), nil, nil, nil)

	officer := models.ParticipantRef{Type: models.ParticipantOfficer, ID: 7}
	maintainer := models.ParticipantRef{Type: models.ParticipantMaintainer, ID: 3}
	_, err := f.svc.SendInternal(1, officer, maintainer, "confidential: crew access code 4711")
	require.NoError(t, err)

	_, err = f.svc.ListInternal(1, models.ParticipantRef{})
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	_, err = f.svc.ListInternal(1, models.ParticipantRef{Type: models.ParticipantOfficer, ID: 8})
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	_, err = f.svc.ListInternal(1, models.ParticipantRef{Type: models.ParticipantMaintainer, ID: 4})
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	for _, reader := range []models.ParticipantRef{officer, maintainer} {
		history, err := f.svc.ListInternal(1, reader)
		require.NoError(t, err)
		require.Len(t, history, 1)
	}
}
