package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicreport/internal/apperr"
	"civicreport/internal/models"
)

func newAssignment(store *fakeReportStore, officers map[uint]*models.Officer, maintainers map[uint]*models.Maintainer) *AssignmentService {
	return NewAssignmentService(store, &fakeOfficerDir{officers: officers}, &fakeMaintainerDir{maintainers: maintainers}, &fakeNotifier{})
}

func wasteMaintainer(id uint, active bool) *models.Maintainer {
	return &models.Maintainer{
		ID: id, Name: "CleanCo", Active: active,
		Categories: []models.OfficeType{models.OfficeWaste},
	}
}

func TestAssignToOfficer(t *testing.T) {
	store := newFakeReportStore(&models.Report{ID: 1, Category: models.OfficeWaste, State: models.StateApproved})
	svc := newAssignment(store, map[uint]*models.Officer{7: techOfficer(7, models.OfficeWaste)}, nil)

	require.NoError(t, svc.AssignToOfficer(1, 7))

	report, _ := store.GetByID(1)
	assert.Equal(t, models.StateAwaitingMaintainer, report.State)
	require.NotNil(t, report.AssignedOfficerID)
	assert.Equal(t, uint(7), *report.AssignedOfficerID)
}

func TestAssignToOfficerOfficeMismatch(t *testing.T) {
	store := newFakeReportStore(&models.Report{ID: 1, Category: models.OfficeWaste, State: models.StateApproved})
	svc := newAssignment(store, map[uint]*models.Officer{7: techOfficer(7, models.OfficeRoads)}, nil)

	err := svc.AssignToOfficer(1, 7)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	report, _ := store.GetByID(1)
	assert.Nil(t, report.AssignedOfficerID)
}

func TestAssignToOfficerMissingTargets(t *testing.T) {
	store := newFakeReportStore(&models.Report{ID: 1, Category: models.OfficeWaste, State: models.StateApproved})
	svc := newAssignment(store, map[uint]*models.Officer{}, nil)

	assert.True(t, apperr.IsKind(svc.AssignToOfficer(99, 7), apperr.KindNotFound))
	assert.True(t, apperr.IsKind(svc.AssignToOfficer(1, 7), apperr.KindNotFound))
}

func TestAssignToOfficerWrongState(t *testing.T) {
	store := newFakeReportStore(
		&models.Report{ID: 1, Category: models.OfficeWaste, State: models.StatePending},
		&models.Report{ID: 2, Category: models.OfficeWaste, State: models.StateResolved},
	)
	svc := newAssignment(store, map[uint]*models.Officer{7: techOfficer(7, models.OfficeWaste)}, nil)

	assert.True(t, apperr.IsKind(svc.AssignToOfficer(1, 7), apperr.KindConflict))
	assert.True(t, apperr.IsKind(svc.AssignToOfficer(2, 7), apperr.KindConflict))
}

func TestAssignToMaintainer(t *testing.T) {
	store := newFakeReportStore(&models.Report{
		ID: 1, Category: models.OfficeWaste, State: models.StateAwaitingMaintainer,
		AssignedOfficerID: ptr(uint(7)),
	})
	svc := newAssignment(store, map[uint]*models.Officer{7: techOfficer(7, models.OfficeWaste)},
		map[uint]*models.Maintainer{3: wasteMaintainer(3, true)})

	require.NoError(t, svc.AssignToMaintainer(7, 1, 3))

	report, _ := store.GetByID(1)
	assert.Equal(t, models.StateWithMaintainer, report.State)
	require.NotNil(t, report.AssignedMaintainerID)
	assert.Equal(t, uint(3), *report.AssignedMaintainerID)
}

func TestAssignToMaintainerCategoryMismatch(t *testing.T) {
	store := newFakeReportStore(&models.Report{
		ID: 1, Category: models.OfficeRoads, State: models.StateAwaitingMaintainer,
		AssignedOfficerID: ptr(uint(7)),
	})
	svc := newAssignment(store, map[uint]*models.Officer{7: techOfficer(7, models.OfficeRoads)},
		map[uint]*models.Maintainer{3: wasteMaintainer(3, true)})

	err := svc.AssignToMaintainer(7, 1, 3)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	report, _ := store.GetByID(1)
	assert.Nil(t, report.AssignedMaintainerID)
}

func TestAssignToMaintainerInactive(t *testing.T) {
	store := newFakeReportStore(&models.Report{
		ID: 1, Category: models.OfficeWaste, State: models.StateAwaitingMaintainer,
		AssignedOfficerID: ptr(uint(7)),
	})
	svc := newAssignment(store, map[uint]*models.Officer{7: techOfficer(7, models.OfficeWaste)},
		map[uint]*models.Maintainer{3: wasteMaintainer(3, false)})

	assert.True(t, apperr.IsKind(svc.AssignToMaintainer(7, 1, 3), apperr.KindValidation))
}

func TestAssignToMaintainerTerminalReport(t *testing.T) {
	store := newFakeReportStore(&models.Report{
		ID: 1, Category: models.OfficeWaste, State: models.StateDeclined,
	})
	svc := newAssignment(store, nil, map[uint]*models.Maintainer{3: wasteMaintainer(3, true)})

	assert.True(t, apperr.IsKind(svc.AssignToMaintainer(7, 1, 3), apperr.KindConflict))
}

func TestAssignToMaintainerRequiresOfficer(t *testing.T) {
	store := newFakeReportStore(&models.Report{
		ID: 1, Category: models.OfficeWaste, State: models.StateApproved,
	})
	svc := newAssignment(store, nil, map[uint]*models.Maintainer{3: wasteMaintainer(3, true)})

	assert.True(t, apperr.IsKind(svc.AssignToMaintainer(7, 1, 3), apperr.KindConflict))
}

func TestAssignToMaintainerRejectsUnrelatedOfficer(t *testing.T) {
	store := newFakeReportStore(&models.Report{
		ID: 1, Category: models.OfficeWaste, State: models.StateAwaitingMaintainer,
		AssignedOfficerID: ptr(uint(7)),
	})
	svc := newAssignment(store, map[uint]*models.Officer{
		7: techOfficer(7, models.OfficeWaste),
		8: techOfficer(8, models.OfficeWaste),
	}, map[uint]*models.Maintainer{3: wasteMaintainer(3, true)})

	err := svc.AssignToMaintainer(8, 1, 3)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	report, _ := store.GetByID(1)
	assert.Nil(t, report.AssignedMaintainerID)

	assert.True(t, apperr.IsKind(svc.AssignToMaintainer(99, 1, 3), apperr.KindAuthorization))
}

func TestAssignToMaintainerAllowsPublicRelations(t *testing.T) {
	store := newFakeReportStore(&models.Report{
		ID: 1, Category: models.OfficeWaste, State: models.StateAwaitingMaintainer,
		AssignedOfficerID: ptr(uint(7)),
	})
	svc := newAssignment(store, map[uint]*models.Officer{
		5: prOfficer(5),
	}, map[uint]*models.Maintainer{3: wasteMaintainer(3, true)})

	require.NoError(t, svc.AssignToMaintainer(5, 1, 3))

	report, _ := store.GetByID(1)
	assert.Equal(t, models.StateWithMaintainer, report.State)
}

func TestRebindMaintainerKeepsOperationalState(t *testing.T) {
	store := newFakeReportStore(&models.Report{
		ID: 1, Category: models.OfficeWaste, State: models.StateInProgress,
		AssignedOfficerID: ptr(uint(7)), AssignedMaintainerID: ptr(uint(3)),
	})
	svc := newAssignment(store, map[uint]*models.Officer{7: techOfficer(7, models.OfficeWaste)},
		map[uint]*models.Maintainer{
			3: wasteMaintainer(3, true),
			4: wasteMaintainer(4, true),
		})

	require.NoError(t, svc.AssignToMaintainer(7, 1, 4))

	report, _ := store.GetByID(1)
	assert.Equal(t, models.StateInProgress, report.State)
	assert.Equal(t, uint(4), *report.AssignedMaintainerID)
}
