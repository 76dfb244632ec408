package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicreport/internal/auth"
	"civicreport/internal/config"
	"civicreport/internal/models"
	"civicreport/internal/repository"
	"civicreport/internal/service"
	"civicreport/internal/testutil"
)

func newOfficerService(tc *testutil.TestContainers) *service.OfficerService {
	officers := repository.NewOfficerRepository(tc.DB)
	reports := repository.NewReportRepository(tc.DB)
	authService := auth.NewService(&config.JWTConfig{Secret: "integration-test-secret", Expiration: time.Hour})
	return service.NewOfficerService(officers, reports, authService)
}

// Removing a position releases only the reports that position covered. The
// officer keeps servicing offices still in the new position set.
func TestUpdateReleasesReportsForRemovedPosition(t *testing.T) {
	tc := testutil.SetupTestContainers(t)
	defer tc.Cleanup(t)
	f := testutil.SetupFixtures(t, tc.DB)

	reports := repository.NewReportRepository(tc.DB)
	officer := testutil.CreateOfficer(t, tc.DB, "two-hats@test.local", "Dario", "Neri",
		[]models.OfficerPosition{
			{Office: models.OfficeWaste, Role: models.RoleTechnicalStaff},
			{Office: models.OfficeRoads, Role: models.RoleTechnicalStaff},
		})

	wasteReport := testutil.CreateReport(t, tc.DB, f.Citizen.ID, models.OfficeWaste)
	roadsReport := testutil.CreateReport(t, tc.DB, f.Citizen.ID, models.OfficeRoads)
	for _, r := range []*models.Report{wasteReport, roadsReport} {
		ok, err := reports.Transition(r.ID, models.StatePending, models.StateApproved, nil)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = reports.AssignOfficer(r.ID, officer.ID, models.StateApproved)
		require.NoError(t, err)
		require.True(t, ok)
	}

	svc := newOfficerService(tc)
	_, err := svc.Update(officer.ID, service.OfficerInput{
		Name:    "Dario",
		Surname: "Neri",
		Email:   "two-hats@test.local",
		Positions: []models.OfficerPosition{
			{Office: models.OfficeRoads, Role: models.RoleTechnicalStaff},
		},
	})
	require.NoError(t, err)

	released, err := reports.GetByID(wasteReport.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, released.State)
	assert.Nil(t, released.AssignedOfficerID)
	assert.Nil(t, released.AssignedMaintainerID)

	kept, err := reports.GetByID(roadsReport.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingMaintainer, kept.State)
	require.NotNil(t, kept.AssignedOfficerID)
	assert.Equal(t, officer.ID, *kept.AssignedOfficerID)
}

// Deleting an officer must not trip over resolved reports that still carry
// the maintainer who handled them. Those rows keep their maintainer for the
// record; only live reports go back to PENDING.
func TestDeleteOfficerKeepsResolvedMaintainerHistory(t *testing.T) {
	tc := testutil.SetupTestContainers(t)
	defer tc.Cleanup(t)
	f := testutil.SetupFixtures(t, tc.DB)

	reports := repository.NewReportRepository(tc.DB)
	resolved := testutil.CreateReport(t, tc.DB, f.Citizen.ID, models.OfficeWaste)

	ok, err := reports.Transition(resolved.ID, models.StatePending, models.StateApproved, nil)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = reports.AssignOfficer(resolved.ID, f.Technician.ID, models.StateApproved)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = reports.AssignMaintainer(resolved.ID, f.Maintainer.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = reports.Transition(resolved.ID, models.StateWithMaintainer, models.StateResolved, nil)
	require.NoError(t, err)
	require.True(t, ok)

	live := testutil.CreateReport(t, tc.DB, f.Citizen.ID, models.OfficeWaste)
	ok, err = reports.Transition(live.ID, models.StatePending, models.StateApproved, nil)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = reports.AssignOfficer(live.ID, f.Technician.ID, models.StateApproved)
	require.NoError(t, err)
	require.True(t, ok)

	svc := newOfficerService(tc)
	require.NoError(t, svc.Delete(f.Technician.ID))

	history, err := reports.GetByID(resolved.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateResolved, history.State)
	assert.Nil(t, history.AssignedOfficerID)
	require.NotNil(t, history.AssignedMaintainerID)
	assert.Equal(t, f.Maintainer.ID, *history.AssignedMaintainerID)

	reopened, err := reports.GetByID(live.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, reopened.State)
	assert.Nil(t, reopened.AssignedOfficerID)
}
