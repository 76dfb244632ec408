package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportStateTerminal(t *testing.T) {
	assert.True(t, StateResolved.Terminal())
	assert.True(t, StateDeclined.Terminal())
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateWithMaintainer.Terminal())
}

func TestReportStateValid(t *testing.T) {
	assert.True(t, StateAwaitingMaintainer.Valid())
	assert.False(t, ReportState("ARCHIVED").Valid())
}

func TestParticipantCounterpart(t *testing.T) {
	assert.Equal(t, ParticipantMaintainer, ParticipantOfficer.Counterpart())
	assert.Equal(t, ParticipantOfficer, ParticipantMaintainer.Counterpart())
}

func TestOfficerPositionChecks(t *testing.T) {
	officer := Officer{Positions: []OfficerPosition{
		{Office: OfficeWaste, Role: RoleTechnicalStaff},
		{Office: OfficeRoads, Role: RolePublicRelations},
	}}

	assert.True(t, officer.HasRole(RoleTechnicalStaff))
	assert.False(t, officer.HasRole(RoleAdministrator))
	assert.True(t, officer.HasPosition(OfficeWaste, RoleTechnicalStaff))
	assert.False(t, officer.HasPosition(OfficeWaste, RolePublicRelations))
}

func TestMaintainerServices(t *testing.T) {
	m := Maintainer{Categories: []OfficeType{OfficeWaste, OfficeRoads}}
	assert.True(t, m.Services(OfficeWaste))
	assert.False(t, m.Services(OfficeGreenAreas))
}

func TestUserDisplayNameFallsBackToEmail(t *testing.T) {
	u := User{Email: "anon@test.local"}
	assert.Equal(t, "anon@test.local", u.DisplayName())

	u = User{Email: "c@test.local", FirstName: "Carla", LastName: "Verdi"}
	assert.Equal(t, "Carla Verdi", u.DisplayName())
}
