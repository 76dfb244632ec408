package models

import (
	"time"
)

// ReportState is the lifecycle state of a report. The two assigned states are
// distinct on purpose: whether a maintainer is bound changes who is allowed to
// act on the report, so it is persisted, not derived.
type ReportState string

const (
	StatePending             ReportState = "PENDING"
	StateApproved            ReportState = "APPROVED"
	StateDeclined            ReportState = "DECLINED"
	StateAwaitingMaintainer  ReportState = "ASSIGNED_AWAITING_MAINTAINER"
	StateWithMaintainer      ReportState = "ASSIGNED_WITH_MAINTAINER"
	StateInProgress          ReportState = "IN_PROGRESS"
	StateSuspended           ReportState = "SUSPENDED"
	StateResolved            ReportState = "RESOLVED"
)

// Terminal reports that no transition may leave RESOLVED or DECLINED.
func (s ReportState) Terminal() bool {
	return s == StateResolved || s == StateDeclined
}

// Valid reports whether s is a known state value.
func (s ReportState) Valid() bool {
	switch s {
	case StatePending, StateApproved, StateDeclined, StateAwaitingMaintainer,
		StateWithMaintainer, StateInProgress, StateSuspended, StateResolved:
		return true
	}
	return false
}

// OfficeType classifies a report. Each category maps to exactly one municipal
// office, so the same enum doubles as the office identifier on officer roles.
type OfficeType string

const (
	OfficeWaterSupply          OfficeType = "water_supply"
	OfficeArchitecturalBarriers OfficeType = "architectural_barriers"
	OfficePublicLighting       OfficeType = "public_lighting"
	OfficeWaste                OfficeType = "waste"
	OfficeRoadSigns            OfficeType = "road_signs_and_traffic_lights"
	OfficeRoads                OfficeType = "roads_and_urban_furnishings"
	OfficeGreenAreas           OfficeType = "public_green_areas_and_playgrounds"
	OfficeOrganization         OfficeType = "organization"
	OfficeOther                OfficeType = "other"
)

// AllOfficeTypes lists every valid category, in display order.
var AllOfficeTypes = []OfficeType{
	OfficeWaterSupply,
	OfficeArchitecturalBarriers,
	OfficePublicLighting,
	OfficeWaste,
	OfficeRoadSigns,
	OfficeRoads,
	OfficeGreenAreas,
	OfficeOrganization,
	OfficeOther,
}

func (o OfficeType) Valid() bool {
	for _, t := range AllOfficeTypes {
		if o == t {
			return true
		}
	}
	return false
}

// OfficerRole is the role an officer holds within one office.
type OfficerRole string

const (
	RolePublicRelations OfficerRole = "PUBLIC_RELATIONS"
	RoleTechnicalStaff  OfficerRole = "TECHNICAL_STAFF"
	RoleAdministrator   OfficerRole = "ADMINISTRATOR"
)

func (r OfficerRole) Valid() bool {
	switch r {
	case RolePublicRelations, RoleTechnicalStaff, RoleAdministrator:
		return true
	}
	return false
}

// ParticipantType tags one side of the internal channel. It is a closed set:
// only the assigned technical officer and the assigned maintainer ever appear.
type ParticipantType string

const (
	ParticipantOfficer    ParticipantType = "TECHNICAL_STAFF"
	ParticipantMaintainer ParticipantType = "MAINTAINER"
)

func (p ParticipantType) Valid() bool {
	return p == ParticipantOfficer || p == ParticipantMaintainer
}

// Counterpart returns the other side of the internal channel.
func (p ParticipantType) Counterpart() ParticipantType {
	if p == ParticipantOfficer {
		return ParticipantMaintainer
	}
	return ParticipantOfficer
}

// ParticipantRef identifies one party of the internal channel.
type ParticipantRef struct {
	Type ParticipantType `json:"type"`
	ID   uint            `json:"id"`
}

// PublicSenderType tags the sender of a public message.
type PublicSenderType string

const (
	SenderCitizen PublicSenderType = "citizen"
	SenderOfficer PublicSenderType = "officer"
)

func (s PublicSenderType) Valid() bool {
	return s == SenderCitizen || s == SenderOfficer
}

// NotificationType distinguishes status-change notifications from message
// notifications.
type NotificationType string

const (
	NotificationStatusChange NotificationType = "STATUS_CHANGE"
	NotificationMessage      NotificationType = "MESSAGE"
)

// User is a citizen account.
type User struct {
	ID           uint      `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DisplayName is the name shown next to a citizen's public messages.
func (u *User) DisplayName() string {
	name := u.FirstName + " " + u.LastName
	if name == " " {
		return u.Email
	}
	return name
}

// OfficerPosition is one (office, role) pair held by an officer.
type OfficerPosition struct {
	Office OfficeType  `json:"office" db:"office"`
	Role   OfficerRole `json:"role" db:"role"`
}

// Officer is a municipal employee. An officer may hold several positions
// across offices, e.g. technical staff for waste and PR for roads.
type Officer struct {
	ID           uint              `json:"id" db:"id"`
	Name         string            `json:"name" db:"name"`
	Surname      string            `json:"surname" db:"surname"`
	Email        string            `json:"email" db:"email"`
	PasswordHash string            `json:"-" db:"password_hash"`
	Positions    []OfficerPosition `json:"positions"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// HasRole reports whether the officer holds role in any office.
func (o *Officer) HasRole(role OfficerRole) bool {
	for _, p := range o.Positions {
		if p.Role == role {
			return true
		}
	}
	return false
}

// HasPosition reports whether the officer holds role within office.
func (o *Officer) HasPosition(office OfficeType, role OfficerRole) bool {
	for _, p := range o.Positions {
		if p.Office == office && p.Role == role {
			return true
		}
	}
	return false
}

// DisplayName is the name shown next to an officer's messages.
func (o *Officer) DisplayName() string {
	return o.Name + " " + o.Surname
}

// Maintainer is an external company bound to reports for operational work.
type Maintainer struct {
	ID           uint         `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"`
	Categories   []OfficeType `json:"categories"`
	Active       bool         `json:"active" db:"active"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// Services reports whether the maintainer covers category.
func (m *Maintainer) Services(category OfficeType) bool {
	for _, c := range m.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Report is a citizen-submitted issue. It is never deleted; the state column
// plus the two nullable assignment FKs carry the whole lifecycle.
type Report struct {
	ID                   uint        `json:"id" db:"id"`
	Title                string      `json:"title" db:"title"`
	Description          string      `json:"description" db:"description"`
	Category             OfficeType  `json:"category" db:"category"`
	State                ReportState `json:"state" db:"state"`
	AuthorID             *uint       `json:"author_id,omitempty" db:"author_id"`
	Anonymity            bool        `json:"anonymity" db:"anonymity"`
	Latitude             float64     `json:"latitude" db:"latitude"`
	Longitude            float64     `json:"longitude" db:"longitude"`
	Address              *string     `json:"address,omitempty" db:"address"`
	Photos               []string    `json:"photos" db:"photos"`
	AssignedOfficerID    *uint       `json:"assigned_officer_id,omitempty" db:"assigned_officer_id"`
	AssignedMaintainerID *uint       `json:"assigned_maintainer_id,omitempty" db:"assigned_maintainer_id"`
	DeclineReason        *string     `json:"decline_reason,omitempty" db:"decline_reason"`
	SuspendReason        *string     `json:"suspend_reason,omitempty" db:"suspend_reason"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
}

// InternalMessage is one message on the officer/maintainer channel.
// Sender and receiver names are resolved from the directories at read time
// and never stored with the row.
type InternalMessage struct {
	ID           uint            `json:"id" db:"id"`
	ReportID     uint            `json:"report_id" db:"report_id"`
	SenderType   ParticipantType `json:"sender_type" db:"sender_type"`
	SenderID     uint            `json:"sender_id" db:"sender_id"`
	ReceiverType ParticipantType `json:"receiver_type" db:"receiver_type"`
	ReceiverID   uint            `json:"receiver_id" db:"receiver_id"`
	Message      string          `json:"message" db:"message"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`

	SenderName   string `json:"sender_name,omitempty" db:"-"`
	ReceiverName string `json:"receiver_name,omitempty" db:"-"`
}

// PublicMessage is one message on the citizen/officer channel.
type PublicMessage struct {
	ID         uint             `json:"id" db:"id"`
	ReportID   uint             `json:"report_id" db:"report_id"`
	SenderType PublicSenderType `json:"sender_type" db:"sender_type"`
	SenderID   uint             `json:"sender_id" db:"sender_id"`
	Message    string           `json:"message" db:"message"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`

	SenderName string `json:"sender_name,omitempty" db:"-"`
}

// Notification is a best-effort record of something that happened to a report
// a user cares about.
type Notification struct {
	ID        uint             `json:"id" db:"id"`
	UserID    uint             `json:"user_id" db:"user_id"`
	ReportID  uint             `json:"report_id" db:"report_id"`
	Type      NotificationType `json:"type" db:"type"`
	Message   string           `json:"message" db:"message"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// ReportFollow subscribes a user to status-change notifications for a report.
type ReportFollow struct {
	UserID    uint      `json:"user_id" db:"user_id"`
	ReportID  uint      `json:"report_id" db:"report_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
