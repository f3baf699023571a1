package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

var (
	userCounter     uint64
	roomCounter     uint64
	teamCounter     uint64
	bookingCounter  uint64
	priorityCounter uint64
	sessionCounter  uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the canonical booking day used by fixtures in the
// storage layout.
func ReferenceDate() string {
	return referenceTime.Format("2006-01-02")
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic account record.
type UserFixture struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         "user",
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserRole sets the role on the generated fixture.
func WithUserRole(role string) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserActive sets the active flag on the generated fixture.
func WithUserActive(active bool) UserOption {
	return func(f *UserFixture) {
		f.IsActive = active
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		PasswordHash: f.PasswordHash,
		Role:         f.Role,
		IsActive:     f.IsActive,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic meeting room record.
type RoomFixture struct {
	ID        string
	Name      string
	Capacity  int
	IsActive  bool
	CreatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		Capacity:  int(4 + idx%4),
		IsActive:  true,
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomActive sets the active flag on the generated fixture.
func WithRoomActive(active bool) RoomOption {
	return func(f *RoomFixture) {
		f.IsActive = active
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
	}
}

// ----------------------------- Team fixtures -----------------------------

// TeamFixture represents a deterministic team record.
type TeamFixture struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// TeamOption configures the generated team fixture.
type TeamOption func(*TeamFixture)

// NewTeamFixture returns a deterministic team fixture with optional overrides.
func NewTeamFixture(opts ...TeamOption) TeamFixture {
	idx := atomic.AddUint64(&teamCounter, 1)
	fixture := TeamFixture{
		ID:        fmt.Sprintf("team-%03d", idx),
		Name:      fmt.Sprintf("Team %03d", idx),
		IsActive:  true,
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTeamName overrides the generated team name.
func WithTeamName(name string) TeamOption {
	return func(f *TeamFixture) {
		f.Name = name
	}
}

// Persistence returns the fixture as a persistence.Team value.
func (f TeamFixture) Persistence() persistence.Team {
	return persistence.Team{
		ID:        f.ID,
		Name:      f.Name,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
	}
}

// --------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic booking record. Successive
// fixtures occupy consecutive non-overlapping hour slots on the reference day.
type BookingFixture struct {
	ID          string
	UserID      string
	RoomID      string
	Date        string
	StartTime   string
	EndTime     string
	Purpose     string
	BookingType string
	Team        *string
	Status      string
	CreatedAt   time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture with optional
// overrides.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	hour := int(idx % 23)
	fixture := BookingFixture{
		ID:          fmt.Sprintf("booking-%03d", idx),
		UserID:      fmt.Sprintf("user-%03d", idx),
		RoomID:      fmt.Sprintf("room-%03d", idx),
		Date:        ReferenceDate(),
		StartTime:   fmt.Sprintf("%02d:00", hour),
		EndTime:     fmt.Sprintf("%02d:00", hour+1),
		Purpose:     fmt.Sprintf("Meeting %03d", idx),
		BookingType: persistence.BookingTypePersonal,
		Status:      persistence.BookingStatusConfirmed,
		CreatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingUser sets the owning user ID.
func WithBookingUser(userID string) BookingOption {
	return func(f *BookingFixture) {
		f.UserID = userID
	}
}

// WithBookingRoom sets the room ID.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingDate sets the booking day.
func WithBookingDate(date string) BookingOption {
	return func(f *BookingFixture) {
		f.Date = date
	}
}

// WithBookingSlot sets the start and end wall-clock times.
func WithBookingSlot(startTime, endTime string) BookingOption {
	return func(f *BookingFixture) {
		f.StartTime = startTime
		f.EndTime = endTime
	}
}

// WithBookingStatus sets the booking status.
func WithBookingStatus(status string) BookingOption {
	return func(f *BookingFixture) {
		f.Status = status
	}
}

// WithBookingTeam marks the booking as a team booking for the named team.
func WithBookingTeam(team string) BookingOption {
	return func(f *BookingFixture) {
		value := team
		f.Team = &value
		f.BookingType = persistence.BookingTypeTeam
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	var team *string
	if f.Team != nil {
		value := *f.Team
		team = &value
	}
	return persistence.Booking{
		ID:          f.ID,
		UserID:      f.UserID,
		RoomID:      f.RoomID,
		Date:        f.Date,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		Purpose:     f.Purpose,
		BookingType: f.BookingType,
		Team:        team,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
	}
}

// ----------------------- Priority request fixtures -----------------------

// PriorityRequestFixture represents a deterministic escalation request.
type PriorityRequestFixture struct {
	ID                string
	RequesterID       string
	ConflictBookingID string
	Reason            string
	Status            string
	ReviewedBy        *string
	ReviewedAt        *time.Time
	CreatedAt         time.Time
}

// PriorityRequestOption configures the generated priority request fixture.
type PriorityRequestOption func(*PriorityRequestFixture)

// NewPriorityRequestFixture returns a deterministic pending priority request
// with optional overrides.
func NewPriorityRequestFixture(opts ...PriorityRequestOption) PriorityRequestFixture {
	idx := atomic.AddUint64(&priorityCounter, 1)
	fixture := PriorityRequestFixture{
		ID:                fmt.Sprintf("priority-%03d", idx),
		RequesterID:       fmt.Sprintf("user-%03d", idx),
		ConflictBookingID: fmt.Sprintf("booking-%03d", idx),
		Reason:            "Urgent client meeting",
		Status:            persistence.PriorityStatusPending,
		CreatedAt:         referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPriorityRequester sets the requesting user ID.
func WithPriorityRequester(userID string) PriorityRequestOption {
	return func(f *PriorityRequestFixture) {
		f.RequesterID = userID
	}
}

// WithPriorityConflictBooking sets the conflicting booking ID.
func WithPriorityConflictBooking(bookingID string) PriorityRequestOption {
	return func(f *PriorityRequestFixture) {
		f.ConflictBookingID = bookingID
	}
}

// WithPriorityStatus sets the request status.
func WithPriorityStatus(status string) PriorityRequestOption {
	return func(f *PriorityRequestFixture) {
		f.Status = status
	}
}

// Persistence returns the fixture as a persistence.PriorityRequest value.
func (f PriorityRequestFixture) Persistence() persistence.PriorityRequest {
	var reviewedBy *string
	if f.ReviewedBy != nil {
		value := *f.ReviewedBy
		reviewedBy = &value
	}
	var reviewedAt *time.Time
	if f.ReviewedAt != nil {
		value := *f.ReviewedAt
		reviewedAt = &value
	}
	return persistence.PriorityRequest{
		ID:                f.ID,
		RequesterID:       f.RequesterID,
		ConflictBookingID: f.ConflictBookingID,
		Reason:            f.Reason,
		Status:            f.Status,
		ReviewedBy:        reviewedBy,
		ReviewedAt:        reviewedAt,
		CreatedAt:         f.CreatedAt,
	}
}

// --------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional
// overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: referenceTime.Add(8 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUserID sets the user ID.
func WithSessionUserID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = id
	}
}

// WithSessionToken overrides the token value.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiresAt sets the expiration timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevokedAt sets the optional revoked timestamp.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	var revoked *time.Time
	if f.RevokedAt != nil {
		value := *f.RevokedAt
		revoked = &value
	}
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: revoked,
	}
}
