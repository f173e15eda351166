// Package stubapi implements an in-process reference server for the
// activity enrollment REST contract. Tests run it behind httptest to
// exercise the client end to end; cmd/stub-server runs it standalone
// for local development.
package stubapi

import (
	"errors"

	"github.com/aparkhill/activity-enrollment-client/internal/model"
)

// ErrNotFound is returned when a requested activity does not exist.
var ErrNotFound = errors.New("activity not found")

// ErrActivityFull is returned when an activity has no spots left.
var ErrActivityFull = errors.New("activity is full")

// ErrAlreadySignedUp is returned when an email enrolls twice.
var ErrAlreadySignedUp = errors.New("already signed up for this activity")

// ErrNotSignedUp is returned when withdrawing an email that is not enrolled.
var ErrNotSignedUp = errors.New("not signed up for this activity")

// ErrUserExists is returned when registering a taken username.
var ErrUserExists = errors.New("username already exists")

// ErrUserNotFound is returned when a username has no account.
var ErrUserNotFound = errors.New("user not found")

// Store is the stub server's persistence boundary. Activities keep
// their insertion order; participant lists keep enrollment order.
type Store interface {
	Activities() ([]model.Activity, error)
	AddParticipant(activity, email string) error
	RemoveParticipant(activity, email string) error

	CreateUser(username, passwordHash string) error
	UserHash(username string) (string, error)
}

// DefaultActivities seeds a fresh stub with a plausible school roster.
func DefaultActivities() []model.Activity {
	return []model.Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@hillview.edu", "daniel@hillview.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@hillview.edu", "sophia@hillview.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@hillview.edu", "olivia@hillview.edu"},
		},
	}
}
