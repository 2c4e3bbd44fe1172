// Package profile stores developer profiles and enforces the rules for their
// experience and education lists.
package profile

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// MaxEntries bounds the experience and education lists of one profile.
const MaxEntries = 2

var (
	ErrNotFound = errors.New("profile not found")
	// ErrInvalidID is returned for owner ids that cannot name a document. It
	// matches ErrNotFound under errors.Is.
	ErrInvalidID     = errors.Wrap(ErrNotFound, "malformed owner id")
	ErrMaxEntries    = errors.New("User has max amount of this type of post")
	ErrEntryNotFound = errors.New("entry not found")
)

// Optional marks whether a field was supplied, so an empty string can be told
// apart from an omitted key.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// FromPtr is present when p is non-nil.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Optional[T]{}
	}
	return Some(*p)
}

// Social holds the profile's social links. Nil means the link was not given.
type Social struct {
	YouTube   *string `json:"youtube,omitempty"`
	Facebook  *string `json:"facebook,omitempty"`
	Twitter   *string `json:"twitter,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
	LinkedIn  *string `json:"linkedin,omitempty"`
}

type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldOfStudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// Profile is a stored profile with its owner's name and avatar joined in.
type Profile struct {
	OwnerID        string       `json:"ownerId"`
	OwnerName      string       `json:"ownerName,omitempty"`
	OwnerAvatar    string       `json:"ownerAvatar,omitempty"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Bio            string       `json:"bio,omitempty"`
	Status         string       `json:"status,omitempty"`
	GitHubUsername string       `json:"githubUsername,omitempty"`
	Skills         []string     `json:"skills"`
	Social         Social       `json:"social"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Date           time.Time    `json:"date"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// User is the account record a profile belongs to.
type User struct {
	ID     string
	Name   string
	Email  string
	Avatar string
	Date   time.Time
}

// Post is only tracked by author so an account can be removed with its posts.
type Post struct {
	ID     string
	Author string
	Text   string
}

// Fields are the upsert inputs. Only Set fields are written. Skills is the raw
// comma-separated string.
type Fields struct {
	Company        Optional[string]
	Website        Optional[string]
	Location       Optional[string]
	Bio            Optional[string]
	Status         Optional[string]
	GitHubUsername Optional[string]
	Skills         Optional[string]
	YouTube        Optional[string]
	Facebook       Optional[string]
	Twitter        Optional[string]
	Instagram      Optional[string]
	LinkedIn       Optional[string]
}

type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

// Service is the profile repository.
//
// Read-modify-write operations are atomic per owner. DeleteCascade is not: it
// removes posts, then the profile, then the user, and stops at the first failure.
type Service interface {
	GetByOwner(ctx context.Context, ownerID string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	// GetByOwnerID looks up a profile by an id taken from the URL. Malformed ids
	// return ErrInvalidID.
	GetByOwnerID(ctx context.Context, rawID string) (*Profile, error)
	Upsert(ctx context.Context, ownerID string, fields Fields) (*Profile, error)
	DeleteCascade(ctx context.Context, ownerID string) error
	AddExperience(ctx context.Context, ownerID string, in ExperienceInput) (*Profile, error)
	RemoveExperience(ctx context.Context, ownerID, expID string) (*Profile, error)
	AddEducation(ctx context.Context, ownerID string, in EducationInput) (*Profile, error)
	RemoveEducation(ctx context.Context, ownerID, eduID string) (*Profile, error)
}

// IDGenerator returns identifiers for new experience and education entries.
type IDGenerator func() string

type options struct {
	newID IDGenerator
	now   func() time.Time
}

// Option configures a store.
type Option func(*options)

// WithIDGenerator replaces the default UUIDv4 entry ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) { o.newID = gen }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
