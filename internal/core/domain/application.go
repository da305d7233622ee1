// Package domain contains the core domain types and validation logic.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// Name validation errors
	ErrNameRequired     = errors.New("name is required")
	ErrNameTooLong      = errors.New("name must be at most 100 characters")
	ErrNameInvalidChars = errors.New("name can only contain alphanumeric characters, spaces, and hyphens")

	// Application validation errors
	ErrComposeFileRequired = errors.New("compose file is required")

	// State transition errors
	ErrInvalidTransition = errors.New("invalid status transition")
)

// =============================================================================
// Application Status
// =============================================================================

type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusRunning   ApplicationStatus = "running"
	StatusStopped   ApplicationStatus = "stopped"
	StatusFailed    ApplicationStatus = "failed"
	StatusDestroyed ApplicationStatus = "destroyed"
)

// validTransitions maps each status to the statuses it may move to.
var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:   {StatusRunning, StatusFailed, StatusDestroyed},
	StatusRunning:   {StatusRunning, StatusStopped, StatusFailed, StatusDestroyed},
	StatusStopped:   {StatusRunning, StatusFailed, StatusDestroyed},
	StatusFailed:    {StatusRunning, StatusDestroyed},
	StatusDestroyed: {},
}

// CanTransition reports whether a status change is allowed.
func (s ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// =============================================================================
// Application
// =============================================================================

// Application is a registry entry for a deployed compose stack: which
// compose template it came from, which value sources configured it, and
// its lifecycle status.
type Application struct {
	ID           int               `json:"-"`
	ReferenceID  string            `json:"id"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	ComposeFile  string            `json:"compose_file"`
	ValueSources []string          `json:"value_sources,omitempty"`
	Status       ApplicationStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewApplication creates a pending application with a fresh reference ID.
// Returns an error if validation fails.
func NewApplication(name, composeFile string, valueSources []string) (*Application, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(composeFile) == "" {
		return nil, ErrComposeFileRequired
	}

	now := time.Now().UTC()
	return &Application{
		ReferenceID:  "app_" + uuid.New().String()[:8],
		Name:         name,
		Slug:         GenerateSlug(name),
		ComposeFile:  composeFile,
		ValueSources: valueSources,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Transition moves the application to a new status, enforcing the state
// machine.
func (a *Application) Transition(to ApplicationStatus) error {
	if !a.Status.CanTransition(to) {
		return ErrInvalidTransition
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// =============================================================================
// Validation Functions (Pure)
// =============================================================================

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-]+$`)

// ValidateName validates an application name.
func ValidateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > 100 {
		return ErrNameTooLong
	}
	if !nameRegex.MatchString(name) {
		return ErrNameInvalidChars
	}
	return nil
}

// GenerateSlug generates a URL-safe slug from a name. The slug doubles
// as the compose project name, so it must be stable for a given name.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
