package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// NewApplication Tests
// =============================================================================

func TestNewApplication_Valid(t *testing.T) {
	app, err := NewApplication("My App", "compose.yaml.tmpl", []string{"values.yaml"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(app.ReferenceID, "app_"))
	assert.Equal(t, "My App", app.Name)
	assert.Equal(t, "my-app", app.Slug)
	assert.Equal(t, "compose.yaml.tmpl", app.ComposeFile)
	assert.Equal(t, []string{"values.yaml"}, app.ValueSources)
	assert.Equal(t, StatusPending, app.Status)
	assert.False(t, app.CreatedAt.IsZero())
}

func TestNewApplication_UniqueReferenceIDs(t *testing.T) {
	a, err := NewApplication("App One", "compose.yaml", nil)
	require.NoError(t, err)
	b, err := NewApplication("App Two", "compose.yaml", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ReferenceID, b.ReferenceID)
}

func TestNewApplication_EmptyName(t *testing.T) {
	_, err := NewApplication("", "compose.yaml", nil)
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestNewApplication_InvalidName(t *testing.T) {
	_, err := NewApplication("bad/name", "compose.yaml", nil)
	assert.ErrorIs(t, err, ErrNameInvalidChars)
}

func TestNewApplication_NameTooLong(t *testing.T) {
	_, err := NewApplication(strings.Repeat("a", 101), "compose.yaml", nil)
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestNewApplication_MissingComposeFile(t *testing.T) {
	_, err := NewApplication("ok", "  ", nil)
	assert.ErrorIs(t, err, ErrComposeFileRequired)
}

// =============================================================================
// Slug Tests
// =============================================================================

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "my-app", GenerateSlug("My App"))
	assert.Equal(t, "a-b-c", GenerateSlug("a  b  c"))
	assert.Equal(t, "trimmed", GenerateSlug(" trimmed "))
	assert.Equal(t, "already-fine", GenerateSlug("already-fine"))
}

// =============================================================================
// Status Transition Tests
// =============================================================================

func TestTransition_PendingToRunning(t *testing.T) {
	app, err := NewApplication("app", "compose.yaml", nil)
	require.NoError(t, err)

	require.NoError(t, app.Transition(StatusRunning))
	assert.Equal(t, StatusRunning, app.Status)
}

func TestTransition_RunningToStopped(t *testing.T) {
	app, _ := NewApplication("app", "compose.yaml", nil)
	require.NoError(t, app.Transition(StatusRunning))
	require.NoError(t, app.Transition(StatusStopped))
	assert.Equal(t, StatusStopped, app.Status)
}

func TestTransition_StoppedToRunning(t *testing.T) {
	app, _ := NewApplication("app", "compose.yaml", nil)
	require.NoError(t, app.Transition(StatusRunning))
	require.NoError(t, app.Transition(StatusStopped))
	require.NoError(t, app.Transition(StatusRunning))
}

func TestTransition_PendingToStoppedRejected(t *testing.T) {
	app, _ := NewApplication("app", "compose.yaml", nil)
	err := app.Transition(StatusStopped)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPending, app.Status)
}

func TestTransition_DestroyedIsTerminal(t *testing.T) {
	app, _ := NewApplication("app", "compose.yaml", nil)
	require.NoError(t, app.Transition(StatusDestroyed))

	err := app.Transition(StatusRunning)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_FailedCanRecover(t *testing.T) {
	app, _ := NewApplication("app", "compose.yaml", nil)
	require.NoError(t, app.Transition(StatusFailed))
	require.NoError(t, app.Transition(StatusRunning))
}
