package editor

import (
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	clk := fakeclock.NewFakeClock(time.Date(2024, 8, 7, 12, 0, 0, 0, time.UTC))
	store := NewStore(time.Hour, clk)

	session, err := store.Create("Python")
	require.NoError(t, err)
	assert.Len(t, session.ID, 10)
	assert.Equal(t, "python", session.Language)
	assert.Contains(t, session.Code, "collaborative Python session")
	assert.Equal(t, clk.Now(), session.CreatedAt)

	got, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestCreateSessionLanguages(t *testing.T) {
	store := NewStore(time.Hour, nil)

	session, err := store.Create("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, session.Language)

	_, err = store.Create("cobol")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	for _, lang := range Languages {
		s, err := store.Create(lang.ID)
		require.NoError(t, err, lang.ID)
		assert.NotEmpty(t, s.Code, lang.ID)
	}
}

func TestUpdateCode(t *testing.T) {
	clk := fakeclock.NewFakeClock(time.Date(2024, 8, 7, 12, 0, 0, 0, time.UTC))
	store := NewStore(time.Hour, clk)
	session, err := store.Create("css")
	require.NoError(t, err)

	clk.Increment(time.Minute)
	updated, err := store.UpdateCode(session.ID, "p { color: red; }")
	require.NoError(t, err)
	assert.Equal(t, "p { color: red; }", updated.Code)
	assert.Equal(t, session.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clk.Now(), updated.UpdatedAt)

	got, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = store.UpdateCode("missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionsExpire(t *testing.T) {
	clk := fakeclock.NewFakeClock(time.Date(2024, 8, 7, 12, 0, 0, 0, time.UTC))
	store := NewStore(time.Hour, clk)
	session, err := store.Create("java")
	require.NoError(t, err)

	clk.Increment(2 * time.Hour)
	_, err = store.Get(session.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.Prune())
}

func TestLanguageByID(t *testing.T) {
	lang, ok := LanguageByID(" TypeScript ")
	require.True(t, ok)
	assert.Equal(t, "typescript", lang.ID)

	_, ok = LanguageByID("rust")
	assert.False(t, ok)
}

func TestUsers(t *testing.T) {
	names := make([]string, 0, len(Users))
	for _, u := range Users {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"Alice", "Bob", "Charlie", "You"}, names)
}
