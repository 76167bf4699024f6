package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPersonaSelect(t *testing.T) {
	book := DefaultPersonaBook()

	// Learning talk routes to the mentor.
	persona := book.Select("Can someone EXPLAIN how gas fees work?")
	require.Equal(t, "mentor", persona.ID)
	require.Equal(t, "knowledge_quest", persona.QuestType)

	persona = book.Select("let's race, winner takes the pot")
	require.Equal(t, "challenger", persona.ID)

	// When several keyword sets match, the earlier table entry wins.
	persona = book.Select("let's learn to compete")
	require.Equal(t, "mentor", persona.ID)

	// Identical input always selects the same persona.
	for i := 0; i < 10; i++ {
		require.Equal(t, "artisan", book.Select("post your best meme").ID)
	}
}

func TestPersonaSelectFallback(t *testing.T) {
	book := DefaultPersonaBook()

	persona := book.Select("zzz")
	_, ok := book.Get(persona.ID)
	require.True(t, ok)
}

func TestLoadPersonaBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[personas]]
id = "quizmaster"
name = "The Quizmaster"
quest_type = "knowledge_quest"
keywords = ["Trivia", "quiz"]
greeting = "Pencils ready."
`), 0644))

	book, err := LoadPersonaBook(path)
	require.NoError(t, err)

	// Keywords are matched case-insensitively.
	persona := book.Select("TRIVIA night anyone?")
	require.Equal(t, "quizmaster", persona.ID)
	require.Equal(t, "Pencils ready.", persona.Greeting)

	// An empty path falls back to the built-in table.
	book, err = LoadPersonaBook("")
	require.NoError(t, err)
	_, ok := book.Get("mentor")
	require.True(t, ok)
}

func TestLoadPersonaBookInvalid(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.toml")
	require.NoError(t, os.WriteFile(empty, []byte(""), 0644))
	_, err := LoadPersonaBook(empty)
	require.Error(t, err)

	badType := filepath.Join(dir, "bad_type.toml")
	require.NoError(t, os.WriteFile(badType, []byte(`
[[personas]]
id = "glitch"
quest_type = "time_travel"
keywords = ["when"]
`), 0644))
	_, err = LoadPersonaBook(badType)
	require.Error(t, err)

	_, err = LoadPersonaBook(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}
