package orchestrator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/pkg/enum"

	"github.com/BurntSushi/toml"
)

// Persona is one announcer identity the engine can speak as. Personas are
// matched against conversation text in table order; the keyword sets are the
// whole selection policy, there is no other branching.
type Persona struct {
	ID        string   `toml:"id"`
	Name      string   `toml:"name"`
	QuestType string   `toml:"quest_type"`
	Keywords  []string `toml:"keywords"`

	// Greeting opens every announcement made under this persona.
	Greeting string `toml:"greeting"`
}

type personaFile struct {
	Personas []Persona `toml:"personas"`
}

// PersonaBook is an ordered persona table. Order matters: the first persona
// with a matching keyword wins, so earlier entries shadow later ones.
type PersonaBook struct {
	personas []Persona
}

// DefaultPersonaBook returns the built-in table used when no persona file is
// configured.
func DefaultPersonaBook() *PersonaBook {
	return &PersonaBook{personas: []Persona{
		{
			ID:        "mentor",
			Name:      "The Mentor",
			QuestType: "knowledge_quest",
			Keywords:  []string{"learn", "teach", "explain", "how", "why", "question", "guide"},
			Greeting:  "Knowledge is calling.",
		},
		{
			ID:        "challenger",
			Name:      "The Challenger",
			QuestType: "social_challenge",
			Keywords:  []string{"compete", "challenge", "versus", "win", "battle", "race"},
			Greeting:  "Think you can keep up?",
		},
		{
			ID:        "artisan",
			Name:      "The Artisan",
			QuestType: "creative_contest",
			Keywords:  []string{"create", "build", "design", "art", "meme", "draw"},
			Greeting:  "Time to make something.",
		},
		{
			ID:        "host",
			Name:      "The Host",
			QuestType: "community_building",
			Keywords:  []string{"welcome", "community", "together", "invite", "friend", "intro"},
			Greeting:  "Let's bring everyone in.",
		},
		{
			ID:        "wayfinder",
			Name:      "The Wayfinder",
			QuestType: "cross_protocol",
			Keywords:  []string{"bridge", "chain", "protocol", "swap", "onchain", "defi"},
			Greeting:  "New territory ahead.",
		},
	}}
}

// LoadPersonaBook reads an ordered persona table from a toml file. An empty
// path falls back to the built-in table.
func LoadPersonaBook(path string) (*PersonaBook, error) {
	if path == "" {
		return DefaultPersonaBook(), nil
	}

	var file personaFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, err
	}

	if len(file.Personas) == 0 {
		return nil, fmt.Errorf("persona file %s defines no persona", path)
	}

	for i, persona := range file.Personas {
		if persona.ID == "" {
			return nil, fmt.Errorf("persona at position %d has no id", i)
		}

		if _, err := enum.ToEnum[entity.QuestType](persona.QuestType); err != nil {
			return nil, fmt.Errorf("persona %s: %w", persona.ID, err)
		}

		if len(persona.Keywords) == 0 {
			return nil, fmt.Errorf("persona %s has no keywords", persona.ID)
		}

		for j, keyword := range persona.Keywords {
			file.Personas[i].Keywords[j] = strings.ToLower(keyword)
		}
	}

	return &PersonaBook{personas: file.Personas}, nil
}

// Select picks the first persona whose keyword set matches the text. The
// match is deterministic; only the no-match fallback draws a random persona.
func (b *PersonaBook) Select(text string) Persona {
	lowered := strings.ToLower(text)
	for _, persona := range b.personas {
		for _, keyword := range persona.Keywords {
			if strings.Contains(lowered, keyword) {
				return persona
			}
		}
	}

	return b.personas[rand.Intn(len(b.personas))]
}

// Get looks a persona up by id.
func (b *PersonaBook) Get(id string) (Persona, bool) {
	for _, persona := range b.personas {
		if persona.ID == id {
			return persona, true
		}
	}

	return Persona{}, false
}
