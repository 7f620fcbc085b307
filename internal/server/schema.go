package server

import (
	"github.com/indigofenix/aac/internal/memory"
	"github.com/indigofenix/aac/internal/memory/scripted"
)

// DefaultSchema is the memory schema every session in this daemon is built
// against. The engine treats schema as static per session (spec.md §3's
// lifecycle note); a deployment that needs per-tenant shapes would select
// among several such schemas by account, not mutate this one at runtime.
//
// Fields are a small AAC companion profile: who the person is, the core
// vocabulary they lean on, the people in their life, topics they like to
// talk about, and a scripted-backed suggestion list standing in for an
// external content store.
func DefaultSchema() *memory.Schema {
	profile := &memory.Field{
		ID:          "profile",
		Kind:        memory.KindObject,
		Title:       "Profile",
		Description: "Who this person is.",
		Opened:      true,
		Properties: map[string]*memory.Field{
			"name": {ID: "name", Kind: memory.KindString, Title: "Name", MinLength: intp(1)},
			"age":  {ID: "age", Kind: memory.KindInteger, Title: "Age", Minimum: floatp(0)},
			"communicationStyle": {
				ID:   "communicationStyle",
				Kind: memory.KindString,
				Enum: []any{"full sentences", "single words", "symbols", "mixed"},
			},
		},
		PropertyOrder:        []string{"name", "age", "communicationStyle"},
		Required:             map[string]struct{}{"name": {}},
		AdditionalProperties: false,
	}

	vocabulary := &memory.Field{
		ID:          "vocabulary",
		Kind:        memory.KindArray,
		Title:       "Core vocabulary",
		Description: "Words and phrases the person reaches for most often.",
		Items:       &memory.Field{ID: "word", Kind: memory.KindString, MinLength: intp(1)},
		MaxItems:    intp(500),
		UniqueItems: true,
	}

	contacts := &memory.Field{
		ID:          "contacts",
		Kind:        memory.KindMap,
		Title:       "Contacts",
		Description: "People the person talks about or to, keyed by first name.",
		KeyPattern:  `^[A-Z][a-zA-Z]*$`,
		Values: &memory.Field{
			ID:   "contact",
			Kind: memory.KindObject,
			Properties: map[string]*memory.Field{
				"relation": {ID: "relation", Kind: memory.KindString},
				"notes":    {ID: "notes", Kind: memory.KindString},
			},
			PropertyOrder:        []string{"relation", "notes"},
			AdditionalProperties: false,
		},
	}

	topics := &memory.Field{
		ID:                "topics",
		Kind:              memory.KindTopic,
		Title:             "Conversation topics",
		Description:       "Things the person likes to bring up, organized hierarchically.",
		MaxDepth:          intp(3),
		MaxBreadthPerNode: intp(20),
	}

	suggestions := &memory.Field{
		ID:          "suggestions",
		Kind:        memory.KindArray,
		Title:       "Suggested phrases",
		Description: "Phrase suggestions pulled from a shared content library.",
		Items:       &memory.Field{ID: "suggestion", Kind: memory.KindString},
		MaxItems:    intp(200),
		DB: scripted.Bind(scripted.Hooks{
			List: `var all = [
				"I'd like a drink of water, please.",
				"Can we take a short break?",
				"That made me really happy."
			];
			var window = limit > 0 ? limit : 20;
				return {items: all.slice(offset, offset + window), total: all.length};`,
		}),
	}

	return memory.NewSchema(
		[]string{"profile", "vocabulary", "contacts", "topics", "suggestions"},
		map[string]*memory.Field{
			"profile":     profile,
			"vocabulary":  vocabulary,
			"contacts":    contacts,
			"topics":      topics,
			"suggestions": suggestions,
		},
	)
}

func intp(v int) *int          { return &v }
func floatp(v float64) *float64 { return &v }
