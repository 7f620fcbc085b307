package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_String(t *testing.T) {
	field := &Field{ID: "name", Kind: KindString, MinLength: testIntP(2), MaxLength: testIntP(5)}

	assert.NoError(t, Validate(field, "Ana", false))
	assert.Error(t, Validate(field, "A", false))
	assert.Error(t, Validate(field, "Anatole", false))
	assert.Error(t, Validate(field, 5, false))
}

func TestValidate_Pattern(t *testing.T) {
	field := &Field{ID: "code", Kind: KindString, Pattern: `^[A-Z]{3}$`}

	assert.NoError(t, Validate(field, "ABC", false))
	assert.Error(t, Validate(field, "abc", false))
}

func TestValidate_NumberBounds(t *testing.T) {
	field := &Field{ID: "age", Kind: KindInteger, Minimum: testFloatP(0), Maximum: testFloatP(120)}

	assert.NoError(t, Validate(field, 30.0, false))
	assert.Error(t, Validate(field, -1.0, false))
	assert.Error(t, Validate(field, 200.0, false))
	assert.Error(t, Validate(field, 1.5, false))
}

func TestValidate_Enum(t *testing.T) {
	field := &Field{ID: "style", Kind: KindString, Enum: []any{"mixed", "symbols"}}

	assert.NoError(t, Validate(field, "mixed", false))
	assert.Error(t, Validate(field, "other", false))
}

func TestValidate_ObjectRequiredAndClosed(t *testing.T) {
	field := &Field{
		ID:                   "profile",
		Kind:                 KindObject,
		Properties:           map[string]*Field{"name": {ID: "name", Kind: KindString}},
		Required:             map[string]struct{}{"name": {}},
		AdditionalProperties: false,
	}

	assert.NoError(t, Validate(field, map[string]any{"name": "Ana"}, false))
	assert.Error(t, Validate(field, map[string]any{}, false))
	assert.Error(t, Validate(field, map[string]any{"name": "Ana", "extra": 1}, false))
}

func TestValidate_ArrayShape(t *testing.T) {
	field := &Field{
		ID:          "vocabulary",
		Kind:        KindArray,
		Items:       &Field{ID: "word", Kind: KindString},
		MaxItems:    testIntP(2),
		UniqueItems: true,
	}

	assert.NoError(t, Validate(field, []any{"a", "b"}, false))
	assert.Error(t, Validate(field, []any{"a", "b", "c"}, false))
	assert.Error(t, Validate(field, []any{"a", "a"}, false))
}

func TestValidate_MapShape(t *testing.T) {
	field := &Field{
		ID:            "contacts",
		Kind:          KindMap,
		KeyPattern:    `^[A-Z][a-z]*$`,
		MaxProperties: testIntP(1),
		Values:        &Field{ID: "contact", Kind: KindString},
	}

	assert.NoError(t, Validate(field, map[string]any{"Ana": "sister"}, false))
	assert.Error(t, Validate(field, map[string]any{"ana": "sister"}, false))
	assert.Error(t, Validate(field, map[string]any{"Ana": "sister", "Bob": "brother"}, false))
}

func TestValidate_DeepRecursesIntoChildren(t *testing.T) {
	field := &Field{
		ID:   "profile",
		Kind: KindObject,
		Properties: map[string]*Field{
			"name": {ID: "name", Kind: KindString, MinLength: testIntP(1)},
		},
		PropertyOrder:        []string{"name"},
		AdditionalProperties: false,
	}

	assert.NoError(t, Validate(field, map[string]any{"name": "Ana"}, true))
	assert.Error(t, Validate(field, map[string]any{"name": ""}, true))
}

func TestValidate_NilFieldAllowsAnything(t *testing.T) {
	assert.NoError(t, Validate(nil, "anything", true))
}
