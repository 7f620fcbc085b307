package memory

func testIntP(v int) *int          { return &v }
func testFloatP(v float64) *float64 { return &v }

// testSchema builds a small schema exercising every Kind: a required/optional
// object, an array, a keyed map, and a topic tree.
func testSchema() *Schema {
	profile := &Field{
		ID:   "profile",
		Kind: KindObject,
		Properties: map[string]*Field{
			"name": {ID: "name", Kind: KindString, MinLength: testIntP(1)},
			"age":  {ID: "age", Kind: KindInteger, Minimum: testFloatP(0)},
		},
		PropertyOrder:        []string{"name", "age"},
		Required:             map[string]struct{}{"name": {}},
		AdditionalProperties: false,
	}

	strict := &Field{
		ID:   "strict",
		Kind: KindObject,
		Properties: map[string]*Field{
			"a": {ID: "a", Kind: KindString},
			"b": {ID: "b", Kind: KindString},
		},
		PropertyOrder:        []string{"a", "b"},
		Required:             map[string]struct{}{"a": {}, "b": {}},
		AdditionalProperties: false,
	}

	vocabulary := &Field{
		ID:          "vocabulary",
		Kind:        KindArray,
		Items:       &Field{ID: "word", Kind: KindString, MinLength: testIntP(1)},
		MaxItems:    testIntP(10),
		UniqueItems: true,
	}

	contacts := &Field{
		ID:         "contacts",
		Kind:       KindMap,
		KeyPattern: `^[A-Z][a-zA-Z]*$`,
		Values: &Field{
			ID:   "contact",
			Kind: KindObject,
			Properties: map[string]*Field{
				"relation": {ID: "relation", Kind: KindString},
			},
			PropertyOrder:        []string{"relation"},
			AdditionalProperties: false,
		},
		MaxProperties: testIntP(5),
	}

	topics := &Field{
		ID:                "topics",
		Kind:              KindTopic,
		MaxDepth:          testIntP(3),
		MaxBreadthPerNode: testIntP(2),
	}

	return NewSchema(
		[]string{"profile", "strict", "vocabulary", "contacts", "topics"},
		map[string]*Field{
			"profile":    profile,
			"strict":     strict,
			"vocabulary": vocabulary,
			"contacts":   contacts,
			"topics":     topics,
		},
	)
}
