package memory

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// formatValidator is shared process-wide; go-playground/validator's Var path
// is stateless and safe for concurrent use once built.
var formatValidator = validator.New(validator.WithRequiredStructEnabled())

var formatTag = map[Format]string{
	FormatEmail:    "email",
	FormatURI:      "uri",
	FormatDateTime: "rfc3339",
	FormatUUID:     "uuid",
}

// Validate checks value against field's constraints, shallowly: for
// container kinds it checks the container's own bounds (length, item count)
// but does not recurse into children, since the executor validates each
// child independently as its own op target. deep, when true, additionally
// walks into object/array/map children — used by set at a container path,
// which replaces an entire subtree in one shot.
func Validate(field *Field, value any, deep bool) error {
	if field == nil {
		return nil
	}
	if err := validateShallow(field, value); err != nil {
		return err
	}
	if !deep {
		return nil
	}
	return validateDeep(field, value)
}

func validateShallow(field *Field, value any) error {
	if field.HasConst && !equalValue(value, field.Const) {
		return shapeErrorf("value does not match const for field %q", field.ID)
	}
	if len(field.Enum) > 0 && !containsValue(field.Enum, value) {
		return shapeErrorf("value not in enum for field %q", field.ID)
	}

	switch field.Kind {
	case KindString:
		return validateString(field, value)
	case KindNumber, KindInteger:
		return validateNumber(field, value)
	case KindBoolean:
		if _, ok := value.(bool); !ok && value != nil {
			return shapeErrorf("expected boolean")
		}
	case KindObject:
		return validateObjectShape(field, value)
	case KindArray:
		return validateArrayShape(field, value)
	case KindMap:
		return validateMapShape(field, value)
	case KindTopic:
		// topic values are TopicTree/TopicNode, structurally guaranteed by
		// construction; nothing to check here beyond depth/breadth, which is
		// enforced at the op layer where the target node path is known.
	}
	return nil
}

func validateString(field *Field, value any) error {
	s, ok := value.(string)
	if !ok {
		if value == nil {
			return nil
		}
		return shapeErrorf("expected string")
	}
	if field.MinLength != nil && len(s) < *field.MinLength {
		return shapeErrorf("string shorter than minLength %d", *field.MinLength)
	}
	if field.MaxLength != nil && len(s) > *field.MaxLength {
		return shapeErrorf("string longer than maxLength %d", *field.MaxLength)
	}
	if field.Pattern != "" {
		re, err := regexp.Compile(field.Pattern)
		if err != nil {
			return shapeErrorf("invalid pattern on field %q: %v", field.ID, err)
		}
		if !re.MatchString(s) {
			return shapeErrorf("string does not match pattern %q", field.Pattern)
		}
	}
	if field.Format != FormatNone {
		if tag, ok := formatTag[field.Format]; ok {
			if err := formatValidator.Var(s, tag); err != nil {
				return shapeErrorf("string does not satisfy format %q", field.Format)
			}
		}
	}
	return nil
}

func validateNumber(field *Field, value any) error {
	n, ok := toFloat(value)
	if !ok {
		if value == nil {
			return nil
		}
		return shapeErrorf("expected number")
	}
	if field.Kind == KindInteger && n != float64(int64(n)) {
		return shapeErrorf("expected integer, got fractional value")
	}
	if field.Minimum != nil && n < *field.Minimum {
		return shapeErrorf("value below minimum %v", *field.Minimum)
	}
	if field.Maximum != nil && n > *field.Maximum {
		return shapeErrorf("value above maximum %v", *field.Maximum)
	}
	if field.ExclusiveMinimum != nil && n <= *field.ExclusiveMinimum {
		return shapeErrorf("value not above exclusiveMinimum %v", *field.ExclusiveMinimum)
	}
	if field.ExclusiveMaximum != nil && n >= *field.ExclusiveMaximum {
		return shapeErrorf("value not below exclusiveMaximum %v", *field.ExclusiveMaximum)
	}
	if field.MultipleOf != nil && *field.MultipleOf != 0 {
		q := n / *field.MultipleOf
		if q != float64(int64(q)) {
			return shapeErrorf("value not a multiple of %v", *field.MultipleOf)
		}
	}
	return nil
}

func validateObjectShape(field *Field, value any) error {
	if value == nil {
		return nil
	}
	m, ok := value.(map[string]any)
	if !ok {
		return shapeErrorf("expected object")
	}
	for name := range field.Required {
		if _, present := m[name]; !present {
			return shapeErrorf("missing required property %q", name)
		}
	}
	for name := range m {
		if _, declared := field.Properties[name]; declared {
			continue
		}
		if allowed, _ := field.AdditionalAllowed(); !allowed {
			return shapeErrorf("unexpected property %q on closed object", name)
		}
	}
	return nil
}

func validateArrayShape(field *Field, value any) error {
	if value == nil {
		return nil
	}
	arr, ok := value.([]any)
	if !ok {
		return shapeErrorf("expected array")
	}
	if field.MinItems != nil && len(arr) < *field.MinItems {
		return shapeErrorf("array shorter than minItems %d", *field.MinItems)
	}
	if field.MaxItems != nil && len(arr) > *field.MaxItems {
		return shapeErrorf("array longer than maxItems %d", *field.MaxItems)
	}
	if field.UniqueItems {
		seen := make(map[string]struct{}, len(arr))
		for _, item := range arr {
			key := fmt.Sprintf("%#v", item)
			if _, dup := seen[key]; dup {
				return shapeErrorf("array contains duplicate items but uniqueItems is set")
			}
			seen[key] = struct{}{}
		}
	}
	return nil
}

func validateMapShape(field *Field, value any) error {
	if value == nil {
		return nil
	}
	m, ok := value.(map[string]any)
	if !ok {
		return shapeErrorf("expected map")
	}
	if field.MinProperties != nil && len(m) < *field.MinProperties {
		return shapeErrorf("map has fewer than minProperties %d", *field.MinProperties)
	}
	if field.MaxProperties != nil && len(m) > *field.MaxProperties {
		return shapeErrorf("map has more than maxProperties %d", *field.MaxProperties)
	}
	if field.KeyPattern != "" {
		re, err := regexp.Compile(field.KeyPattern)
		if err != nil {
			return shapeErrorf("invalid keyPattern on field %q: %v", field.ID, err)
		}
		for k := range m {
			if !re.MatchString(k) {
				return shapeErrorf("map key %q does not match keyPattern %q", k, field.KeyPattern)
			}
		}
	}
	return nil
}

func validateDeep(field *Field, value any) error {
	if value == nil {
		return nil
	}
	switch field.Kind {
	case KindObject:
		m, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		for name, v := range m {
			child, declared := field.Properties[name]
			if !declared {
				_, child = field.AdditionalAllowed()
			}
			if child == nil {
				continue
			}
			if err := Validate(child, v, true); err != nil {
				return err
			}
		}
	case KindArray:
		arr, ok := value.([]any)
		if !ok || field.Items == nil {
			return nil
		}
		for _, v := range arr {
			if err := Validate(field.Items, v, true); err != nil {
				return err
			}
		}
	case KindMap:
		m, ok := value.(map[string]any)
		if !ok || field.Values == nil {
			return nil
		}
		for _, v := range m {
			if err := Validate(field.Values, v, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

func equalValue(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}

func containsValue(set []any, v any) bool {
	for _, item := range set {
		if equalValue(item, v) {
			return true
		}
	}
	return false
}
