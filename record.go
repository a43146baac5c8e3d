package wcx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/mod/semver"
)

// DefaultVersion is the version given to definitions that do not set one.
const DefaultVersion = "1.0.0"

// Record is the serialized, transportable form of a component.
//
// Template and Methods hold behavior source text. Extra carries extension
// fields; they are flattened into the top level of the JSON object.
type Record struct {
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	Props         []string          `json:"props"`
	Template      string            `json:"template"`
	Styles        string            `json:"styles"`
	Methods       map[string]string `json:"methods"`
	Events        []string          `json:"events"`
	Created       time.Time         `json:"created"`
	ExportedAt    *time.Time        `json:"exportedAt,omitempty"`
	ExportOptions map[string]any    `json:"exportOptions,omitempty"`
	Extra         map[string]any    `json:"-"`
}

// reservedFields are the record keys that can never be extension fields.
var reservedFields = map[string]bool{
	"name":          true,
	"version":       true,
	"props":         true,
	"template":      true,
	"styles":        true,
	"methods":       true,
	"events":        true,
	"created":       true,
	"exportedAt":    true,
	"exportOptions": true,
}

// IsReservedField reports whether key is a record field name.
func IsReservedField(key string) bool {
	return reservedFields[key]
}

// EncodeMap returns the record as a plain map. Timestamps stay time.Time.
func (r *Record) EncodeMap() map[string]any {
	m := make(map[string]any, len(reservedFields)+len(r.Extra))
	for k, v := range r.Extra {
		if !reservedFields[k] {
			m[k] = deepCopy(v)
		}
	}

	methods := make(map[string]any, len(r.Methods))
	for k, v := range r.Methods {
		methods[k] = v
	}

	m["name"] = r.Name
	m["version"] = r.Version
	m["props"] = stringsToAny(r.Props)
	m["template"] = r.Template
	m["styles"] = r.Styles
	m["methods"] = methods
	m["events"] = stringsToAny(r.Events)
	if !r.Created.IsZero() {
		m["created"] = r.Created
	}
	if r.ExportedAt != nil {
		m["exportedAt"] = *r.ExportedAt
	}
	if r.ExportOptions != nil {
		m["exportOptions"] = deepCopy(r.ExportOptions)
	}
	return m
}

// DecodeMap populates the record from a map form, as produced by JSON,
// YAML or msgpack decoding. Unknown keys become extension fields.
func (r *Record) DecodeMap(m map[string]any) error {
	var out Record
	var err error

	if out.Name, err = stringField(m, "name"); err != nil {
		return err
	}
	if out.Version, err = stringField(m, "version"); err != nil {
		return err
	}
	if out.Template, err = stringField(m, "template"); err != nil {
		return err
	}
	if out.Styles, err = stringField(m, "styles"); err != nil {
		return err
	}
	if out.Props, err = stringsField(m, "props"); err != nil {
		return err
	}
	if out.Events, err = stringsField(m, "events"); err != nil {
		return err
	}
	if out.Methods, err = methodsField(m); err != nil {
		return err
	}
	if out.Created, err = timeField(m, "created"); err != nil {
		return err
	}
	exported, err := timeField(m, "exportedAt")
	if err != nil {
		return err
	}
	if !exported.IsZero() {
		out.ExportedAt = &exported
	}
	if v, ok := m["exportOptions"]; ok && v != nil {
		opts, ok := asMap(v)
		if !ok {
			return fieldError("exportOptions", "an object", v)
		}
		out.ExportOptions = opts
	}

	for k, v := range m {
		if reservedFields[k] {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = normalize(v)
	}

	*r = out
	return nil
}

// MarshalJSON writes the record with extension fields at the top level.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.EncodeMap())
}

// UnmarshalJSON reads a record, collecting unknown keys into Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%w: document is null", ErrInvalidRecord)
	}
	return r.DecodeMap(m)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Props = append([]string(nil), r.Props...)
	c.Events = append([]string(nil), r.Events...)
	if r.Methods != nil {
		c.Methods = make(map[string]string, len(r.Methods))
		for k, v := range r.Methods {
			c.Methods[k] = v
		}
	}
	if r.ExportedAt != nil {
		t := *r.ExportedAt
		c.ExportedAt = &t
	}
	if r.ExportOptions != nil {
		c.ExportOptions = deepCopy(r.ExportOptions).(map[string]any)
	}
	if r.Extra != nil {
		c.Extra = deepCopy(r.Extra).(map[string]any)
	}
	return &c
}

// MethodNames returns the record's method names in lexical order.
func (r *Record) MethodNames() []string {
	names := make([]string, 0, len(r.Methods))
	for k := range r.Methods {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate checks the record's shape: a valid custom element name, a
// semantic version and a non-empty template.
func (r *Record) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.By(elementNameRule)),
		validation.Field(&r.Version, validation.Required, validation.By(semverRule)),
		validation.Field(&r.Template, validation.Required),
		validation.Field(&r.Props, validation.Each(validation.Required, validation.By(attributeNameRule))),
		validation.Field(&r.Events, validation.Each(validation.Required)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

// reservedElementNames cannot be used as custom element names.
var reservedElementNames = map[string]bool{
	"annotation-xml":   true,
	"color-profile":    true,
	"font-face":        true,
	"font-face-src":    true,
	"font-face-uri":    true,
	"font-face-format": true,
	"font-face-name":   true,
	"missing-glyph":    true,
}

// ValidateName checks that name can be registered as a custom element:
// it starts with a lowercase ASCII letter, contains a hyphen, has no
// uppercase letters, whitespace or markup characters, and is not reserved.
func ValidateName(name string) error {
	if err := elementNameRule(name); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidName, name, err)
	}
	return nil
}

func elementNameRule(value any) error {
	name, _ := value.(string)
	if name == "" {
		return errors.New("must not be empty")
	}
	if name[0] < 'a' || name[0] > 'z' {
		return errors.New("must start with a lowercase letter")
	}
	if !strings.Contains(name, "-") {
		return errors.New("must contain a hyphen")
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '.', c == '_':
		case c >= 0x80:
		default:
			return fmt.Errorf("must not contain %q", c)
		}
	}
	if reservedElementNames[name] {
		return errors.New("is reserved")
	}
	return nil
}

func attributeNameRule(value any) error {
	name, _ := value.(string)
	for _, c := range name {
		if c <= ' ' || strings.ContainsRune(`"'>/=`, c) {
			return fmt.Errorf("must not contain %q", c)
		}
	}
	return nil
}

// semverRule accepts MAJOR.MINOR.PATCH with optional pre-release and
// build suffixes, without a leading "v".
func semverRule(value any) error {
	v, _ := value.(string)
	core, _, _ := strings.Cut(v, "+")
	core, _, _ = strings.Cut(core, "-")
	if !semver.IsValid("v"+v) || strings.Count(core, ".") != 2 {
		return errors.New("must be a semantic version such as 1.0.0")
	}
	return nil
}

// CompareVersions orders two record versions by semantic version
// precedence. Invalid versions sort before valid ones.
func CompareVersions(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}

func fieldError(field, want string, got any) error {
	return fmt.Errorf("%w: %s must be %s, got %T", ErrInvalidRecord, field, want, got)
}

func stringField(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fieldError(key, "a string", v)
	}
	return s, nil
}

func stringsField(m map[string]any, key string) ([]string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...), nil
	case []any:
		out := make([]string, len(x))
		for i, el := range x {
			s, ok := el.(string)
			if !ok {
				return nil, fieldError(fmt.Sprintf("%s[%d]", key, i), "a string", el)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fieldError(key, "a list of strings", v)
	}
}

func methodsField(m map[string]any) (map[string]string, error) {
	v, ok := m["methods"]
	if !ok || v == nil {
		return nil, nil
	}
	if x, ok := v.(map[string]string); ok {
		out := make(map[string]string, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out, nil
	}
	obj, ok := asMap(v)
	if !ok {
		return nil, fieldError("methods", "an object", v)
	}
	out := make(map[string]string, len(obj))
	for k, el := range obj {
		s, ok := el.(string)
		if !ok {
			return nil, fieldError("methods."+k, "a string", el)
		}
		out[k] = s
	}
	return out, nil
}

func timeField(m map[string]any, key string) (time.Time, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		if x == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, key, err)
		}
		return t, nil
	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			return time.Time{}, fieldError(key, "a timestamp", v)
		}
		return time.UnixMilli(ms).UTC(), nil
	default:
		return time.Time{}, fieldError(key, "a timestamp", v)
	}
}

// asMap accepts the map shapes produced by the JSON, YAML and msgpack
// decoders.
func asMap(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return normalize(x).(map[string]any), true
	case map[any]any:
		return normalize(x).(map[string]any), true
	default:
		return nil, false
	}
}

// normalize converts decoded data into JSON-compatible Go values:
// map[any]any keys are stringified and json.Number becomes int64 or
// float64.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, el := range x {
			out[k] = normalize(el)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, el := range x {
			out[fmt.Sprint(k)] = normalize(el)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = normalize(el)
		}
		return out
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	default:
		return v
	}
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, el := range x {
			out[k] = deepCopy(el)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = deepCopy(el)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out
	default:
		return v
	}
}

func stringsToAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
