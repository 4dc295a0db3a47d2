// Package mapping associates CSV columns with lead fields.
package mapping

import (
	"fmt"
	"slices"
	"strings"
)

type Field string

const (
	Email       Field = "email"
	FirstName   Field = "first_name"
	LastName    Field = "last_name"
	Company     Field = "company"
	Title       Field = "title"
	Industry    Field = "industry"
	CompanySize Field = "company_size"
	Notes       Field = "notes"
)

// Ignore is the selection that removes a field from the mapping.
const Ignore = "ignore"

type FieldSpec struct {
	Key      Field  `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// Fields lists every mappable lead field, required ones first.
var Fields = []FieldSpec{
	{Key: Email, Label: "Email Address", Required: true},
	{Key: FirstName, Label: "First Name", Required: true},
	{Key: LastName, Label: "Last Name"},
	{Key: Company, Label: "Company Name"},
	{Key: Title, Label: "Job Title"},
	{Key: Industry, Label: "Industry"},
	{Key: CompanySize, Label: "Company Size"},
	{Key: Notes, Label: "Notes"},
}

func Lookup(key string) (FieldSpec, bool) {
	for _, f := range Fields {
		if string(f.Key) == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Mapping maps a lead field to the header of the column holding it.
// Unmapped fields are absent.
type Mapping map[Field]string

// Missing returns the required fields that have no column.
func (m Mapping) Missing() []Field {
	var missing []Field
	for _, f := range Fields {
		if f.Required && m[f.Key] == "" {
			missing = append(missing, f.Key)
		}
	}
	return missing
}

// Validate fails with a *ValidationError when a required field is unmapped.
func (m Mapping) Validate() error {
	if missing := m.Missing(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

type ValidationError struct {
	Missing []Field
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		label := string(f)
		if spec, ok := Lookup(string(f)); ok {
			label = spec.Label
		}
		msgs = append(msgs, label+" field must be mapped")
	}
	return strings.Join(msgs, "; ")
}

type rule struct {
	field Field
	match func(h string) bool
}

func containsAny(subs ...string) func(string) bool {
	return func(h string) bool {
		for _, s := range subs {
			if strings.Contains(h, s) {
				return true
			}
		}
		return false
	}
}

func containsAll(subs ...string) func(string) bool {
	return func(h string) bool {
		for _, s := range subs {
			if !strings.Contains(h, s) {
				return false
			}
		}
		return true
	}
}

// Order matters: the first matching rule wins, so "Company Notes" is a
// company column.
var rules = []rule{
	{Email, containsAny("email", "e-mail")},
	{FirstName, containsAll("first", "name")},
	{LastName, containsAll("last", "name")},
	{Company, containsAny("company", "organization")},
	{Title, containsAny("title", "position")},
	{Industry, containsAny("industry")},
	{CompanySize, containsAny("size")},
	{Notes, containsAny("note")},
}

// AutoDetect guesses a mapping from header names. Each header is assigned
// to at most one field; when two headers match the same field the later
// column wins.
func AutoDetect(headers []string) Mapping {
	m := make(Mapping)
	for _, h := range headers {
		lower := strings.ToLower(h)
		for _, r := range rules {
			if r.match(lower) {
				m[r.field] = h
				break
			}
		}
	}
	return m
}

// Mapper holds the mapping being edited for one file.
type Mapper struct {
	headers []string
	mapping Mapping
}

func NewMapper(headers []string) *Mapper {
	return &Mapper{
		headers: slices.Clone(headers),
		mapping: AutoDetect(headers),
	}
}

func (m *Mapper) Headers() []string {
	return slices.Clone(m.headers)
}

// Mapping returns a copy of the current mapping.
func (m *Mapper) Mapping() Mapping {
	out := make(Mapping, len(m.mapping))
	for k, v := range m.mapping {
		out[k] = v
	}
	return out
}

// Assign points field at header. Ignore or an empty header unmaps it.
func (m *Mapper) Assign(field Field, header string) error {
	if _, ok := Lookup(string(field)); !ok {
		return fmt.Errorf("unknown lead field %q", field)
	}

	if header == "" || header == Ignore {
		delete(m.mapping, field)
		return nil
	}

	if !slices.Contains(m.headers, header) {
		return fmt.Errorf("column %q is not in the file", header)
	}

	m.mapping[field] = header
	return nil
}

// AssignAll applies several assignments, or none of them if any is
// invalid.
func (m *Mapper) AssignAll(changes map[Field]string) error {
	for f, h := range changes {
		if _, ok := Lookup(string(f)); !ok {
			return fmt.Errorf("unknown lead field %q", f)
		}
		if h != "" && h != Ignore && !slices.Contains(m.headers, h) {
			return fmt.Errorf("column %q is not in the file", h)
		}
	}
	for f, h := range changes {
		_ = m.Assign(f, h)
	}
	return nil
}

// Confirm returns the mapping once email and first name are mapped.
func (m *Mapper) Confirm() (Mapping, error) {
	if err := m.mapping.Validate(); err != nil {
		return nil, err
	}
	return m.Mapping(), nil
}
