package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/estate/estate/internal/people"
)

var ErrMissingField = errors.New("required field is empty")

// MissingFieldError blocks a submit before any request is sent
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field is empty: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Field describes one input of the create form. Key is the JSON name the
// backend expects.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Required    bool
}

var fieldsV1 = []Field{
	{Key: "name", Label: "Name", Placeholder: "Full name", Required: true},
	{Key: "bio", Label: "Bio", Placeholder: "Short bio (optional)"},
}

var fieldsV3 = []Field{
	{Key: "given_name", Label: "Given name", Placeholder: "Jane", Required: true},
	{Key: "family_name", Label: "Family name", Placeholder: "Doe", Required: true},
	{Key: "dob", Label: "Date of birth", Placeholder: "YYYY-MM-DD", Required: true},
	{Key: "bio", Label: "Bio", Placeholder: "Short bio (optional)"},
}

// Fields returns the form layout for a schema. V2 has no create shape of its
// own and uses the V3 fields.
func Fields(schema people.Schema) []Field {
	if schema == people.SchemaV1 {
		return fieldsV1
	}
	return fieldsV3
}

// Form holds the raw values typed by the user
type Form struct {
	schema people.Schema
	values map[string]string
}

func NewForm(schema people.Schema) *Form {
	f := &Form{schema: schema, values: make(map[string]string)}
	f.Reset()
	return f
}

// Set stores a value as typed, without trimming
func (f *Form) Set(key, value string) error {
	if _, ok := f.values[key]; !ok {
		return fmt.Errorf("unknown form field %q for schema %s", key, f.schema)
	}
	f.values[key] = value
	return nil
}

// Value returns the value of one field as typed
func (f *Form) Value(key string) string {
	return f.values[key]
}

// Values returns a copy of all field values
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Reset sets every field to the empty string
func (f *Form) Reset() {
	for _, field := range Fields(f.schema) {
		f.values[field.Key] = ""
	}
}

// Missing lists required fields that are empty, in form order
func (f *Form) Missing() []string {
	var missing []string
	for _, field := range Fields(f.schema) {
		if field.Required && f.Value(field.Key) == "" {
			missing = append(missing, field.Key)
		}
	}
	return missing
}

// Payload serializes the form into the create body of its schema
func (f *Form) Payload() any {
	if f.schema == people.SchemaV1 {
		return people.CreateV1{
			Name: f.Value("name"),
			Bio:  f.Value("bio"),
		}
	}
	return people.PersonV3{
		FamilyName: f.Value("family_name"),
		GivenName:  f.Value("given_name"),
		DOB:        f.Value("dob"),
		Bio:        f.Value("bio"),
	}
}
