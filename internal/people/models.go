package people

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Schema identifies one iteration of the person record contract
type Schema string

const (
	// SchemaV1 is the flat {id, name, bio} record created from {name, bio}
	SchemaV1 Schema = "v1"
	// SchemaV2 is the display shape {id, display_name, slug, bio}
	SchemaV2 Schema = "v2"
	// SchemaV3 creates from {family_name, given_name, dob, bio} and lists in the V2 display shape
	SchemaV3 Schema = "v3"
)

// ParseSchema accepts "v1", "v2" or "v3" (case-insensitive)
func ParseSchema(s string) (Schema, error) {
	switch Schema(strings.ToLower(strings.TrimSpace(s))) {
	case SchemaV1:
		return SchemaV1, nil
	case SchemaV2:
		return SchemaV2, nil
	case SchemaV3:
		return SchemaV3, nil
	}
	return "", fmt.Errorf("unknown schema version %q", s)
}

// PersonV1 is a record of the first schema
type PersonV1 struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// PersonV2 is the display-oriented record; the server derives every field but bio
type PersonV2 struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Slug        string `json:"slug"`
	Bio         string `json:"bio"`
}

// PersonV3 is the V3 create payload
type PersonV3 struct {
	FamilyName string `json:"family_name" binding:"required"`
	GivenName  string `json:"given_name" binding:"required"`
	DOB        string `json:"dob" binding:"required"`
	Bio        string `json:"bio"`
}

// CreateV1 is the V1 create payload
type CreateV1 struct {
	Name string `json:"name" binding:"required"`
	Bio  string `json:"bio"`
}

// Record is a person as read back from the list endpoint, tagged by the
// shape it was decoded with. Exactly one of V1 and V2 is set.
type Record struct {
	Schema Schema
	V1     *PersonV1
	V2     *PersonV2
}

// Key is the list key of the record
func (r Record) Key() string {
	switch {
	case r.V1 != nil:
		return r.V1.ID
	case r.V2 != nil:
		return r.V2.ID
	}
	return ""
}

// Label is the human-readable name. A V2 record without a display name
// falls back to its slug.
func (r Record) Label() string {
	switch {
	case r.V1 != nil:
		return r.V1.Name
	case r.V2 != nil:
		if r.V2.DisplayName != "" {
			return r.V2.DisplayName
		}
		return r.V2.Slug
	}
	return ""
}

// Bio returns the free-text bio; empty means absent
func (r Record) Bio() string {
	switch {
	case r.V1 != nil:
		return r.V1.Bio
	case r.V2 != nil:
		return r.V2.Bio
	}
	return ""
}

// Slug is only present on V2 records
func (r Record) Slug() string {
	if r.V2 != nil {
		return r.V2.Slug
	}
	return ""
}

// DecodeRecords parses a list response body. V1 bodies decode as PersonV1,
// V2 and V3 bodies decode as the V2 display shape.
func DecodeRecords(schema Schema, data []byte) ([]Record, error) {
	switch schema {
	case SchemaV1:
		var list []PersonV1
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("failed to decode people list: %w", err)
		}
		records := make([]Record, 0, len(list))
		for i := range list {
			records = append(records, Record{Schema: SchemaV1, V1: &list[i]})
		}
		return records, nil
	case SchemaV2, SchemaV3:
		var list []PersonV2
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("failed to decode people list: %w", err)
		}
		records := make([]Record, 0, len(list))
		for i := range list {
			records = append(records, Record{Schema: SchemaV2, V2: &list[i]})
		}
		return records, nil
	}
	return nil, fmt.Errorf("unknown schema version %q", schema)
}

// NameType classifies an entry of Person.Names
type NameType string

const (
	NameTypePrimary NameType = "primary"
	NameTypeAlias   NameType = "alias"
	NameTypeMaiden  NameType = "maiden"
)

// Name is one name a person is known by
type Name struct {
	Type    NameType `json:"type" yaml:"type"`
	Given   string   `json:"given" yaml:"given"`
	Surname string   `json:"surname" yaml:"surname"`
	Suffix  string   `json:"suffix" yaml:"suffix"`
}

// Birth holds the ISO date of birth (YYYY-MM-DD)
type Birth struct {
	Date string `json:"date" yaml:"date"`
}

// Vitals groups life events of a person
type Vitals struct {
	Birth Birth `json:"birth" yaml:"birth"`
}

// Person is the stored record served by the backend. Slug and DisplayName are
// derived on read and never persisted.
type Person struct {
	ID          string `json:"id" yaml:"id"`
	Names       []Name `json:"names" yaml:"names"`
	Vitals      Vitals `json:"vitals" yaml:"vitals"`
	Bio         string `json:"bio" yaml:"bio"`
	Slug        string `json:"slug,omitempty" yaml:"-"`
	DisplayName string `json:"display_name,omitempty" yaml:"-"`
}

// PrimaryName returns the first name of type primary, or nil
func (p *Person) PrimaryName() *Name {
	for i := range p.Names {
		if p.Names[i].Type == NameTypePrimary {
			return &p.Names[i]
		}
	}
	return nil
}

// CreatePersonRequest carries the fields a new person is built from
type CreatePersonRequest struct {
	FamilyName string
	GivenName  string
	Suffix     string
	DOB        string
	Bio        string
}

// FromV3 maps a V3 create payload onto a request
func FromV3(p PersonV3) *CreatePersonRequest {
	return &CreatePersonRequest{
		FamilyName: p.FamilyName,
		GivenName:  p.GivenName,
		DOB:        p.DOB,
		Bio:        p.Bio,
	}
}

// FromV1 maps a V1 create payload onto a request; the single name becomes the given name
func FromV1(p CreateV1) *CreatePersonRequest {
	return &CreatePersonRequest{
		GivenName: p.Name,
		Bio:       p.Bio,
	}
}
