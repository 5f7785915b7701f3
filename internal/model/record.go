package model

import "time"

// PropertyType identifies which variant of a Property is populated.
// The record store returns heterogeneous, optionally-absent typed
// values; modeling them as a closed tagged union keeps field
// extraction total.
type PropertyType string

const (
	PropertyAbsent   PropertyType = ""
	PropertyTitle    PropertyType = "title"
	PropertyRichText PropertyType = "rich_text"
	PropertyNumber   PropertyType = "number"
	PropertyPeople   PropertyType = "people"
	PropertyCheckbox PropertyType = "checkbox"
	PropertyStatus   PropertyType = "status"
)

// Property is one typed value from a record. Only the variant named by
// Type carries data; everything else is zero.
type Property struct {
	Type     PropertyType
	Title    []TextFragment
	RichText []TextFragment
	Number   *float64
	People   []Person
	Checkbox bool
	Status   string
}

// TextFragment is one piece of a title or rich-text sequence.
type TextFragment struct {
	PlainText string
}

// Person is one entry of a people property. Either field may be empty.
type Person struct {
	Name  string
	Email string
}

// Record represents one purchasing request tracked in the remote store.
// Records are created and mutated by an external actor; this service
// only reads the display properties and writes the notified checkbox.
type Record struct {
	ID           string
	LastEditedAt time.Time
	Properties   map[string]Property
}

// Property returns the named property, or an absent one when the store
// did not include it.
func (r Record) Property(name string) Property {
	if p, ok := r.Properties[name]; ok {
		return p
	}
	return Property{Type: PropertyAbsent}
}

// OrderFields holds the display values extracted from a Record, ready
// for message rendering. Absent source fields are already replaced by
// their placeholders.
type OrderFields struct {
	Title         string
	Description   string
	Quantity      string
	ExpectedPrice string
	Applicant     string
}
