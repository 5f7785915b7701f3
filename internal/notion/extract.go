package notion

import (
	"strconv"
	"strings"

	"purchase-order-relay-go/internal/config"
	"purchase-order-relay-go/internal/model"
)

// Placeholders returned when an optional field is absent or malformed.
const (
	PlaceholderUntitled = "(untitled)"
	PlaceholderNone     = "-"
)

// Extractor turns raw record properties into display fields. Every
// method is total: a missing or malformed property yields its
// placeholder, never an error.
type Extractor struct {
	props config.PropertyNames
}

// NewExtractor creates an extractor bound to the configured property names.
func NewExtractor(props config.PropertyNames) Extractor {
	return Extractor{props: props}
}

// Fields extracts all display fields of one record.
func (e Extractor) Fields(r model.Record) model.OrderFields {
	return model.OrderFields{
		Title:         e.Title(r),
		Description:   e.Description(r),
		Quantity:      e.Quantity(r),
		ExpectedPrice: e.ExpectedPrice(r),
		Applicant:     e.Applicant(r),
	}
}

// Title concatenates the title fragments of the record.
func (e Extractor) Title(r model.Record) string {
	prop := r.Property(e.props.Title)
	if prop.Type != model.PropertyTitle || len(prop.Title) == 0 {
		return PlaceholderUntitled
	}
	return joinFragments(prop.Title)
}

// Description concatenates the rich-text fragments of the notes
// property. An absent description means "no notes", not an error.
func (e Extractor) Description(r model.Record) string {
	prop := r.Property(e.props.Description)
	if prop.Type != model.PropertyRichText {
		return ""
	}
	return joinFragments(prop.RichText)
}

// Quantity renders the quantity number as a decimal string.
func (e Extractor) Quantity(r model.Record) string {
	return e.number(r, e.props.Quantity)
}

// ExpectedPrice renders the expected price number as a decimal string.
func (e Extractor) ExpectedPrice(r model.Record) string {
	return e.number(r, e.props.ExpectedPrice)
}

// Applicant joins the display names of the people property. A person
// without a name falls back to their email address.
func (e Extractor) Applicant(r model.Record) string {
	prop := r.Property(e.props.Applicant)
	if prop.Type != model.PropertyPeople {
		return PlaceholderNone
	}

	var names []string
	for _, person := range prop.People {
		if person.Name != "" {
			names = append(names, person.Name)
		} else if person.Email != "" {
			names = append(names, person.Email)
		}
	}
	if len(names) == 0 {
		return PlaceholderNone
	}
	return strings.Join(names, ", ")
}

// StatusName returns the record's status label, or the empty string
// when the status property is absent or malformed. A missing status
// never matches any target.
func (e Extractor) StatusName(r model.Record) string {
	prop := r.Property(e.props.Status)
	if prop.Type != model.PropertyStatus {
		return ""
	}
	return prop.Status
}

// Notified reads the idempotency latch. A missing checkbox reads as
// not yet notified.
func (e Extractor) Notified(r model.Record) bool {
	prop := r.Property(e.props.Notified)
	if prop.Type != model.PropertyCheckbox {
		return false
	}
	return prop.Checkbox
}

func (e Extractor) number(r model.Record, name string) string {
	prop := r.Property(name)
	if prop.Type != model.PropertyNumber || prop.Number == nil {
		return PlaceholderNone
	}
	return strconv.FormatFloat(*prop.Number, 'f', -1, 64)
}

func joinFragments(fragments []model.TextFragment) string {
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.PlainText)
	}
	return b.String()
}
