package notion

import (
	"time"

	"purchase-order-relay-go/internal/model"
)

// Wire types for the database query and page endpoints. Only the
// property variants this service reads are decoded; everything else
// comes back as an absent property.

type queryRequest struct {
	Sorts       []sortObject `json:"sorts"`
	PageSize    int          `json:"page_size"`
	Filter      any          `json:"filter,omitempty"`
	StartCursor string       `json:"start_cursor,omitempty"`
}

type sortObject struct {
	Timestamp string `json:"timestamp"`
	Direction string `json:"direction"`
}

type queryResponse struct {
	Results    []pageObject `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor *string      `json:"next_cursor"`
}

type pageObject struct {
	ID             string                    `json:"id"`
	LastEditedTime time.Time                 `json:"last_edited_time"`
	Properties     map[string]propertyObject `json:"properties"`
}

type propertyObject struct {
	Type     string         `json:"type"`
	Title    []textObject   `json:"title"`
	RichText []textObject   `json:"rich_text"`
	Number   *float64       `json:"number"`
	People   []personObject `json:"people"`
	Checkbox *bool          `json:"checkbox"`
	Status   *statusObject  `json:"status"`
}

type textObject struct {
	PlainText string `json:"plain_text"`
}

type personObject struct {
	Name   string        `json:"name"`
	Person *personDetail `json:"person"`
}

type personDetail struct {
	Email string `json:"email"`
}

type statusObject struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type patchRequest struct {
	Properties map[string]any `json:"properties"`
}

func (p pageObject) toRecord() model.Record {
	rec := model.Record{
		ID:           p.ID,
		LastEditedAt: p.LastEditedTime,
		Properties:   make(map[string]model.Property, len(p.Properties)),
	}
	for name, prop := range p.Properties {
		rec.Properties[name] = prop.toProperty()
	}
	return rec
}

// toProperty maps a wire property onto the tagged union. Unknown or
// malformed variants degrade to an absent property so extraction stays
// total.
func (p propertyObject) toProperty() model.Property {
	switch p.Type {
	case "title":
		return model.Property{Type: model.PropertyTitle, Title: toFragments(p.Title)}
	case "rich_text":
		return model.Property{Type: model.PropertyRichText, RichText: toFragments(p.RichText)}
	case "number":
		return model.Property{Type: model.PropertyNumber, Number: p.Number}
	case "people":
		people := make([]model.Person, 0, len(p.People))
		for _, person := range p.People {
			entry := model.Person{Name: person.Name}
			if person.Person != nil {
				entry.Email = person.Person.Email
			}
			people = append(people, entry)
		}
		return model.Property{Type: model.PropertyPeople, People: people}
	case "checkbox":
		prop := model.Property{Type: model.PropertyCheckbox}
		if p.Checkbox != nil {
			prop.Checkbox = *p.Checkbox
		}
		return prop
	case "status":
		prop := model.Property{Type: model.PropertyStatus}
		if p.Status != nil {
			prop.Status = p.Status.Name
		}
		return prop
	default:
		return model.Property{Type: model.PropertyAbsent}
	}
}

func toFragments(texts []textObject) []model.TextFragment {
	fragments := make([]model.TextFragment, 0, len(texts))
	for _, t := range texts {
		fragments = append(fragments, model.TextFragment{PlainText: t.PlainText})
	}
	return fragments
}
