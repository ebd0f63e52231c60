package catalog

import (
	"fmt"
	"strings"
)

// Listing describes how a collection is browsed.
type Listing struct {
	Name string
	// Collection is the document collection holding the candidates.
	Collection string
	// OrderBy is the field used for server-side ordering and cursors.
	OrderBy string
	// FilterField is matched against the type filter.
	FilterField string
	// NameField is used for client-side ordering of filtered pages.
	NameField string
	// SortField is the numeric field behind the price sort of the view.
	SortField string
	// Noun names a single item in notifications.
	Noun string
	// TypeOptions are offered by interactive front ends.
	TypeOptions []string
}

var (
	Colleges = Listing{
		Name:        "colleges",
		Collection:  "colleges",
		OrderBy:     "name",
		FilterField: "type",
		NameField:   "name",
		SortField:   "fees",
		Noun:        "college",
		TypeOptions: []string{AllTypes, "GOVT", "PRIVATE"},
	}

	Products = Listing{
		Name:        "products",
		Collection:  "products",
		OrderBy:     "id",
		FilterField: "category",
		NameField:   "title",
		SortField:   "price",
		Noun:        "product",
		TypeOptions: []string{AllTypes, "Smartphones", "laptops", "mobile accessories"},
	}
)

// ListingByName returns a known listing preset.
func ListingByName(name string) (Listing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Colleges.Name:
		return Colleges, nil
	case Products.Name:
		return Products, nil
	default:
		return Listing{}, fmt.Errorf("unknown listing %q", name)
	}
}

// TypeOf returns the value of the listing filter field for the candidate.
func (l Listing) TypeOf(c Candidate) string {
	switch l.FilterField {
	case "type":
		return c.Type
	case "category":
		return c.Category
	default:
		return c.FieldString(l.FilterField)
	}
}

// NameOf returns the value used to order filtered pages.
func (l Listing) NameOf(c Candidate) string {
	switch l.NameField {
	case "name":
		return c.Name
	case "title":
		return c.Title
	default:
		return c.FieldString(l.NameField)
	}
}

// SortValue returns the numeric sort field of the candidate.
func (l Listing) SortValue(c Candidate) (float64, bool) {
	if l.SortField == "price" {
		return c.Price.Float()
	}
	return NumberOf(c.Field(l.SortField)).Float()
}
