// Package view derives the displayed contact list from the loaded one:
// sorted by a key and cut into pages. Nothing here is stored; callers
// recompute the view from container state on every render.
package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/sakif/contact-book/internal/model"
)

// DefaultPageSize is the number of contacts on one page.
const DefaultPageSize = 5

type SortKey string

const (
	SortByName  SortKey = "name"
	SortByPhone SortKey = "phone"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseSortKey accepts "name" and "phone". An empty string means name.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByName:
		return SortByName, nil
	case SortByPhone:
		return SortByPhone, nil
	}
	return "", fmt.Errorf("view: unknown sort key %q", s)
}

// ParseDirection accepts "asc" and "desc". An empty string means asc.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("view: unknown sort direction %q", s)
}

// Sort returns a sorted copy of contacts; the input is left as is.
// Names compare case-insensitively, phone numbers as raw strings.
// Equal keys keep their original order in both directions.
func Sort(contacts []model.Contact, key SortKey, dir Direction) []model.Contact {
	sorted := slices.Clone(contacts)

	compare := func(a, b model.Contact) int {
		if key == SortByPhone {
			return cmp.Compare(a.PhoneNumber, b.PhoneNumber)
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}

	slices.SortStableFunc(sorted, func(a, b model.Contact) int {
		if dir == Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return sorted
}

// Page is one page of a derived list.
type Page struct {
	Items      []model.Contact `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalItems int             `json:"totalItems"`
	TotalPages int             `json:"totalPages"`
}

// Paginate returns the 1-based page of contacts holding items
// [(page-1)*size, page*size). A page before the first or past the last has
// no items. A size below 1 means DefaultPageSize.
func Paginate(contacts []model.Contact, page, size int) Page {
	if size < 1 {
		size = DefaultPageSize
	}

	total := len(contacts)
	p := Page{
		Items:      []model.Contact{},
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
	}
	if page < 1 || page > p.TotalPages {
		return p
	}

	start := (page - 1) * size
	end := min(start+size, total)
	p.Items = slices.Clone(contacts[start:end])
	return p
}
