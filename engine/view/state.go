// Package view holds the catalog page state and renders it. State is a plain
// value: operations apply API results to it and the Renderer maps it to
// markup, so the same state can be rendered to HTML or inspected in tests.
package view

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/WessleyAI/wessley-catalog/engine/domain"
	"github.com/WessleyAI/wessley-catalog/pkg/fn"
)

// Region names a part of the page replaced as a whole by one operation. The
// value doubles as the element id in rendered markup.
type Region string

const (
	RegionManufacturers   Region = "manufacturerFilter"
	RegionCategories      Region = "categoryFilter"
	RegionModels          Region = "carsTable"
	RegionDetails         Region = "details"
	RegionCompare         Region = "compare"
	RegionRecommendations Region = "recommendations"
)

// Labels of the synthetic first option of each filter.
const (
	AllManufacturers = "All Manufacturers"
	AllCategories    = "All Categories"
)

// Option is one entry of a filter control.
type Option struct {
	Value string
	Label string
	Title string
}

// Select is a filter control: its options and the chosen value ("" = all).
type Select struct {
	Options  []Option
	Selected string
}

// Label returns the label of the option with the given value, or "" when no
// such option is loaded.
func (s Select) Label(value string) string {
	for _, o := range s.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return ""
}

// Row is one line of the model table.
type Row struct {
	ID           string
	Name         string
	Year         int
	Manufacturer string
	Category     string
}

// Details is the content of the detail panel.
type Details struct {
	ID             string
	Name           string
	Image          string
	Year           int
	ManufacturerID string
	Engine         string
	Horsepower     int
	Transmission   string
	Drivetrain     string
}

// CompareRow is one line of the comparison table.
type CompareRow struct {
	Name       string
	Year       int
	Horsepower int
}

// State is everything the catalog page shows.
type State struct {
	Search        string
	Manufacturers Select
	Categories    Select
	Rows          []Row
	Checked       []string // checked row ids, in row order

	Details         *Details
	Comparison      []CompareRow // nil until a comparison was shown
	Recommendations []string     // nil until recommendations were shown
}

// Filters returns the current search text and selected filter ids.
func (s *State) Filters() (search, manufacturerID, categoryID string) {
	return s.Search, s.Manufacturers.Selected, s.Categories.Selected
}

// SetFilters records the list query inputs as typed by the user.
func (s *State) SetFilters(search, manufacturerID, categoryID string) {
	s.Search = search
	s.Manufacturers.Selected = manufacturerID
	s.Categories.Selected = categoryID
}

// ApplyManufacturers rebuilds the manufacturer filter. The selection resets
// to all.
func (s *State) ApplyManufacturers(ms []domain.Manufacturer) {
	opts := make([]Option, 0, len(ms)+1)
	opts = append(opts, Option{Label: AllManufacturers})
	for _, m := range ms {
		opts = append(opts, Option{Value: strconv.Itoa(m.ID), Label: m.Name, Title: manufacturerTitle(m)})
	}
	s.Manufacturers = Select{Options: opts}
}

func manufacturerTitle(m domain.Manufacturer) string {
	switch {
	case m.Country != "" && m.FoundingYear > 0:
		return fmt.Sprintf("%s, founded %d", m.Country, m.FoundingYear)
	case m.Country != "":
		return m.Country
	case m.FoundingYear > 0:
		return fmt.Sprintf("founded %d", m.FoundingYear)
	}
	return ""
}

// ApplyCategories rebuilds the category filter. The selection resets to all.
func (s *State) ApplyCategories(cs []domain.Category) {
	opts := make([]Option, 0, len(cs)+1)
	opts = append(opts, Option{Label: AllCategories})
	for _, c := range cs {
		opts = append(opts, Option{Value: strconv.Itoa(c.ID), Label: c.Name})
	}
	s.Categories = Select{Options: opts}
}

// ApplyModels replaces the table rows. Manufacturer and category names come
// from the filter options loaded at this moment. Checked ids are dropped with
// the rows they referred to.
func (s *State) ApplyModels(ms []domain.Model) {
	s.Rows = fn.Map(ms, func(m domain.Model) Row {
		return Row{
			ID:           strconv.Itoa(m.ID),
			Name:         m.Name,
			Year:         m.Year,
			Manufacturer: s.Manufacturers.Label(strconv.Itoa(m.ManufacturerID)),
			Category:     s.Categories.Label(strconv.Itoa(m.CategoryID)),
		}
	})
	s.Checked = nil
}

// SetChecked marks exactly the given ids as checked. Ids not present in the
// table are ignored and the result follows row order, not argument order.
func (s *State) SetChecked(ids []string) {
	want := fn.Set(ids)
	s.Checked = s.rowIDs(func(id string) bool {
		_, ok := want[id]
		return ok
	})
}

// Toggle checks or unchecks a single row.
func (s *State) Toggle(id string, on bool) {
	current := fn.Set(s.Checked)
	if on {
		current[id] = struct{}{}
	} else {
		delete(current, id)
	}
	s.Checked = s.rowIDs(func(id string) bool {
		_, ok := current[id]
		return ok
	})
}

func (s *State) rowIDs(keep func(string) bool) []string {
	var out []string
	for _, r := range s.Rows {
		if keep(r.ID) {
			out = append(out, r.ID)
		}
	}
	return out
}

// IsChecked reports whether the row with id is checked.
func (s *State) IsChecked(id string) bool {
	return slices.Contains(s.Checked, id)
}

// ApplyDetails replaces the detail panel.
func (s *State) ApplyDetails(m domain.Model) {
	s.Details = &Details{
		ID:             strconv.Itoa(m.ID),
		Name:           m.Name,
		Image:          m.Image,
		Year:           m.Year,
		ManufacturerID: strconv.Itoa(m.ManufacturerID),
		Engine:         m.Specifications.Engine,
		Horsepower:     m.Specifications.Horsepower,
		Transmission:   m.Specifications.Transmission,
		Drivetrain:     m.Specifications.Drivetrain,
	}
}

// ApplyComparison replaces the comparison table, in the order given.
func (s *State) ApplyComparison(ms []domain.Model) {
	s.Comparison = fn.Map(ms, func(m domain.Model) CompareRow {
		return CompareRow{Name: m.Name, Year: m.Year, Horsepower: m.Specifications.Horsepower}
	})
}

// ApplyRecommendations replaces the recommendation list, in the order given.
func (s *State) ApplyRecommendations(rs []domain.Recommendation) {
	s.Recommendations = fn.Map(rs, func(r domain.Recommendation) string { return r.Name })
}

// Clone returns a deep copy safe to render while the original keeps changing.
func (s *State) Clone() State {
	c := *s
	c.Manufacturers.Options = slices.Clone(s.Manufacturers.Options)
	c.Categories.Options = slices.Clone(s.Categories.Options)
	c.Rows = slices.Clone(s.Rows)
	c.Checked = slices.Clone(s.Checked)
	c.Comparison = slices.Clone(s.Comparison)
	c.Recommendations = slices.Clone(s.Recommendations)
	if s.Details != nil {
		d := *s.Details
		c.Details = &d
	}
	return c
}
