package main

import (
	"strconv"

	"github.com/WessleyAI/wessley-catalog/engine/view"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const recommendationsHeading = "Recommended for You"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// optionTable lists filter options, skipping the synthetic "all" entry.
func optionTable(kind string, opts []view.Option) string {
	t := newTable("ID", kind, "About")
	for _, o := range opts {
		if o.Value == "" {
			continue
		}
		t.Row(o.Value, o.Label, o.Title)
	}
	return t.Render()
}

func modelsTable(rows []view.Row) string {
	t := newTable("ID", "Name", "Year", "Manufacturer", "Category")
	for _, r := range rows {
		t.Row(r.ID, r.Name, strconv.Itoa(r.Year), r.Manufacturer, r.Category)
	}
	return t.Render()
}

func detailsTable(d view.Details) string {
	return newTable("", d.Name).
		Row("Year", strconv.Itoa(d.Year)).
		Row("Engine", d.Engine).
		Row("Horsepower", strconv.Itoa(d.Horsepower)).
		Row("Transmission", d.Transmission).
		Row("Drivetrain", d.Drivetrain).
		Row("Image", d.Image).
		Render()
}

func compareTable(rows []view.CompareRow) string {
	t := newTable("Name", "Year", "HP")
	for _, r := range rows {
		t.Row(r.Name, strconv.Itoa(r.Year), strconv.Itoa(r.Horsepower))
	}
	return t.Render()
}

func listTable(heading string, items []string) string {
	t := newTable(heading)
	for _, it := range items {
		t.Row(it)
	}
	return t.Render()
}
