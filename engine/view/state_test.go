package view

import (
	"slices"
	"testing"

	"github.com/WessleyAI/wessley-catalog/engine/domain"
)

var (
	testManufacturers = []domain.Manufacturer{
		{ID: 3, Name: "Tesla", Country: "USA", FoundingYear: 2003},
		{ID: 1, Name: "Toyota", Country: "Japan"},
	}
	testCategories = []domain.Category{{ID: 2, Name: "Sedan"}, {ID: 5, Name: "SUV"}}
	testModels     = []domain.Model{
		{ID: 3, Name: "Model S", Year: 2023, ManufacturerID: 3, CategoryID: 2},
		{ID: 7, Name: "RAV4", Year: 2022, ManufacturerID: 1, CategoryID: 5},
		{ID: 9, Name: "Unknown", Year: 2020, ManufacturerID: 99, CategoryID: 99},
	}
)

func TestApplyManufacturersKeepsAPIOrder(t *testing.T) {
	var s State
	s.Manufacturers.Selected = "3"
	s.ApplyManufacturers(testManufacturers)

	opts := s.Manufacturers.Options
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	if opts[0] != (Option{Label: AllManufacturers}) {
		t.Fatalf("first option should be the synthetic all option, got %+v", opts[0])
	}
	if opts[1].Value != "3" || opts[1].Label != "Tesla" || opts[1].Title != "USA, founded 2003" {
		t.Fatalf("unexpected option %+v", opts[1])
	}
	if opts[2].Value != "1" || opts[2].Title != "Japan" {
		t.Fatalf("unexpected option %+v", opts[2])
	}
	if s.Manufacturers.Selected != "" {
		t.Fatal("reloading filters should reset the selection")
	}
}

func TestApplyCategories(t *testing.T) {
	var s State
	s.Categories.Selected = "2"
	s.ApplyCategories(testCategories)
	if len(s.Categories.Options) != 3 || s.Categories.Options[0].Label != AllCategories {
		t.Fatalf("unexpected options %+v", s.Categories.Options)
	}
	if s.Categories.Selected != "" {
		t.Fatal("selection should reset")
	}
}

func TestApplyModelsResolvesNamesFromLoadedFilters(t *testing.T) {
	var s State
	s.ApplyManufacturers(testManufacturers)
	s.ApplyCategories(testCategories)
	s.ApplyModels(testModels)

	want := []Row{
		{ID: "3", Name: "Model S", Year: 2023, Manufacturer: "Tesla", Category: "Sedan"},
		{ID: "7", Name: "RAV4", Year: 2022, Manufacturer: "Toyota", Category: "SUV"},
		{ID: "9", Name: "Unknown", Year: 2020},
	}
	if !slices.Equal(s.Rows, want) {
		t.Fatalf("rows:\n got %+v\nwant %+v", s.Rows, want)
	}
}

func TestApplyModelsBeforeFiltersLeavesNamesEmpty(t *testing.T) {
	var s State
	s.ApplyModels(testModels[:1])
	if s.Rows[0].Manufacturer != "" || s.Rows[0].Category != "" {
		t.Fatalf("expected empty names, got %+v", s.Rows[0])
	}
}

func TestApplyModelsClearsChecked(t *testing.T) {
	var s State
	s.ApplyModels(testModels)
	s.SetChecked([]string{"3", "7"})
	s.ApplyModels(testModels[:1])
	if len(s.Checked) != 0 {
		t.Fatalf("expected checked cleared, got %v", s.Checked)
	}
}

func TestSetCheckedFollowsRowOrder(t *testing.T) {
	var s State
	s.ApplyModels(testModels)
	s.SetChecked([]string{"9", "3", "42"})
	if !slices.Equal(s.Checked, []string{"3", "9"}) {
		t.Fatalf("expected row order without unknown ids, got %v", s.Checked)
	}
}

func TestToggle(t *testing.T) {
	var s State
	s.ApplyModels(testModels)
	s.Toggle("7", true)
	s.Toggle("3", true)
	if !slices.Equal(s.Checked, []string{"3", "7"}) {
		t.Fatalf("unexpected %v", s.Checked)
	}
	s.Toggle("3", false)
	s.Toggle("42", true)
	if !slices.Equal(s.Checked, []string{"7"}) {
		t.Fatalf("unexpected %v", s.Checked)
	}
	if !s.IsChecked("7") || s.IsChecked("3") {
		t.Fatal("IsChecked disagrees with Checked")
	}
}

func TestFiltersRoundTrip(t *testing.T) {
	var s State
	s.SetFilters("Model S", "3", "2")
	search, m, c := s.Filters()
	if search != "Model S" || m != "3" || c != "2" {
		t.Fatalf("unexpected %q %q %q", search, m, c)
	}
}

func TestApplyDetailsComparisonRecommendations(t *testing.T) {
	var s State
	s.ApplyDetails(domain.Model{ID: 42, Name: "Model S", Year: 2023, ManufacturerID: 3, Image: "s.jpg",
		Specifications: domain.Specifications{Engine: "Electric", Horsepower: 670, Transmission: "Single", Drivetrain: "AWD"}})
	if s.Details.ManufacturerID != "3" || s.Details.Horsepower != 670 || s.Details.Image != "s.jpg" {
		t.Fatalf("unexpected details %+v", s.Details)
	}

	s.ApplyComparison([]domain.Model{
		{Name: "B", Year: 2021, Specifications: domain.Specifications{Horsepower: 200}},
		{Name: "A", Year: 2020, Specifications: domain.Specifications{Horsepower: 100}},
	})
	if len(s.Comparison) != 2 || s.Comparison[0].Name != "B" || s.Comparison[1].Horsepower != 100 {
		t.Fatalf("unexpected comparison %+v", s.Comparison)
	}

	s.ApplyRecommendations([]domain.Recommendation{{Name: "Model 3"}, {Name: "Model Y"}})
	if !slices.Equal(s.Recommendations, []string{"Model 3", "Model Y"}) {
		t.Fatalf("unexpected recommendations %v", s.Recommendations)
	}
}

func TestCloneIsDeep(t *testing.T) {
	var s State
	s.ApplyManufacturers(testManufacturers)
	s.ApplyModels(testModels)
	s.SetChecked([]string{"3"})
	s.ApplyDetails(testModels[0])

	c := s.Clone()
	s.Rows[0].Name = "changed"
	s.Checked[0] = "x"
	s.Details.Name = "changed"
	s.Manufacturers.Options[1].Label = "changed"

	if c.Rows[0].Name != "Model S" || c.Checked[0] != "3" || c.Details.Name != "Model S" || c.Manufacturers.Options[1].Label != "Tesla" {
		t.Fatalf("clone shares memory with original: %+v", c)
	}
}

func TestSelectLabel(t *testing.T) {
	var s State
	s.ApplyCategories(testCategories)
	if s.Categories.Label("5") != "SUV" || s.Categories.Label("404") != "" {
		t.Fatal("unexpected label lookup")
	}
}
