// Package domain defines the catalog entities exchanged with the catalog API
// and the validation applied to identifiers coming from users.
package domain

// Manufacturer is a vehicle maker listed by the catalog.
type Manufacturer struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Country      string `json:"country,omitempty"`
	FoundingYear int    `json:"foundingYear,omitempty"`
}

// Category groups models by body style or segment.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Specifications are the technical fields shown in a model's detail view.
type Specifications struct {
	Engine       string `json:"engine"`
	Horsepower   int    `json:"horsepower"`
	Transmission string `json:"transmission"`
	Drivetrain   string `json:"drivetrain"`
}

// Model is one vehicle configuration in the catalog.
type Model struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Year           int            `json:"year"`
	ManufacturerID int            `json:"manufacturerId"`
	CategoryID     int            `json:"categoryId"`
	Image          string         `json:"image"`
	Specifications Specifications `json:"specifications"`
}

// Recommendation is an entry of the recommendations endpoint. The endpoint
// returns full models; only the name is rendered.
type Recommendation struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}
