package models

// Category is a read-only expense grouping seeded by migrations.
type Category struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"categoryImageUrl"`
}
