package model

// SelectionMode determines how many options may be chosen within a group.
type SelectionMode string

const (
	SelectionSingle SelectionMode = "SINGLE"
	SelectionMulti  SelectionMode = "MULTI"
)

// MenuItem represents an orderable item from the catalogue.
// It is read-only on this side; the backend owns pricing and availability.
type MenuItem struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	BasePrice    int64         `json:"base_price"`
	ImageURL     string        `json:"image_url,omitempty"`
	Available    bool          `json:"available"`
	CategoryID   string        `json:"category_id"`
	OptionGroups []OptionGroup `json:"option_groups,omitempty"`
}

// Category represents a menu category.
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

// OptionGroup is a named set of selectable options. The Category tag is
// supplied by the catalogue (e.g. "size") and drives display ordering.
type OptionGroup struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category string        `json:"category,omitempty"`
	Mode     SelectionMode `json:"mode"`
	Options  []Option      `json:"options"`
}

// Option is a single choice within a group. AdditionalPrice is added to the
// item's base price when selected. IsDefault marks the option pre-selected
// when its SINGLE group is first opened.
type Option struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AdditionalPrice int64  `json:"additional_price"`
	IsDefault       bool   `json:"is_default,omitempty"`
}

// Table represents a restaurant table.
type Table struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// Table states as understood by the backend.
const (
	TableStateAvailable = "available"
	TableStateOccupied  = "occupied"
)
