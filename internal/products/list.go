package product

// ProductListFilters describe the supported filter knobs for the menu endpoint.
type ProductListFilters struct {
	Category      *string `json:"category,omitempty"`
	Available     *bool   `json:"available,omitempty"`
	PriceMinCents *int    `json:"price_min_cents,omitempty"`
	PriceMaxCents *int    `json:"price_max_cents,omitempty"`
	Query         string  `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to filter the catalog.
type ListProductsInput struct {
	Filters ProductListFilters
	// IncludeUnavailable is only honored for staff callers; the public
	// menu always filters to available items.
	IncludeUnavailable bool
}
