package search

// Package search implements the category matcher behind the service search
// box. It is pure: a static catalog, a synonym table, and a scoring match
// over normalized query tokens. No I/O, safe for concurrent use.

// Category is one bookable service category.
type Category struct {
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// DefaultCatalog returns the built-in service categories.
func DefaultCatalog() []Category {
	return []Category{
		{
			Slug: "plumbing", Name: "Plumbing",
			Keywords: []string{"pipe", "leak", "drain", "faucet", "toilet", "water heater", "sink"},
		},
		{
			Slug: "electrical", Name: "Electrical",
			Keywords: []string{"wiring", "outlet", "breaker", "lighting", "socket", "fuse"},
		},
		{
			Slug: "carpentry", Name: "Carpentry",
			Keywords: []string{"wood", "furniture", "shelf", "door", "cabinet", "deck"},
		},
		{
			Slug: "cleaning", Name: "Cleaning",
			Keywords: []string{"deep clean", "housekeeping", "window", "carpet", "move out"},
		},
		{
			Slug: "painting", Name: "Painting",
			Keywords: []string{"paint", "wall", "ceiling", "primer", "exterior", "interior"},
		},
		{
			Slug: "gardening", Name: "Gardening",
			Keywords: []string{"lawn", "mowing", "hedge", "landscaping", "weeding", "tree"},
		},
		{
			Slug: "moving", Name: "Moving",
			Keywords: []string{"relocation", "packing", "boxes", "truck", "furniture transport"},
		},
		{
			Slug: "appliance-repair", Name: "Appliance Repair",
			Keywords: []string{"washer", "dryer", "fridge", "refrigerator", "oven", "dishwasher"},
		},
		{
			Slug: "hvac", Name: "Heating & Cooling",
			Keywords: []string{"heating", "cooling", "furnace", "air conditioning", "thermostat", "boiler"},
		},
		{
			Slug: "locksmith", Name: "Locksmith",
			Keywords: []string{"lock", "key", "lockout", "deadbolt", "rekey"},
		},
	}
}

// DefaultSynonyms maps common query terms onto catalog vocabulary. Keys and
// values are normalized tokens.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"plumber":     {"plumbing"},
		"tap":         {"faucet"},
		"clogged":     {"drain"},
		"wc":          {"toilet"},
		"electrician": {"electrical"},
		"sparky":      {"electrical"},
		"lamp":        {"lighting"},
		"carpenter":   {"carpentry"},
		"handyman":    {"carpentry"},
		"maid":        {"housekeeping"},
		"cleaner":     {"cleaning"},
		"painter":     {"painting"},
		"gardener":    {"gardening"},
		"yard":        {"lawn"},
		"movers":      {"moving"},
		"removal":     {"moving"},
		"freezer":     {"fridge"},
		"ac":          {"air", "conditioning"},
		"aircon":      {"air", "conditioning"},
		"radiator":    {"heating"},
		"keys":        {"key"},
		"locked":      {"lockout"},
	}
}
