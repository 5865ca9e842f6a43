package series

import "fmt"

// Category is the closed set of species groupings tracked per country.
type Category int

const (
	Total Category = iota
	Vertebrates
	Invertebrates
	Plants
)

// Categories lists every category in display order.
var Categories = []Category{Total, Vertebrates, Invertebrates, Plants}

var labels = map[Category]string{
	Total:         "Total",
	Vertebrates:   "Vertebrates",
	Invertebrates: "Invertebrates",
	Plants:        "Plants",
}

// descriptors maps the dataset's raw category strings to categories.
var descriptors = map[string]Category{
	"Threatened Species: Total (number)":         Total,
	"Threatened Species: Vertebrates (number)":   Vertebrates,
	"Threatened Species: Invertebrates (number)": Invertebrates,
	"Threatened Species: Plants (number)":        Plants,
}

func (c Category) String() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// FromDescriptor maps a raw species_category value. Matching is exact.
func FromDescriptor(raw string) (Category, bool) {
	c, ok := descriptors[raw]
	return c, ok
}

// ParseCategory maps a human-readable label (Total, Plants, ...). Matching is exact.
func ParseCategory(label string) (Category, bool) {
	for c, l := range labels {
		if l == label {
			return c, true
		}
	}
	return 0, false
}
