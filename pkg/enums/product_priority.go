package enums

import "fmt"

// ProductPriority ranks how much a wishlist entry matters to its adder.
type ProductPriority string

const (
	ProductPriorityLow    ProductPriority = "low"
	ProductPriorityMedium ProductPriority = "medium"
	ProductPriorityHigh   ProductPriority = "high"
)

var validProductPriorities = []ProductPriority{
	ProductPriorityLow,
	ProductPriorityMedium,
	ProductPriorityHigh,
}

// String implements fmt.Stringer.
func (p ProductPriority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known priority.
func (p ProductPriority) IsValid() bool {
	for _, candidate := range validProductPriorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// ParseProductPriority converts a raw string into a typed priority.
func ParseProductPriority(raw string) (ProductPriority, error) {
	priority := ProductPriority(raw)
	if !priority.IsValid() {
		return "", fmt.Errorf("invalid product priority %q", raw)
	}
	return priority, nil
}
