// Package taxonomy holds the fixed label set used to classify claims: the
// coarse categories, the fine-grained indicator phrases bound to them, and the
// display style of each category. The classifier derives its candidate labels
// from these tables and the presenter derives its buckets from them, so the two
// cannot drift apart.
package taxonomy

// Category is one of the coarse claim categories.
type Category int

const (
	Unknown Category = iota
	Greenwashing
	GenuineSustainability
	MarketingHype

	numCategories
)

type definition struct {
	label       string
	description string
	bucketTitle string
	style       Style
}

// Indexed by Category. The array length is fixed by numCategories, so adding
// a category without a definition leaves a zero entry that the tests reject.
var definitions = [numCategories]definition{
	Unknown: {
		label:       "Unknown",
		description: "The model returned a label outside the known set",
		bucketTitle: "Other",
		style: Style{
			Name:       "unknown",
			Icon:       "❓",
			Background: "#e9ecef",
			Border:     "#dee2e6",
			Text:       "#383d41",
			Accent:     "#6c757d",
		},
	},
	Greenwashing: {
		label:       "Greenwashing",
		description: "Misleading or unsubstantiated environmental claims",
		bucketTitle: "Potential issues",
		style: Style{
			Name:       "greenwashing",
			Icon:       "⚠️",
			Background: "#f8d7da",
			Border:     "#f5c6cb",
			Text:       "#721c24",
			Accent:     "#dc3545",
		},
	},
	GenuineSustainability: {
		label:       "Genuine Sustainability",
		description: "Specific, verifiable environmental practices",
		bucketTitle: "Positive indicators",
		style: Style{
			Name:       "genuine",
			Icon:       "✅",
			Background: "#d4edda",
			Border:     "#c3e6cb",
			Text:       "#155724",
			Accent:     "#28a745",
		},
	},
	MarketingHype: {
		label:       "Marketing Hype",
		description: "Promotional language without environmental substance",
		bucketTitle: "Hype signals",
		style: Style{
			Name:       "marketing-hype",
			Icon:       "📢",
			Background: "#fff3cd",
			Border:     "#ffeaa7",
			Text:       "#856404",
			Accent:     "#ffc107",
		},
	},
}

// Categories returns the classifiable categories in canonical order.
// Unknown is never a candidate and is not included.
func Categories() []Category {
	out := make([]Category, 0, numCategories-1)
	for c := Unknown + 1; c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}

func (c Category) valid() bool {
	return c > Unknown && c < numCategories
}

func (c Category) def() definition {
	if !c.valid() {
		return definitions[Unknown]
	}
	return definitions[c]
}

// Label is the candidate label sent to the model.
func (c Category) Label() string { return c.def().label }

func (c Category) String() string { return c.Label() }

func (c Category) Description() string { return c.def().description }

// BucketTitle is the heading of the indicator bucket owned by the category.
func (c Category) BucketTitle() string { return c.def().bucketTitle }

// Style returns the display style, falling back to the unknown style for
// values outside the enumeration.
func (c Category) Style() Style { return c.def().style }

// ParseCategory maps a model label back to its category by exact match.
func ParseCategory(label string) (Category, bool) {
	for _, c := range Categories() {
		if definitions[c].label == label {
			return c, true
		}
	}
	return Unknown, false
}

// StyleFor resolves the style for a model label, using the unknown style when
// the label is not a known category.
func StyleFor(label string) Style {
	c, _ := ParseCategory(label)
	return c.Style()
}

// CoarseLabels returns the coarse candidate labels in canonical order.
func CoarseLabels() []string {
	cats := Categories()
	labels := make([]string, len(cats))
	for i, c := range cats {
		labels[i] = c.Label()
	}
	return labels
}
