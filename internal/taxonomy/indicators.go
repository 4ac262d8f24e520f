package taxonomy

// Indicator is a fine-grained descriptive phrase. Each indicator belongs to
// exactly one category bucket, fixed here.
type Indicator struct {
	Label    string
	Category Category
}

var indicators = []Indicator{
	{"Misleading environmental claim", Greenwashing},
	{"Vague sustainability statement", Greenwashing},
	{"Unsubstantiated green marketing", Greenwashing},
	{"Hidden environmental trade-off", Greenwashing},

	{"Authentic environmental commitment", GenuineSustainability},
	{"Verified sustainable practice", GenuineSustainability},
	{"Transparent sustainability effort", GenuineSustainability},
	{"Certification-backed claim", GenuineSustainability},

	{"Exaggerated product benefit", MarketingHype},
	{"Emotional appeal without evidence", MarketingHype},
	{"Health benefit framing", MarketingHype},
	{"Buzzword-heavy promotion", MarketingHype},
}

var bucketIndex = func() map[string]Category {
	m := make(map[string]Category, len(indicators))
	for _, ind := range indicators {
		m[ind.Label] = ind.Category
	}
	return m
}()

// Indicators returns a copy of the indicator table.
func Indicators() []Indicator {
	out := make([]Indicator, len(indicators))
	copy(out, indicators)
	return out
}

// IndicatorLabels returns the fine-grained candidate labels in table order.
func IndicatorLabels() []string {
	labels := make([]string, len(indicators))
	for i, ind := range indicators {
		labels[i] = ind.Label
	}
	return labels
}

// BucketOf returns the category owning an indicator label.
func BucketOf(label string) (Category, bool) {
	c, ok := bucketIndex[label]
	return c, ok
}
