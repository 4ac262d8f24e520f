package taxonomy

// Example is a preset claim offered in the example selector and run by the
// demo command.
type Example struct {
	Name     string   `json:"name" yaml:"name"`
	Text     string   `json:"text" yaml:"text"`
	Expected Category `json:"-" yaml:"-"`
}

var examples = []Example{
	{
		Name:     "Vague eco claim",
		Text:     "Our product is eco-friendly and good for the environment.",
		Expected: Greenwashing,
	},
	{
		Name:     "Specific sourcing",
		Text:     "We use 100% certified organic cotton sourced from fair-trade farms with verified supply chain transparency.",
		Expected: GenuineSustainability,
	},
	{
		Name:     "Marketing hype",
		Text:     "This amazing natural product will revolutionize your life!",
		Expected: MarketingHype,
	},
	{
		Name:     "Third-party certification",
		Text:     "Certified by USDA Organic and Fair Trade USA with traceable supply chain documentation.",
		Expected: GenuineSustainability,
	},
	{
		Name:     "Health framing",
		Text:     "Our vitamin-enriched sustainable formula promotes both environmental and personal health.",
		Expected: MarketingHype,
	},
	{
		Name:     "Natural and green",
		Text:     "This item is natural and green.",
		Expected: Greenwashing,
	},
	{
		Name:     "Renewable manufacturing",
		Text:     "Our manufacturing process is powered by 100% renewable energy with third-party verified carbon offsets.",
		Expected: GenuineSustainability,
	},
}

// Examples returns the preset claims.
func Examples() []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}

// ExampleByName looks up a preset claim by its display name.
func ExampleByName(name string) (Example, bool) {
	for _, ex := range examples {
		if ex.Name == name {
			return ex, true
		}
	}
	return Example{}, false
}
