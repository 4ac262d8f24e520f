package taxonomy

// Style describes how a category is drawn. Name doubles as the CSS class of
// the result box; the colors are hex strings shared by the web stylesheet and
// the terminal renderer.
type Style struct {
	Name       string `json:"name" yaml:"name"`
	Icon       string `json:"icon" yaml:"icon"`
	Background string `json:"background" yaml:"background"`
	Border     string `json:"border" yaml:"border"`
	Text       string `json:"text" yaml:"text"`
	Accent     string `json:"accent" yaml:"accent"`
}

// UnknownStyle is used for predictions that match no category.
func UnknownStyle() Style {
	return definitions[Unknown].style
}

// Styles returns the style of every category plus the unknown fallback,
// keyed by style name. Used to emit the stylesheet.
func Styles() map[string]Style {
	out := make(map[string]Style, numCategories)
	for c := Unknown; c < numCategories; c++ {
		s := definitions[c].style
		out[s.Name] = s
	}
	return out
}
