package timeline

// StyleClass names a text treatment applied to a segment's overlay.
type StyleClass string

const (
	// StyleHook opens the video: centered, oversized, flanked by emoji.
	StyleHook StyleClass = "hook"
	// StyleNumbered marks a content item: top-positioned with a leading
	// emoji and a numeric-prefixed label.
	StyleNumbered StyleClass = "numbered"
	// StyleCTA closes the video: centered with a trailing emoji.
	StyleCTA StyleClass = "cta"
)

// ClassFor maps a segment's position to its style class. It is a pure
// function of ordinal position within the partition, never of content:
// the first segment hooks, the last calls to action, everything between
// is a numbered item.
func ClassFor(index, total int) StyleClass {
	switch {
	case index <= 0:
		return StyleHook
	case index >= total-1:
		return StyleCTA
	default:
		return StyleNumbered
	}
}

// TextStyle describes how a text overlay renders on screen.
type TextStyle struct {
	FontFamily    string `json:"fontFamily"`
	FontSize      int    `json:"fontSize"`
	FontWeight    string `json:"fontWeight"`
	Color         string `json:"color"`
	Emoji         string `json:"emoji,omitempty"`
	EmojiPosition string `json:"emojiPosition,omitempty"`
	Position      string `json:"position"`
	Alignment     string `json:"alignment"`
}

// StyleCatalog holds the concrete style for each class.
type StyleCatalog struct {
	Hook     TextStyle `json:"hook"`
	Numbered TextStyle `json:"numbered"`
	CTA      TextStyle `json:"cta"`
}

// For resolves a style class to its concrete style.
func (c StyleCatalog) For(class StyleClass) TextStyle {
	switch class {
	case StyleHook:
		return c.Hook
	case StyleCTA:
		return c.CTA
	default:
		return c.Numbered
	}
}

// DefaultCatalog returns the built-in style catalog used when no
// configuration overrides it.
func DefaultCatalog() StyleCatalog {
	return StyleCatalog{
		Hook: TextStyle{
			FontFamily:    "Montserrat",
			FontSize:      42,
			FontWeight:    "bold",
			Color:         "#FFFFFF",
			Emoji:         "✨",
			EmojiPosition: "both",
			Position:      "center",
			Alignment:     "center",
		},
		Numbered: TextStyle{
			FontFamily:    "Montserrat",
			FontSize:      32,
			FontWeight:    "semibold",
			Color:         "#FFFFFF",
			Emoji:         "📍",
			EmojiPosition: "leading",
			Position:      "top",
			Alignment:     "left",
		},
		CTA: TextStyle{
			FontFamily:    "Montserrat",
			FontSize:      36,
			FontWeight:    "bold",
			Color:         "#FFFFFF",
			Emoji:         "🔖",
			EmojiPosition: "trailing",
			Position:      "center",
			Alignment:     "center",
		},
	}
}
