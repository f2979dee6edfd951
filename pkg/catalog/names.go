package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DisplayName turns a snake_case catalog ID into a human-readable name,
// e.g. "rusty_short_sword" -> "Rusty Short Sword". Used when an entry
// has no explicit name and when weaving item mentions into narratives.
func DisplayName(id string) string {
	if id == "" {
		return ""
	}
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}
