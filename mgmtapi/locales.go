package mgmtapi

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/blogem/agility-auth/models"
)

// ParseLocales maps a locale list payload. Entries may be objects or bare
// locale code strings; missing fields fall back to index based values.
func ParseLocales(body []byte) ([]models.LocaleInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid locale payload")
	}

	list := gjson.ParseBytes(body)
	if !list.IsArray() {
		// Some endpoints wrap the list
		for _, key := range []string{"locales", "items", "data"} {
			if inner := list.Get(key); inner.IsArray() {
				list = inner
				break
			}
		}
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("locale payload is not a list")
	}

	entries := list.Array()
	locales := make([]models.LocaleInfo, 0, len(entries))
	for i, entry := range entries {
		locales = append(locales, localeFromJSON(i, entry))
	}
	return locales, nil
}

func localeFromJSON(index int, entry gjson.Result) models.LocaleInfo {
	var bare string
	if entry.Type == gjson.String {
		bare = entry.String()
	}

	code := firstString(entry.Get("code"), bare, fmt.Sprintf("locale-%d", index))
	name := firstString(entry.Get("name"), firstString(entry.Get("description"), bare, fmt.Sprintf("Locale %d", index+1)))

	id := int64(index)
	if v := entry.Get("id"); v.Type == gjson.Number {
		id = v.Int()
	}

	enabled := true
	if v := entry.Get("isEnabled"); v.Type == gjson.False {
		enabled = false
	}

	return models.LocaleInfo{
		LocaleCode: code,
		LocaleID:   id,
		LocaleName: name,
		IsDefault:  entry.Get("isDefault").Type == gjson.True,
		IsEnabled:  enabled,
	}
}

// firstString returns v when it is a non-empty string, else the first
// non-empty fallback
func firstString(v gjson.Result, fallbacks ...string) string {
	if v.Type == gjson.String && v.String() != "" {
		return v.String()
	}
	for _, f := range fallbacks {
		if f != "" {
			return f
		}
	}
	return ""
}
