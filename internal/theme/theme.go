// Package theme holds the ten fixed style presets and the resolution chain
// shared by the public page and the owner preview.
package theme

import "regexp"

// ID identifies one of the ten presets, T01 through T10.
type ID string

// Default is used whenever neither the profile nor the document carries a
// valid theme.
const Default ID = "T01"

var idPattern = regexp.MustCompile(`^T(0[1-9]|10)$`)

// ParseID validates s against the closed T01..T10 set.
func ParseID(s string) (ID, bool) {
	if !idPattern.MatchString(s) {
		return "", false
	}
	return ID(s), true
}

// Valid reports whether id is one of the ten presets.
func (id ID) Valid() bool {
	_, ok := ParseID(string(id))
	return ok
}

// Preset is an opaque bundle of display attributes. Values are utility class
// names consumed by the page stylesheet.
type Preset struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	Background    string `json:"background"`
	TextPrimary   string `json:"textPrimary"`
	TextSecondary string `json:"textSecondary"`
	Accent        string `json:"accent"`
	Border        string `json:"border"`
	Surface       string `json:"surface"`
	Elevation     string `json:"elevation"`
	Hero          string `json:"hero,omitempty"`
}

var presets = []Preset{
	{ID: "T01", Name: "Clean white", Background: "bg-white", TextPrimary: "text-gray-900", TextSecondary: "text-gray-600", Accent: "text-blue-600", Border: "border-gray-200", Surface: "bg-white", Elevation: "shadow-sm"},
	{ID: "T02", Name: "Navy trust", Background: "bg-slate-50", TextPrimary: "text-slate-900", TextSecondary: "text-slate-600", Accent: "text-indigo-700", Border: "border-indigo-100", Surface: "bg-white", Elevation: "shadow-md", Hero: "bg-indigo-900"},
	{ID: "T03", Name: "Warm orange", Background: "bg-orange-50", TextPrimary: "text-stone-900", TextSecondary: "text-stone-600", Accent: "text-orange-600", Border: "border-orange-200", Surface: "bg-white", Elevation: "shadow-sm", Hero: "bg-orange-100"},
	{ID: "T04", Name: "Minimal", Background: "bg-white", TextPrimary: "text-black", TextSecondary: "text-neutral-500", Accent: "text-black", Border: "border-neutral-200", Surface: "bg-white", Elevation: "shadow-none"},
	{ID: "T05", Name: "Slate professional", Background: "bg-slate-100", TextPrimary: "text-slate-900", TextSecondary: "text-slate-500", Accent: "text-slate-700", Border: "border-slate-300", Surface: "bg-white", Elevation: "shadow", Hero: "bg-slate-800"},
	{ID: "T06", Name: "Purple creative", Background: "bg-purple-50", TextPrimary: "text-purple-950", TextSecondary: "text-purple-700", Accent: "text-purple-600", Border: "border-purple-200", Surface: "bg-white", Elevation: "shadow-md", Hero: "bg-purple-100"},
	{ID: "T07", Name: "Emerald calm", Background: "bg-emerald-50", TextPrimary: "text-emerald-950", TextSecondary: "text-emerald-700", Accent: "text-emerald-600", Border: "border-emerald-200", Surface: "bg-white", Elevation: "shadow-sm", Hero: "bg-emerald-100"},
	{ID: "T08", Name: "Dark", Background: "bg-gray-900", TextPrimary: "text-gray-100", TextSecondary: "text-gray-400", Accent: "text-amber-400", Border: "border-gray-700", Surface: "bg-gray-800", Elevation: "shadow-lg", Hero: "bg-black"},
	{ID: "T09", Name: "Stone natural", Background: "bg-stone-100", TextPrimary: "text-stone-900", TextSecondary: "text-stone-600", Accent: "text-amber-700", Border: "border-stone-300", Surface: "bg-stone-50", Elevation: "shadow-sm"},
	{ID: "T10", Name: "Rose soft", Background: "bg-rose-50", TextPrimary: "text-rose-950", TextSecondary: "text-rose-700", Accent: "text-rose-500", Border: "border-rose-200", Surface: "bg-white", Elevation: "shadow-sm", Hero: "bg-rose-100"},
}

// All returns the ten presets in id order.
func All() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Lookup returns the preset for id, falling back to the default preset.
func Lookup(id ID) Preset {
	for _, p := range presets {
		if p.ID == id {
			return p
		}
	}
	return presets[0]
}

// Resolve picks the profile's theme if valid, else the generated document's
// theme if valid, else the default.
func Resolve(profileThemeID, documentThemeID string) Preset {
	if id, ok := ParseID(profileThemeID); ok {
		return Lookup(id)
	}
	if id, ok := ParseID(documentThemeID); ok {
		return Lookup(id)
	}
	return Lookup(Default)
}
