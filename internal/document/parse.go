package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kalambet/meishi/internal/theme"
)

var (
	// ErrEmpty is returned for a blank generator payload.
	ErrEmpty = errors.New("empty document payload")
	// ErrMalformed is returned when the payload is not a JSON document of the
	// expected shape.
	ErrMalformed = errors.New("malformed document payload")
	// ErrMissingSections is returned when the payload has no sections object.
	ErrMissingSections = errors.New("document has no sections object")
)

// Correction records one field that was repaired while decoding.
type Correction struct {
	Field    string
	Got      string
	Replaced string
}

type wireDocument struct {
	Tone        json.RawMessage            `json:"tone"`
	ThemeID     json.RawMessage            `json:"themeId"`
	ThemeReason string                     `json:"themeReason"`
	Headline    string                     `json:"headline"`
	Tagline     string                     `json:"tagline"`
	Sections    map[string]json.RawMessage `json:"sections"`
}

// Parse decodes a generator payload into a Document. An invalid or missing
// themeId becomes theme.Default and an unknown tone is dropped; both are
// reported as corrections rather than errors. An empty sections object yields
// a valid document with no sections.
func Parse(raw string) (Document, []Correction, error) {
	payload := stripFence(strings.TrimSpace(raw))
	if payload == "" {
		return Document{}, nil, ErrEmpty
	}

	var w wireDocument
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return Document{}, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if w.Sections == nil {
		return Document{}, nil, ErrMissingSections
	}

	doc := Document{
		ThemeReason: strings.TrimSpace(w.ThemeReason),
		Headline:    strings.TrimSpace(w.Headline),
		Tagline:     strings.TrimSpace(w.Tagline),
	}
	var corrections []Correction

	themeID, isString := stringValue(w.ThemeID)
	if id, ok := theme.ParseID(themeID); ok && isString {
		doc.ThemeID = id
	} else {
		doc.ThemeID = theme.Default
		corrections = append(corrections, Correction{Field: "themeId", Got: themeID, Replaced: string(theme.Default)})
	}

	if tone, isString := stringValue(w.Tone); tone != "" {
		if parsed, ok := ParseTone(tone); ok && isString {
			doc.Tone = parsed
		} else {
			corrections = append(corrections, Correction{Field: "tone", Got: tone})
		}
	}

	for _, k := range Keys() {
		msg, ok := w.Sections[string(k)]
		if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			continue
		}
		var sec Section
		if err := json.Unmarshal(msg, &sec); err != nil {
			return Document{}, nil, fmt.Errorf("%w: section %s: %v", ErrMalformed, k, err)
		}
		switch k {
		case Quick:
			sec = Section{Body: sec.Body}
		case Proof:
			sec.Summary = ""
		}
		doc.Sections.set(k, &sec)
	}

	return doc, corrections, nil
}

// stringValue returns the trimmed text of a JSON string. Any other JSON value
// is returned in its raw form with isString false; absent and null yield "".
func stringValue(raw json.RawMessage) (v string, isString bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw), false
	}
	return strings.TrimSpace(v), true
}

// stripFence removes a surrounding ```json ... ``` block some models emit
// despite being asked for bare JSON.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
