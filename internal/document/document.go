// Package document defines the structured introduction document produced by
// the generation service and the repair rules applied when decoding it.
package document

import "github.com/kalambet/meishi/internal/theme"

// Tone is the overall writing register chosen by the generator.
type Tone string

const (
	ToneLogical Tone = "logical"
	ToneSoft    Tone = "soft"
	ToneFlat    Tone = "flat"
)

// ParseTone validates s against the closed tone set.
func ParseTone(s string) (Tone, bool) {
	switch t := Tone(s); t {
	case ToneLogical, ToneSoft, ToneFlat:
		return t, true
	}
	return "", false
}

// SectionKey names one of the six semantic sections.
type SectionKey string

const (
	Quick  SectionKey = "quick"
	Reason SectionKey = "reason"
	Values SectionKey = "values"
	NotFit SectionKey = "notFit"
	Proof  SectionKey = "proof"
	Human  SectionKey = "human"
)

// Keys lists every section key in canonical order.
func Keys() []SectionKey {
	return []SectionKey{Quick, Reason, Values, NotFit, Proof, Human}
}

// Section is one block of generated copy. Quick carries only Body; Proof
// carries Body and an optional Heading.
type Section struct {
	Heading string `json:"heading,omitempty"`
	Summary string `json:"summary,omitempty"`
	Body    string `json:"body"`
}

// Sections holds the six independently optional sections. A nil pointer
// means the section is absent.
type Sections struct {
	Quick  *Section `json:"quick,omitempty"`
	Reason *Section `json:"reason,omitempty"`
	Values *Section `json:"values,omitempty"`
	NotFit *Section `json:"notFit,omitempty"`
	Proof  *Section `json:"proof,omitempty"`
	Human  *Section `json:"human,omitempty"`
}

// Get returns the section stored under k, or nil when absent.
func (s Sections) Get(k SectionKey) *Section {
	switch k {
	case Quick:
		return s.Quick
	case Reason:
		return s.Reason
	case Values:
		return s.Values
	case NotFit:
		return s.NotFit
	case Proof:
		return s.Proof
	case Human:
		return s.Human
	}
	return nil
}

func (s *Sections) set(k SectionKey, sec *Section) {
	switch k {
	case Quick:
		s.Quick = sec
	case Reason:
		s.Reason = sec
	case Values:
		s.Values = sec
	case NotFit:
		s.NotFit = sec
	case Proof:
		s.Proof = sec
	case Human:
		s.Human = sec
	}
}

// Present returns the keys of non-absent sections in canonical order.
func (s Sections) Present() []SectionKey {
	var out []SectionKey
	for _, k := range Keys() {
		if s.Get(k) != nil {
			out = append(out, k)
		}
	}
	return out
}

// Document is the generated introduction. Headline and Tagline, when set,
// override the author's own values on the rendered page.
type Document struct {
	Tone        Tone     `json:"tone,omitempty"`
	ThemeID     theme.ID `json:"themeId"`
	ThemeReason string   `json:"themeReason,omitempty"`
	Headline    string   `json:"headline,omitempty"`
	Tagline     string   `json:"tagline,omitempty"`
	Sections    Sections `json:"sections"`
}
