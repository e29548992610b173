package profile

// FieldKind is the storage encoding of a profile column.
type FieldKind int

const (
	// KindScalar columns hold a single string or boolean.
	KindScalar FieldKind = iota
	// KindStringArray columns hold an ordered list of strings.
	KindStringArray
	// KindDocument columns hold a structured JSON document.
	KindDocument
)

func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindStringArray:
		return "array"
	case KindDocument:
		return "document"
	}
	return "unknown"
}

// Each field type fixes its storage kind, so the encoding of a Patch entry is
// decided by the constant used to set it.
type (
	ScalarField   string
	ArrayField    string
	DocumentField string
)

const (
	FieldRole             ScalarField = "role"
	FieldAudience         ScalarField = "audience"
	FieldName             ScalarField = "name"
	FieldHeadline         ScalarField = "headline"
	FieldTagline          ScalarField = "tagline"
	FieldWhoHelp          ScalarField = "who_help"
	FieldSituation        ScalarField = "situation"
	FieldReasonText       ScalarField = "reason_text"
	FieldValueText        ScalarField = "value_text"
	FieldNotFitText       ScalarField = "not_fit_text"
	FieldHumanText        ScalarField = "human_text"
	FieldLayoutTemplateID ScalarField = "layout_template_id"
	FieldTone             ScalarField = "tone"
	FieldThemeID          ScalarField = "theme_id"
	FieldPublished        ScalarField = "is_published"

	FieldImpressionTags  ArrayField = "impression_tags"
	FieldPhotoURLs       ArrayField = "photo_urls"
	FieldExperienceTags  ArrayField = "experience_tags"
	FieldCommonQuestions ArrayField = "common_questions"

	FieldGenerated DocumentField = "generated_json"
)

// Change is one column assignment of a Patch.
type Change struct {
	Column string
	Kind   FieldKind
	Value  any
}

// Patch is a partial update of a profile row. Setting the same field twice
// keeps the last value.
type Patch struct {
	changes []Change
}

// Scalar sets a string or bool column. An empty string clears the column.
func (p *Patch) Scalar(f ScalarField, v any) *Patch {
	return p.set(string(f), KindScalar, v)
}

// Array sets a list column. A nil slice is stored as an empty list.
func (p *Patch) Array(f ArrayField, v []string) *Patch {
	if v == nil {
		v = []string{}
	}
	return p.set(string(f), KindStringArray, v)
}

// Document sets a structured column. A nil value clears it.
func (p *Patch) Document(f DocumentField, v any) *Patch {
	return p.set(string(f), KindDocument, v)
}

func (p *Patch) set(column string, kind FieldKind, v any) *Patch {
	for i := range p.changes {
		if p.changes[i].Column == column {
			p.changes[i].Value = v
			return p
		}
	}
	p.changes = append(p.changes, Change{Column: column, Kind: kind, Value: v})
	return p
}

// Changes returns the assignments in the order fields were first set.
func (p Patch) Changes() []Change {
	out := make([]Change, len(p.changes))
	copy(out, p.changes)
	return out
}

// Empty reports whether the patch sets nothing.
func (p Patch) Empty() bool { return len(p.changes) == 0 }
