package profile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kalambet/meishi/internal/layout"
	"github.com/kalambet/meishi/internal/theme"
)

// Update is a partial edit submitted by the owner. Nil fields are left
// untouched; Links, when set, replaces the whole link list.
type Update struct {
	Role             *string      `json:"role"`
	Audience         *string      `json:"audience"`
	ImpressionTags   *[]string    `json:"impressionTags"`
	Name             *string      `json:"name"`
	Headline         *string      `json:"headline"`
	Tagline          *string      `json:"tagline"`
	PhotoURLs        *[]string    `json:"photoUrls"`
	WhoHelp          *string      `json:"whoHelp"`
	Situation        *string      `json:"situation"`
	ReasonText       *string      `json:"reasonText"`
	ValueText        *string      `json:"valueText"`
	NotFitText       *string      `json:"notFitText"`
	HumanText        *string      `json:"humanText"`
	ExperienceTags   *[]string    `json:"experienceTags"`
	CommonQuestions  *[]string    `json:"commonQuestions"`
	LayoutTemplateID *string      `json:"layoutTemplateId"`
	ThemeID          *string      `json:"themeId"`
	Links            *[]LinkInput `json:"links"`
}

// LinkInput is a new link.
type LinkInput struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// LinkUpdate is a partial link edit.
type LinkUpdate struct {
	Label *string `json:"label"`
	URL   *string `json:"url"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// patch validates u and converts it into a storage Patch. Enumerated values
// are checked here so nothing downstream sees an out-of-range id.
func (u Update) patch() (Patch, error) {
	var p Patch

	text := []struct {
		field ScalarField
		value *string
	}{
		{FieldRole, u.Role},
		{FieldName, u.Name},
		{FieldHeadline, u.Headline},
		{FieldTagline, u.Tagline},
		{FieldWhoHelp, u.WhoHelp},
		{FieldSituation, u.Situation},
		{FieldReasonText, u.ReasonText},
		{FieldValueText, u.ValueText},
		{FieldNotFitText, u.NotFitText},
		{FieldHumanText, u.HumanText},
	}
	for _, t := range text {
		if t.value != nil {
			p.Scalar(t.field, strings.TrimSpace(*t.value))
		}
	}

	if u.Audience != nil {
		a := strings.TrimSpace(*u.Audience)
		if a != "" {
			if _, ok := ParseAudience(a); !ok {
				return Patch{}, invalid("unknown audience %q", a)
			}
		}
		p.Scalar(FieldAudience, a)
	}

	if u.ImpressionTags != nil {
		tags, err := impressionTags(*u.ImpressionTags)
		if err != nil {
			return Patch{}, err
		}
		p.Array(FieldImpressionTags, tags)
	}

	lists := []struct {
		field ArrayField
		value *[]string
		max   int
		name  string
	}{
		{FieldPhotoURLs, u.PhotoURLs, layout.MaxPhotos, "photoUrls"},
		{FieldExperienceTags, u.ExperienceTags, MaxExperienceTags, "experienceTags"},
		{FieldCommonQuestions, u.CommonQuestions, MaxCommonQuestions, "commonQuestions"},
	}
	for _, l := range lists {
		if l.value == nil {
			continue
		}
		items := compact(*l.value)
		if len(items) > l.max {
			return Patch{}, invalid("%s accepts at most %d entries, got %d", l.name, l.max, len(items))
		}
		p.Array(l.field, items)
	}

	if u.LayoutTemplateID != nil {
		id := strings.TrimSpace(*u.LayoutTemplateID)
		if id == "" {
			id = string(layout.Default)
		}
		if _, ok := layout.Parse(id); !ok {
			return Patch{}, invalid("unknown layout template %q", id)
		}
		p.Scalar(FieldLayoutTemplateID, id)
	}

	if u.ThemeID != nil {
		id := strings.TrimSpace(*u.ThemeID)
		if id != "" {
			if _, ok := theme.ParseID(id); !ok {
				return Patch{}, invalid("unknown theme %q", id)
			}
		}
		p.Scalar(FieldThemeID, id)
	}

	return p, nil
}

func impressionTags(in []string) ([]string, error) {
	tags := compact(in)
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if !slices.Contains(ImpressionTags, tag) {
			return nil, invalid("unknown impression tag %q", tag)
		}
		if seen[tag] {
			return nil, invalid("duplicate impression tag %q", tag)
		}
		seen[tag] = true
	}
	if len(tags) > MaxImpressionTags {
		return nil, invalid("at most %d impression tags, got %d", MaxImpressionTags, len(tags))
	}
	return tags, nil
}

// compact trims entries and drops blanks, keeping order.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (l LinkInput) validate() (LinkInput, error) {
	l.Label = strings.TrimSpace(l.Label)
	l.URL = strings.TrimSpace(l.URL)
	if l.Label == "" || l.URL == "" {
		return LinkInput{}, invalid("link label and url are required")
	}
	return l, nil
}
