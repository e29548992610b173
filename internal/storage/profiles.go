package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kalambet/meishi/internal/document"
	"github.com/kalambet/meishi/internal/profile"
)

// column describes how one profiles column is stored and decoded. Every
// column is scanned as nullable text; kind selects the encoding.
type column struct {
	name   string
	kind   profile.FieldKind
	decode func(p *profile.Profile, raw sql.NullString) error
}

func textColumn(name string, field func(p *profile.Profile) *string) column {
	return column{name: name, kind: profile.KindScalar, decode: func(p *profile.Profile, raw sql.NullString) error {
		*field(p) = raw.String
		return nil
	}}
}

func arrayColumn(f profile.ArrayField, field func(p *profile.Profile) *[]string) column {
	return column{name: string(f), kind: profile.KindStringArray, decode: func(p *profile.Profile, raw sql.NullString) error {
		list := []string{}
		if raw.Valid && raw.String != "" {
			if err := json.Unmarshal([]byte(raw.String), &list); err != nil {
				return fmt.Errorf("decoding %s: %w", f, err)
			}
		}
		*field(p) = list
		return nil
	}}
}

func timeColumn(name string, field func(p *profile.Profile) *time.Time) column {
	return column{name: name, kind: profile.KindScalar, decode: func(p *profile.Profile, raw sql.NullString) error {
		t, err := parseTime(raw.String)
		if err != nil {
			return err
		}
		*field(p) = t
		return nil
	}}
}

var profileColumns = []column{
	textColumn("id", func(p *profile.Profile) *string { return &p.ID }),
	textColumn("user_id", func(p *profile.Profile) *string { return &p.UserID }),
	textColumn("slug", func(p *profile.Profile) *string { return &p.Slug }),
	{name: string(profile.FieldPublished), kind: profile.KindScalar, decode: func(p *profile.Profile, raw sql.NullString) error {
		p.Published = raw.String == "1" || raw.String == "true"
		return nil
	}},
	textColumn(string(profile.FieldRole), func(p *profile.Profile) *string { return &p.Role }),
	{name: string(profile.FieldAudience), kind: profile.KindScalar, decode: func(p *profile.Profile, raw sql.NullString) error {
		p.Audience = profile.Audience(raw.String)
		return nil
	}},
	arrayColumn(profile.FieldImpressionTags, func(p *profile.Profile) *[]string { return &p.ImpressionTags }),
	textColumn(string(profile.FieldName), func(p *profile.Profile) *string { return &p.Name }),
	textColumn(string(profile.FieldHeadline), func(p *profile.Profile) *string { return &p.Headline }),
	textColumn(string(profile.FieldTagline), func(p *profile.Profile) *string { return &p.Tagline }),
	arrayColumn(profile.FieldPhotoURLs, func(p *profile.Profile) *[]string { return &p.PhotoURLs }),
	textColumn(string(profile.FieldWhoHelp), func(p *profile.Profile) *string { return &p.WhoHelp }),
	textColumn(string(profile.FieldSituation), func(p *profile.Profile) *string { return &p.Situation }),
	textColumn(string(profile.FieldReasonText), func(p *profile.Profile) *string { return &p.ReasonText }),
	textColumn(string(profile.FieldValueText), func(p *profile.Profile) *string { return &p.ValueText }),
	textColumn(string(profile.FieldNotFitText), func(p *profile.Profile) *string { return &p.NotFitText }),
	textColumn(string(profile.FieldHumanText), func(p *profile.Profile) *string { return &p.HumanText }),
	arrayColumn(profile.FieldExperienceTags, func(p *profile.Profile) *[]string { return &p.ExperienceTags }),
	arrayColumn(profile.FieldCommonQuestions, func(p *profile.Profile) *[]string { return &p.CommonQuestions }),
	textColumn(string(profile.FieldLayoutTemplateID), func(p *profile.Profile) *string { return &p.LayoutTemplateID }),
	{name: string(profile.FieldTone), kind: profile.KindScalar, decode: func(p *profile.Profile, raw sql.NullString) error {
		p.Tone = document.Tone(raw.String)
		return nil
	}},
	textColumn(string(profile.FieldThemeID), func(p *profile.Profile) *string { return &p.ThemeID }),
	{name: string(profile.FieldGenerated), kind: profile.KindDocument, decode: func(p *profile.Profile, raw sql.NullString) error {
		if !raw.Valid || raw.String == "" || raw.String == "null" {
			p.Document = nil
			return nil
		}
		var doc document.Document
		if err := json.Unmarshal([]byte(raw.String), &doc); err != nil {
			return fmt.Errorf("decoding %s: %w", profile.FieldGenerated, err)
		}
		p.Document = &doc
		return nil
	}},
	timeColumn("created_at", func(p *profile.Profile) *time.Time { return &p.CreatedAt }),
	timeColumn("updated_at", func(p *profile.Profile) *time.Time { return &p.UpdatedAt }),
}

var (
	profileSelect = "SELECT " + columnList() + " FROM profiles"
	columnKinds   = columnKindIndex()
)

func columnList() string {
	names := make([]string, len(profileColumns))
	for i, c := range profileColumns {
		names[i] = c.name
	}
	return strings.Join(names, ", ")
}

func columnKindIndex() map[string]profile.FieldKind {
	m := make(map[string]profile.FieldKind, len(profileColumns))
	for _, c := range profileColumns {
		m[c.name] = c.kind
	}
	return m
}

func scanProfile(row interface{ Scan(...any) error }) (profile.Profile, error) {
	raw := make([]sql.NullString, len(profileColumns))
	dest := make([]any, len(raw))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, ErrNotFound
		}
		return profile.Profile{}, err
	}

	var p profile.Profile
	for i, c := range profileColumns {
		if err := c.decode(&p, raw[i]); err != nil {
			return profile.Profile{}, err
		}
	}
	return p, nil
}

// encodeChange converts a patch value into its column representation.
func encodeChange(c profile.Change) (any, error) {
	want, ok := columnKinds[c.Column]
	if !ok {
		return nil, fmt.Errorf("unknown profile column %q", c.Column)
	}
	if want != c.Kind {
		return nil, fmt.Errorf("column %s stores %s values, got %s", c.Column, want, c.Kind)
	}

	switch c.Kind {
	case profile.KindScalar:
		switch v := c.Value.(type) {
		case nil:
			return nil, nil
		case string:
			return nullable(v), nil
		case bool:
			if v {
				return 1, nil
			}
			return 0, nil
		default:
			return nil, fmt.Errorf("column %s: unsupported scalar %T", c.Column, c.Value)
		}
	case profile.KindStringArray, profile.KindDocument:
		b, err := json.Marshal(c.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", c.Column, err)
		}
		if string(b) == "null" {
			if c.Kind == profile.KindStringArray {
				return "[]", nil
			}
			return nil, nil
		}
		return string(b), nil
	}
	return nil, fmt.Errorf("column %s: unknown kind %d", c.Column, c.Kind)
}

func (s *Store) ProfileByUserID(ctx context.Context, userID string) (profile.Profile, error) {
	return s.loadProfile(ctx, profileSelect+" WHERE user_id = ?", userID)
}

func (s *Store) ProfileByID(ctx context.Context, id string) (profile.Profile, error) {
	return s.loadProfile(ctx, profileSelect+" WHERE id = ?", id)
}

// PublishedProfileBySlug returns ErrNotFound for unpublished profiles so
// callers cannot tell them apart from missing ones.
func (s *Store) PublishedProfileBySlug(ctx context.Context, slug string) (profile.Profile, error) {
	return s.loadProfile(ctx, profileSelect+" WHERE slug = ? AND is_published = 1", slug)
}

func (s *Store) loadProfile(ctx context.Context, query string, arg any) (profile.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, s.q(query), arg))
	if err != nil {
		return profile.Profile{}, err
	}
	if p.Links, err = s.LinksByProfile(ctx, p.ID); err != nil {
		return profile.Profile{}, fmt.Errorf("loading links: %w", err)
	}
	return p, nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.q("SELECT COUNT(*) FROM profiles WHERE slug = ?"), slug).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) CreateProfile(ctx context.Context, p profile.Profile) error {
	var patch profile.Patch
	patch.Scalar(profile.FieldPublished, p.Published).
		Scalar(profile.FieldRole, p.Role).
		Scalar(profile.FieldAudience, string(p.Audience)).
		Array(profile.FieldImpressionTags, p.ImpressionTags).
		Scalar(profile.FieldName, p.Name).
		Scalar(profile.FieldHeadline, p.Headline).
		Scalar(profile.FieldTagline, p.Tagline).
		Array(profile.FieldPhotoURLs, p.PhotoURLs).
		Scalar(profile.FieldWhoHelp, p.WhoHelp).
		Scalar(profile.FieldSituation, p.Situation).
		Scalar(profile.FieldReasonText, p.ReasonText).
		Scalar(profile.FieldValueText, p.ValueText).
		Scalar(profile.FieldNotFitText, p.NotFitText).
		Scalar(profile.FieldHumanText, p.HumanText).
		Array(profile.FieldExperienceTags, p.ExperienceTags).
		Array(profile.FieldCommonQuestions, p.CommonQuestions).
		Scalar(profile.FieldLayoutTemplateID, p.LayoutTemplateID).
		Scalar(profile.FieldTone, string(p.Tone)).
		Scalar(profile.FieldThemeID, p.ThemeID).
		Document(profile.FieldGenerated, p.Document)

	cols := []string{"id", "user_id", "slug", "created_at", "updated_at"}
	args := []any{p.ID, p.UserID, p.Slug, formatTime(p.CreatedAt), formatTime(p.UpdatedAt)}
	for _, c := range patch.Changes() {
		v, err := encodeChange(c)
		if err != nil {
			return err
		}
		if v == nil && c.Column == string(profile.FieldLayoutTemplateID) {
			continue
		}
		cols = append(cols, c.Column)
		args = append(args, v)
	}

	query := fmt.Sprintf("INSERT INTO profiles (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	_, err := s.db.ExecContext(ctx, s.q(query), args...)
	return err
}

// UpdateProfile applies patch to the profile row in a single statement and
// returns the stored result. Concurrent writers are last-writer-wins.
func (s *Store) UpdateProfile(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error) {
	if err := s.updateProfile(ctx, s.db, id, patch); err != nil {
		return profile.Profile{}, err
	}
	return s.ProfileByID(ctx, id)
}

// SaveEdit applies patch and, when links is non-nil, replaces the profile's
// links with *links. Both writes share one transaction.
func (s *Store) SaveEdit(ctx context.Context, id string, patch profile.Patch, links *[]profile.Link) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if !patch.Empty() {
			if err := s.updateProfile(ctx, tx, id, patch); err != nil {
				return fmt.Errorf("updating profile: %w", err)
			}
		}
		if links != nil {
			return s.replaceLinks(ctx, tx, id, *links)
		}
		return nil
	})
}

func (s *Store) updateProfile(ctx context.Context, e execer, id string, patch profile.Patch) error {
	changes := patch.Changes()
	sets := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+2)
	for _, c := range changes {
		v, err := encodeChange(c)
		if err != nil {
			return err
		}
		sets = append(sets, c.Column+" = ?")
		args = append(args, v)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now()), id)

	query := "UPDATE profiles SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	return s.execOne(ctx, e, query, args...)
}
