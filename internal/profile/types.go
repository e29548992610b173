package profile

import (
	"time"

	"github.com/kalambet/meishi/internal/document"
	"github.com/kalambet/meishi/internal/publish"
)

// User is an account resolved from the identity provider's subject.
type User struct {
	ID          string     `json:"id"`
	ExternalID  string     `json:"externalId"`
	Email       string     `json:"email,omitempty"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// Profile is a user's introduction page: the author's answers, the generated
// document and the publication flag. Empty strings mean "not provided".
type Profile struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Slug      string `json:"slug"`
	Published bool   `json:"isPublished"`

	Role           string   `json:"role,omitempty"`
	Audience       Audience `json:"audience,omitempty"`
	ImpressionTags []string `json:"impressionTags"`

	Name      string   `json:"name,omitempty"`
	Headline  string   `json:"headline,omitempty"`
	Tagline   string   `json:"tagline,omitempty"`
	PhotoURLs []string `json:"photoUrls"`

	WhoHelp    string `json:"whoHelp,omitempty"`
	Situation  string `json:"situation,omitempty"`
	ReasonText string `json:"reasonText,omitempty"`
	ValueText  string `json:"valueText,omitempty"`
	NotFitText string `json:"notFitText,omitempty"`
	HumanText  string `json:"humanText,omitempty"`

	ExperienceTags  []string `json:"experienceTags"`
	CommonQuestions []string `json:"commonQuestions"`

	LayoutTemplateID string `json:"layoutTemplateId"`

	Tone     document.Tone      `json:"tone,omitempty"`
	ThemeID  string             `json:"themeId,omitempty"`
	Document *document.Document `json:"generated,omitempty"`

	Links []Link `json:"links"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OnboardingComplete reports whether generation may run: role, audience and
// at least one impression tag are required.
func (p Profile) OnboardingComplete() bool {
	return p.Role != "" && p.Audience != "" && len(p.ImpressionTags) > 0
}

// State returns the publication state.
func (p Profile) State() publish.State {
	return publish.StateOf(p.Document != nil, p.Published)
}

// Link is one external link shown on the page. Position is 0-based and dense
// within a profile.
type Link struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"pageId"`
	Label     string    `json:"label"`
	URL       string    `json:"url"`
	Position  int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MaxLinks is the per-profile link limit.
const MaxLinks = 5

// Audience is who the page is primarily written for.
type Audience string

const (
	AudienceProspects Audience = "prospects"
	AudienceClients   Audience = "clients"
	AudienceReferrers Audience = "referrers"
	AudiencePartners  Audience = "partners"
	AudienceInvestors Audience = "investors"
)

var audienceLabels = map[Audience]string{
	AudienceProspects: "prospective customers",
	AudienceClients:   "existing customers",
	AudienceReferrers: "people who refer others",
	AudiencePartners:  "hiring and collaboration partners",
	AudienceInvestors: "investors and founders",
}

// ParseAudience validates s against the closed audience set.
func ParseAudience(s string) (Audience, bool) {
	a := Audience(s)
	_, ok := audienceLabels[a]
	return a, ok
}

// Label is a human-readable description used in prompts.
func (a Audience) Label() string {
	if l, ok := audienceLabels[a]; ok {
		return l
	}
	return string(a)
}

// ImpressionTags lists the ten impressions an author may pick from.
var ImpressionTags = []string{
	"sincere", "logical", "calm", "friendly", "polite",
	"intellectual", "warm", "passionate", "flat", "cool",
}

const (
	MaxImpressionTags  = 3
	MaxExperienceTags  = 3
	MaxCommonQuestions = 3
)
