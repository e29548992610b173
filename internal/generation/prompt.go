package generation

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kalambet/meishi/internal/llm"
	"github.com/kalambet/meishi/internal/profile"
)

const systemPrompt = `You are an editor who turns a person's own answers into a short introduction page that someone can forward to a friend.

Rules:
- Write in the language the author used.
- Do not use a question-and-answer format. Headings are statements, never questions.
- Do not exaggerate or invent facts. Use only what the author wrote.
- The "notFit" section politely describes who may not be a good match; never be negative about anyone.
- Do not put URLs or links into any text; links are shown separately.
- Pick the theme from the rubric by weighing role, audience and impression tags together.
- Output ONLY a single valid JSON object in the shape given. No prose, no markdown.`

const outputShape = `{
  "tone": "logical | soft | flat",
  "themeId": "T01..T10",
  "themeReason": "one sentence on why this theme fits",
  "headline": "optional improved headline",
  "tagline": "optional improved tagline",
  "sections": {
    "quick": {"body": "two or three sentences: who this is and who they help"},
    "reason": {"heading": "", "summary": "", "body": "why people choose them"},
    "values": {"heading": "", "summary": "", "body": "what they value in their work"},
    "notFit": {"heading": "", "summary": "", "body": "who they may not suit"},
    "proof": {"heading": "", "body": "experience and track record"},
    "human": {"heading": "", "summary": "", "body": "the person outside of work"}
  }
}
Omit any section the author gave no material for.`

//go:embed rubric.yaml
var rubricYAML []byte

type rubricTheme struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Traits string `yaml:"traits"`
	Fits   string `yaml:"fits"`
}

type rubricExample struct {
	Input string `yaml:"input"`
	Theme string `yaml:"theme"`
}

type rubric struct {
	Themes   []rubricTheme   `yaml:"themes"`
	Examples []rubricExample `yaml:"examples"`
}

// themeRubric is rendered once; it is part of every prompt.
var themeRubric = mustRenderRubric(rubricYAML)

func mustRenderRubric(raw []byte) string {
	var r rubric
	if err := yaml.Unmarshal(raw, &r); err != nil {
		panic(fmt.Sprintf("generation: parsing embedded rubric: %v", err))
	}
	if len(r.Themes) != 10 {
		panic(fmt.Sprintf("generation: rubric has %d themes, want 10", len(r.Themes)))
	}

	var sb strings.Builder
	sb.WriteString("[Themes]\n")
	for _, t := range r.Themes {
		fmt.Fprintf(&sb, "- %s %s: %s Best for: %s\n", t.ID, t.Name, t.Traits, t.Fits)
	}
	sb.WriteString("\n[Theme examples]\n")
	for _, e := range r.Examples {
		fmt.Fprintf(&sb, "- %s -> %s\n", e.Input, e.Theme)
	}
	return sb.String()
}

// BuildPrompt renders every profile input as labeled text followed by the
// theme rubric and the output shape. Equal profiles produce equal requests.
func BuildPrompt(p profile.Profile, temperature float64) llm.Request {
	var sb strings.Builder

	sb.WriteString("[Page context]\n")
	field(&sb, "Role", p.Role)
	field(&sb, "Audience", p.Audience.Label())
	field(&sb, "Impression", strings.Join(p.ImpressionTags, ", "))

	sb.WriteString("\n[Author answers]\n")
	field(&sb, "Name", p.Name)
	field(&sb, "Headline", p.Headline)
	field(&sb, "Tagline", p.Tagline)
	field(&sb, "Who I help", p.WhoHelp)
	field(&sb, "Situations I help with", p.Situation)
	field(&sb, "Why people choose me", p.ReasonText)
	field(&sb, "What I value", p.ValueText)
	field(&sb, "Who I may not suit", p.NotFitText)
	field(&sb, "Recent thoughts", p.HumanText)
	field(&sb, "Experience", strings.Join(p.ExperienceTags, ", "))
	field(&sb, "Common questions", strings.Join(p.CommonQuestions, " / "))

	sb.WriteString("\n")
	sb.WriteString(themeRubric)
	sb.WriteString("\n[Output JSON]\n")
	sb.WriteString(outputShape)

	return llm.Request{
		System:      systemPrompt,
		Prompt:      sb.String(),
		JSON:        true,
		Temperature: temperature,
	}
}

func field(sb *strings.Builder, label, value string) {
	if value == "" {
		value = "(not provided)"
	}
	fmt.Fprintf(sb, "%s: %s\n", label, value)
}
