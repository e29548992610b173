package generation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kalambet/meishi/internal/theme"
)

func TestBuildPrompt_Deterministic(t *testing.T) {
	a := BuildPrompt(readyProfile(), 0.7)
	b := BuildPrompt(readyProfile(), 0.7)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("prompts differ for equal profiles:\n%s", diff)
	}
	if !a.JSON {
		t.Error("JSON = false, want true")
	}
	if a.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", a.Temperature)
	}
}

func TestBuildPrompt_Fields(t *testing.T) {
	req := BuildPrompt(readyProfile(), 0.7)
	for _, want := range []string{
		"Role: consultant",
		"Audience: investors and founders",
		"Impression: logical, intellectual",
		"Name: Aiko Tanaka",
		"Why people choose me: I explain numbers plainly.",
		"What I value: (not provided)",
		"T02 Navy trust",
		"consultant / investors and founders / logical, intellectual -> T02",
		`"themeId"`,
	} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRubric_AllThemes(t *testing.T) {
	for _, p := range theme.All() {
		if !strings.Contains(themeRubric, "- "+string(p.ID)+" ") {
			t.Errorf("rubric missing theme %s", p.ID)
		}
	}
}
