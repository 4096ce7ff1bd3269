package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewPromptBuilder(t *testing.T) {
	builder := NewPromptBuilder(nil)
	if builder == nil {
		t.Fatal("NewPromptBuilder() returned nil")
		return
	}
	if builder.loader == nil {
		t.Fatal("NewPromptBuilder() created builder with nil loader")
	}
}

func TestFillTemplate(t *testing.T) {
	template := "first-hand|x-hand-len|other_hand|other-hand-and|loop_hand|loop-hand-line"
	row := "60 0.125 0.225 110 …"

	got, err := FillTemplate(template, []string{"Melody", "Drum"})
	if err != nil {
		t.Fatalf("FillTemplate() returned error: %v", err)
	}

	want := "Melody|2| ‘Drum’ | and ‘Drum’" +
		"| ‘Melody: " + row + "’  ‘Drum: " + row + "’ " +
		"|‘Melody: " + row + "’\n‘Drum: " + row + "’\n"
	if got != want {
		t.Errorf("FillTemplate() =\n%q\nwant\n%q", got, want)
	}
}

func TestFillTemplateSingleFlag(t *testing.T) {
	got, err := FillTemplate("first-hand and other_hand (x-hand-len)", []string{"Bass"})
	if err != nil {
		t.Fatalf("FillTemplate() returned error: %v", err)
	}
	if got != "Bass and  (1)" {
		t.Errorf("FillTemplate() = %q", got)
	}
}

func TestFillTemplateRequiresFlags(t *testing.T) {
	if _, err := FillTemplate("first-hand", nil); err == nil {
		t.Error("FillTemplate() with no flags should fail")
	}
}

func TestBuildPromptEmbeddedTemplate(t *testing.T) {
	builder := NewPromptBuilder(nil)
	prompt, err := builder.BuildPrompt([]string{"Melody", "Drum", "Bass"})
	if err != nil {
		t.Fatalf("BuildPrompt() returned error: %v", err)
	}

	for _, placeholder := range []string{"first-hand", "x-hand-len", "other_hand", "other-hand-and", "loop_hand", "loop-hand-line"} {
		if strings.Contains(prompt, placeholder) {
			t.Errorf("BuildPrompt() left placeholder %q in the prompt", placeholder)
		}
	}
	for _, want := range []string{"'Melody'", "‘Drum’", "‘Bass: ", "Compose 3 "} {
		if !strings.Contains(prompt, want) {
			t.Errorf("BuildPrompt() missing %q", want)
		}
	}
}

func TestBuildPromptOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(path, []byte("  Write first-hand.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	prompt, err := NewPromptBuilder(NewPromptLoader(path)).BuildPrompt([]string{"Lead"})
	if err != nil {
		t.Fatalf("BuildPrompt() returned error: %v", err)
	}
	if prompt != "Write Lead." {
		t.Errorf("BuildPrompt() = %q", prompt)
	}
}
