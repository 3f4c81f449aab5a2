package service

import (
	"strings"
	"testing"
)

func TestApproxDurationSeconds(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{0, 0},
		{75, 30},
		{150, 60},
		{151, 61},
	}
	for _, tc := range cases {
		script := strings.TrimSpace(strings.Repeat("word ", tc.words))
		if got := approxDurationSeconds(script); got != tc.want {
			t.Errorf("approxDurationSeconds(%d words) = %d, want %d", tc.words, got, tc.want)
		}
	}
}

func TestFallbackScriptHasAllSections(t *testing.T) {
	script := fallbackScript("Widget Pro", "does it all", "Gen Z", "tiktok")
	if !hasAllSections(script) {
		t.Fatalf("fallback script missing sections:\n%s", script)
	}
	if !strings.Contains(script, "Widget Pro") {
		t.Error("product name not interpolated")
	}
	if !strings.Contains(script, "#tiktok") {
		t.Error("platform hashtag not interpolated")
	}
}

func TestReformatScriptAddsSections(t *testing.T) {
	raw := "one\ntwo\n\nthree\nfour\nfive\nsix"
	got := reformatScript(raw, "Widget Pro", "Gen Z", "tiktok")
	if !hasAllSections(got) {
		t.Fatalf("reformatted script missing sections:\n%s", got)
	}
	// First non-empty lines become the hook, last two the CTA.
	hookIdx := strings.Index(got, sectionHook)
	ctaIdx := strings.Index(got, sectionCTA)
	if hookIdx > strings.Index(got, "one") || ctaIdx > strings.Index(got, "five") {
		t.Errorf("section ordering wrong:\n%s", got)
	}
}

func TestReformatScriptTooShortFallsBack(t *testing.T) {
	got := reformatScript("just one line", "Widget Pro", "Gen Z", "tiktok")
	if !hasAllSections(got) {
		t.Fatalf("short input should yield the template:\n%s", got)
	}
	if !strings.Contains(got, "Widget Pro") {
		t.Error("template not parameterized with product name")
	}
}

func TestHasAllSections(t *testing.T) {
	if hasAllSections("[HOOK] only a hook") {
		t.Error("partial sections reported complete")
	}
	if !hasAllSections(sectionedScript) {
		t.Error("complete script reported incomplete")
	}
}
