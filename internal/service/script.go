package service

import (
	"fmt"
	"math"
	"strings"
)

const (
	sectionHook    = "[HOOK]"
	sectionContent = "[MAIN CONTENT]"
	sectionCTA     = "[CTA]"

	// speechWordsPerMinute drives the duration estimate shown to callers.
	speechWordsPerMinute = 150
)

// approxDurationSeconds estimates spoken duration from word count.
func approxDurationSeconds(script string) int {
	words := len(strings.Fields(script))
	return int(math.Ceil(float64(words) / speechWordsPerMinute * 60))
}

func hasAllSections(script string) bool {
	return strings.Contains(script, sectionHook) &&
		strings.Contains(script, sectionContent) &&
		strings.Contains(script, sectionCTA)
}

// reformatScript forces section headers onto a script the model returned
// without them. Too-short output falls through to the template.
func reformatScript(raw, productName, targetAudience, platform string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 5 {
		return fallbackScript(productName, "great features", targetAudience, platform)
	}

	hook := strings.Join(lines[:2], "\n")
	content := strings.Join(lines[2:len(lines)-2], "\n")
	cta := strings.Join(lines[len(lines)-2:], "\n")

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s\n%s",
		sectionHook, hook, sectionContent, content, sectionCTA, cta)
}

// fallbackScript is the deterministic template used when generation fails.
// It always contains all three sections, so degraded runs still produce a
// usable asset.
func fallbackScript(productName, productDesc, targetAudience, platform string) string {
	return fmt.Sprintf(`%s
Hey %s! You NEED to see this - %s just changed the game!

%s
Okay so I've been using %s for the past week and I'm honestly obsessed. %s. The quality is incredible, the price is perfect, and it's exactly what I've been looking for. I can't believe I waited this long to try it!

%s
Link is in my bio - seriously, you're going to love this. Trust me on this one! #%s #ugc #productreview #musthave`,
		sectionHook, targetAudience, productName,
		sectionContent, productName, productDesc,
		sectionCTA, platform)
}
