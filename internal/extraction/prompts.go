package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/taxonomy"
)

const itemSchema = `{
  "headline": "string",
  "keyFacts": ["fact 1", "fact 2"],
  "analysis": "short analytical paragraph",
  "implications": ["practical implication 1", "practical implication 2"],
  "watchNext": ["near-term watchpoint 1", "near-term watchpoint 2"],
  "credibilityNotes": "string or empty",
  "sources": [{"title":"string","url":"https://...","publisher":"string"}]
}`

// textSections are the sections the generator is asked to fill.
func textSections(registry *taxonomy.Registry) []taxonomy.SectionDefinition {
	var out []taxonomy.SectionDefinition
	for _, def := range registry.Sections() {
		if def.Bucket != "" {
			out = append(out, def)
		}
	}
	return out
}

// StructurePrompt asks for one issue document covering every text-fed section.
func StructurePrompt(registry *taxonomy.Registry, date string, input domain.RawInput) string {
	var b strings.Builder
	b.WriteString("You are an editor-engine for a premium daily brief app.\n\n")
	b.WriteString("TASK\nTransform raw automation text into STRICT JSON for one DailyIssue.\n\n")
	fmt.Fprintf(&b, "DATE\n%s\n\n", date)
	b.WriteString("OUTPUT RULES\n")
	b.WriteString("- Return ONLY valid JSON. No markdown, no commentary.\n")
	b.WriteString("- Keep facts grounded in the input. Do not invent claims.\n")
	b.WriteString("- If data is missing, leave fields empty arrays or use concise uncertainty notes.\n")
	b.WriteString("- Preserve citations where possible.\n")
	b.WriteString("- Use the subsection keys below; a new snake_case key is allowed only for a clearly distinct team or topic.\n\n")

	b.WriteString("TARGET JSON SCHEMA\n{\n")
	fmt.Fprintf(&b, "  \"date\": %q,\n  \"sections\": {\n", date)
	sections := textSections(registry)
	for i, def := range sections {
		fmt.Fprintf(&b, "    %q: {\n", def.Key)
		for j, sub := range def.Subsections {
			sep := ","
			if j == len(def.Subsections)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "      %q: { \"label\": %q, \"items\": [BriefItem] }%s\n", sub.Key, sub.Label(taxonomy.English), sep)
		}
		sep := ","
		if i == len(sections)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    }%s\n", sep)
	}
	b.WriteString("  },\n  \"status\": \"ready|partial|missing\"\n}\n\n")
	b.WriteString("BriefItem schema:\n")
	b.WriteString(itemSchema)
	b.WriteString("\n")

	for _, bucket := range domain.Buckets {
		text := strings.TrimSpace(input.Text(bucket))
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "\nSOURCE MATERIAL - %s\n%s\n", strings.ToUpper(string(bucket)), text)
	}
	return b.String()
}

// NarrativePrompt asks for one analytical narrative per subsection of the
// structured issue.
func NarrativePrompt(registry *taxonomy.Registry, issue *domain.Issue) (string, error) {
	payload := domain.Sections{}
	for _, def := range textSections(registry) {
		if subs, ok := issue.Sections[def.Key]; ok {
			payload[def.Key] = subs
		}
	}
	body, err := json.Marshal(struct {
		Date     string          `json:"date"`
		Sections domain.Sections `json:"sections"`
	}{issue.Date, payload})
	if err != nil {
		return "", fmt.Errorf("marshal issue: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are writing a concise analytical daily newspaper.\n\n")
	b.WriteString("TASK\nUsing the provided structured DailyIssue JSON, enrich each subsection with a \"narrative\" string that is more analytical than summary.\n\n")
	b.WriteString("REQUIRED SHAPE\nReturn only JSON with this shape:\n{\n")
	for _, def := range textSections(registry) {
		fmt.Fprintf(&b, "  %q: {\n", def.Key)
		issue.Sections[def.Key].Each(func(key string, _ *domain.Subsection) {
			fmt.Fprintf(&b, "    %q: { \"narrative\": \"...\" },\n", key)
		})
		b.WriteString("  },\n")
	}
	b.WriteString("}\n\n")
	b.WriteString("Narrative requirements per subsection:\n")
	b.WriteString("- Start with what happened (facts only).\n")
	b.WriteString("- Explain why it matters now.\n")
	b.WriteString("- Include 2-4 practical implications.\n")
	b.WriteString("- Include what to watch in the near term.\n")
	b.WriteString("- Mention credibility gaps if sources disagree.\n")
	b.WriteString("- Keep it concise, scannable, and editorially neutral.\n\n")
	b.WriteString("INPUT JSON\n")
	b.Write(body)
	return b.String(), nil
}
