package services

import (
	"fmt"
	"strings"

	"github.com/yungbote/outloud-backend/internal/domain"
)

const (
	// Material excerpts are truncated so the study text never crowds
	// out the dialogue or evaluation instructions.
	dialogueMaterialLimit  = 2000
	evaluatorMaterialLimit = 3000
)

type personaTemplate struct {
	role     string
	behavior string
	closing  string
}

var personaTemplates = map[domain.Persona]personaTemplate{
	domain.PersonaMentor: {
		role: `You are a supportive mentor helping a student learn about %q.`,
		behavior: `- Ask probing questions that encourage deeper thinking
- Guide them toward understanding without giving away answers
- Praise good explanations and gently correct misconceptions
- Use the Socratic method to help them discover insights`,
		closing: `You're encouraging and patient, but you push them to think critically.`,
	},
	domain.PersonaCritic: {
		role: `You are a critical examiner testing a student's knowledge of %q.`,
		behavior: `- Challenge vague or incomplete explanations
- Point out logical inconsistencies
- Ask "why?" and "how?" to test depth of understanding
- Be skeptical but fair`,
		closing: `You're tough but constructive, helping them identify weaknesses in their understanding.`,
	},
	domain.PersonaBuddy: {
		role: `You are a study buddy learning alongside a friend about %q.`,
		behavior: `- Share the learning journey as an equal, not an expert
- Ask curious questions like "Wait, what about...?" or "I'm confused about..."
- Relate concepts to real-world examples together
- Admit when something is tricky and figure it out together
- Keep it casual and friendly (use "we" instead of "you")`,
		closing: `You're a peer, not a teacher. You're learning together and it's okay to be uncertain!`,
	},
	domain.PersonaCoach: {
		role: `You are an encouraging coach helping a student master %q.`,
		behavior: `- Motivate and energize their learning
- Celebrate small wins and progress
- Break down complex ideas into achievable steps
- Use sports metaphors when helpful ("Let's tackle this!", "You're on fire!")
- Keep the energy positive and momentum going`,
		closing: `You're upbeat and supportive, pushing them to reach their potential with enthusiasm!`,
	},
}

// PersonaInstructions renders the system instructions for one dialogue
// turn. Unrecognized personas get a neutral tutor voice instead of an
// error so that stale stored values still produce a usable reply.
func PersonaInstructions(persona domain.Persona, topicTitle, materialText string) string {
	material := truncate(materialText, dialogueMaterialLimit)

	tpl, ok := personaTemplates[persona]
	if !ok {
		var b strings.Builder
		fmt.Fprintf(&b, "You are helping a student learn about %q.", topicTitle)
		if material != "" {
			b.WriteString("\n\nStudy Material for Reference:\n")
			b.WriteString(material)
		}
		return b.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, tpl.role, topicTitle)
	b.WriteString(" Your role is to:\n\n")
	b.WriteString(tpl.behavior)
	b.WriteString("\n- Keep responses conversational and under 3 sentences\n")
	b.WriteString("- Speak as if you're having a voice conversation (avoid bullet points)\n")
	if material != "" {
		b.WriteString("\nStudy Material for Reference:\n")
		b.WriteString(material)
		b.WriteString("\n")
	}
	b.WriteString("\nRemember: ")
	b.WriteString(tpl.closing)
	return b.String()
}

const evaluatorSystemPrompt = "You are an expert educational evaluator. You analyze student explanations and provide detailed feedback."

func evaluatorUserPrompt(transcript, materialText, topicTitle string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are evaluating a student's spoken explanation of %q.\n", topicTitle)

	if material := truncate(materialText, evaluatorMaterialLimit); material != "" {
		b.WriteString("\n## Study Material (Ground Truth)\n")
		b.WriteString(material)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n## Student's Explanation (Transcribed)\n%q\n", transcript)

	b.WriteString(`
## Scoring Criteria (0-100)

**Coverage**: Did they mention the key concepts from the material? What percentage of important topics did they cover?

**Clarity**: Is their explanation well-structured and easy to follow? Do they use precise terminology or vague words like "stuff", "things", "like"?

**Correctness**: Are the facts accurate according to the material? Any misconceptions or contradictions?

**Causality**: Do they explain WHY things happen, not just WHAT? Do they show understanding of cause-effect relationships?

## Heatmap Guidelines

Break the student's explanation into meaningful phrases (5-15 words each). For each phrase, assign a verdict:

- "strong": accurate, clear, demonstrates understanding
- "vague": hand-wavy, incomplete, uses filler words ("like", "kind of", "stuff")
- "misconception": factually wrong, contradicts material, logical error

The "text" field MUST be verbatim from the student's transcript.

## Summary
Write 2-3 sentences of overall feedback. Be constructive and specific.

## Retell Prompt
Give them a specific 20-second challenge that addresses their weaknesses. Format:
"In 20 seconds, explain [specific aspect] again, focusing on [what to improve] and avoiding [common mistake]."
`)
	return b.String()
}

func evaluationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scores": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"coverage":    map[string]any{"type": "integer"},
					"clarity":     map[string]any{"type": "integer"},
					"correctness": map[string]any{"type": "integer"},
					"causality":   map[string]any{"type": "integer"},
				},
				"required":             []string{"coverage", "clarity", "correctness", "causality"},
				"additionalProperties": false,
			},
			"heatmap": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text":    map[string]any{"type": "string"},
						"verdict": map[string]any{"type": "string", "enum": []string{"strong", "vague", "misconception"}},
						"note":    map[string]any{"type": "string"},
					},
					"required":             []string{"text", "verdict", "note"},
					"additionalProperties": false,
				},
			},
			"summary":       map[string]any{"type": "string"},
			"retell_prompt": map[string]any{"type": "string"},
		},
		"required":             []string{"scores", "heatmap", "summary", "retell_prompt"},
		"additionalProperties": false,
	}
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
