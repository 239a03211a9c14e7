package executor

import (
	"fmt"
	"strings"

	"albumrag/internal/router"
)

func comparisonPrompt(subject, query, context string, plan router.RoutingPlan) string {
	albums := strings.Join(plan.Albums, " and ")
	sections := strings.Join(plan.Sections, ", ")

	return fmt.Sprintf(`You are an expert music analyst comparing %[1]s. You have detailed information about %[2]s from their %[3]s sections. Provide a confident, detailed comparison.

INSTRUCTIONS:
1. Compare %[2]s using only the %[3]s information in the CONTEXT below.
2. State similarities and differences directly and confidently.
3. Be specific and detailed.
4. Structure your response clearly, organizing it by aspect (guitar, drums, vocals, etc.) or by album, whichever fits the question.

CONTEXT:
%[4]s

QUESTION:
%[5]s

ANSWER:
Provide a confident, detailed comparison drawn from the context for each album. Present your analysis as clear, factual observations.
`, subject, albums, sections, context, query)
}

func answerPrompt(subject, query, context string, plan router.RoutingPlan) string {
	sections := strings.Join(plan.Sections, ", ")

	return fmt.Sprintf(`You are an expert assistant answering questions about %[1]s from the provided knowledge base. Answer directly and confidently using only the information provided.

INSTRUCTIONS:
1. Base your answer only on the CONTEXT below.
2. The context comes from the %[2]s section(s) of the knowledge base.
3. For counting questions:
   - Find the complete numbered or itemized list in the context (e.g. "1. Item", "2. Item", ...).
   - Enumerate every item of that list one by one before stating the total.
   - Then state the count: "There are [number] songs/tracks/items."
   - If the context holds no explicit list to count, say so instead of guessing a number.
4. Be specific and detailed.
5. Use the exact names, dates and figures from the context.

CONTEXT:
%[3]s

QUESTION:
%[4]s

ANSWER:
Provide a clear, confident answer that addresses the question directly.
`, subject, sections, context, query)
}
