package capability

import (
	"fmt"
	"strings"

	"exchange-support-be/pkg/store"
)

const historyWindow = 4

func writeHistory(prompt *strings.Builder, history []store.ChatTurn) {
	if len(history) == 0 {
		return
	}
	start := len(history) - historyWindow
	if start < 0 {
		start = 0
	}
	prompt.WriteString("<conversation_history>\n")
	for _, turn := range history[start:] {
		prompt.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, trim(turn.Text, 200)))
	}
	prompt.WriteString("</conversation_history>\n\n")
}

func composeClassifyPrompt(message string, history []store.ChatTurn) string {
	var prompt strings.Builder

	prompt.WriteString("<system_role>\n")
	prompt.WriteString("You classify customer questions for a crypto-exchange support bot.\n")
	prompt.WriteString("Pick the single cheapest strategy that can answer the question.\n")
	prompt.WriteString("</system_role>\n\n")

	prompt.WriteString("<question_types>\n")
	prompt.WriteString("simple_chat: greeting, thanks, small talk. No information need.\n")
	prompt.WriteString("faq: exchange procedure or policy (withdrawal, deposit, fees, limits, verification).\n")
	prompt.WriteString("transaction: the user wants a specific on-chain transaction looked up.\n")
	prompt.WriteString("web_search: needs current external information (prices, news, events).\n")
	prompt.WriteString("hybrid: needs both local FAQ knowledge and current web information.\n")
	prompt.WriteString("general: none of the above fits with confidence.\n")
	prompt.WriteString("</question_types>\n\n")

	writeHistory(&prompt, history)

	prompt.WriteString("<user_message>\n")
	prompt.WriteString(message)
	prompt.WriteString("\n</user_message>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"question_type\": \"simple_chat|faq|transaction|web_search|hybrid|general\",\n")
	prompt.WriteString("  \"confidence\": 0.0,\n")
	prompt.WriteString("  \"reasoning\": \"one sentence\",\n")
	prompt.WriteString("  \"needs_faq_search\": false,\n")
	prompt.WriteString("  \"needs_web_search\": false,\n")
	prompt.WriteString("  \"needs_transaction_lookup\": false,\n")
	prompt.WriteString("  \"needs_clarification\": false\n")
	prompt.WriteString("}\n")
	prompt.WriteString("Set needs_clarification to true when the question is too vague to route.\n")
	prompt.WriteString("</output_format>\n")

	return prompt.String()
}

func composePlanPrompt(req PlanRequest) string {
	var prompt strings.Builder

	prompt.WriteString("<system_role>\n")
	prompt.WriteString("You plan web searches for a crypto-exchange support bot.\n")
	prompt.WriteString("Produce focused queries that together cover the user's information need.\n")
	prompt.WriteString("</system_role>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(req.Question)
	prompt.WriteString("\n</question>\n\n")

	if len(req.PreviousQueries) > 0 {
		prompt.WriteString("<previous_attempt>\n")
		prompt.WriteString("These queries were already tried and did not produce a sufficient answer:\n")
		for _, q := range req.PreviousQueries {
			prompt.WriteString("- " + q + "\n")
		}
		if req.GraderFeedback != "" {
			prompt.WriteString("\nGrader feedback on the previous results:\n")
			prompt.WriteString(req.GraderFeedback + "\n")
		}
		prompt.WriteString("Produce DIFFERENT queries that attack the gap from another angle.\n")
		prompt.WriteString("</previous_attempt>\n\n")
	}

	maxQueries := req.MaxQueries
	if maxQueries <= 0 || maxQueries > 7 {
		maxQueries = 7
	}

	prompt.WriteString("<output_format>\n")
	prompt.WriteString(fmt.Sprintf("Respond with ONLY valid JSON. 1 to %d queries:\n", maxQueries))
	prompt.WriteString("{\n")
	prompt.WriteString("  \"search_queries\": [\"...\"],\n")
	prompt.WriteString("  \"research_plan\": \"one or two sentences\",\n")
	prompt.WriteString("  \"priority\": 3\n")
	prompt.WriteString("}\n")
	prompt.WriteString("priority is 1 (low) to 5 (urgent).\n")
	prompt.WriteString("</output_format>\n")

	return prompt.String()
}

func composeGradePrompt(question string, results []store.RetrievalRecord) string {
	var prompt strings.Builder

	prompt.WriteString("<system_role>\n")
	prompt.WriteString("You grade whether search results are sufficient to answer a question.\n")
	prompt.WriteString("Be strict: partial or stale information is not sufficient.\n")
	prompt.WriteString("</system_role>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("<search_results>\n")
	for i, r := range results {
		prompt.WriteString(fmt.Sprintf("--- RESULT %d (source: %s) ---\n", i+1, r.Source))
		prompt.WriteString(trim(r.Text, 500))
		prompt.WriteString("\n")
	}
	prompt.WriteString("</search_results>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"score\": 0.0,\n")
	prompt.WriteString("  \"is_sufficient\": false,\n")
	prompt.WriteString("  \"feedback\": \"what is covered and what is missing\",\n")
	prompt.WriteString("  \"missing_information\": \"the concrete gap, if any\"\n")
	prompt.WriteString("}\n")
	prompt.WriteString("score is 0.0 (useless) to 1.0 (fully answers the question).\n")
	prompt.WriteString("</output_format>\n")

	return prompt.String()
}

func composeWritePrompt(req WriteRequest) string {
	var prompt strings.Builder

	prompt.WriteString("<system_role>\n")
	prompt.WriteString("You are a customer-support assistant for a crypto exchange.\n")
	prompt.WriteString("Answer in the user's language, plainly and concisely.\n")
	prompt.WriteString("Use ONLY the reference material below. Never invent figures.\n")
	prompt.WriteString("Never echo internal data structures, field names or scores.\n")
	prompt.WriteString("</system_role>\n\n")

	writeHistory(&prompt, req.History)

	if len(req.DBResults) > 0 {
		prompt.WriteString("<knowledge_base>\n")
		for i, r := range req.DBResults {
			prompt.WriteString(fmt.Sprintf("--- REFERENCE %d ---\n%s\n", i+1, trim(r.Text, 800)))
		}
		prompt.WriteString("</knowledge_base>\n\n")
	}

	if len(req.WebResults) > 0 {
		prompt.WriteString("<web_results>\n")
		for i, r := range req.WebResults {
			prompt.WriteString(fmt.Sprintf("--- RESULT %d (source: %s) ---\n%s\n", i+1, r.Source, trim(r.Text, 800)))
		}
		prompt.WriteString("</web_results>\n\n")
	}

	if req.Fallback {
		prompt.WriteString("<task>\n")
		prompt.WriteString("The research could not find reliable information.\n")
		if req.GraderFeedback != "" {
			prompt.WriteString("What was missing: " + req.GraderFeedback + "\n")
		}
		prompt.WriteString("Write a SHORT apology (under 150 characters) that says reliable\n")
		prompt.WriteString("information could not be found and points the user to the official site.\n")
		prompt.WriteString("</task>\n\n")
	} else {
		prompt.WriteString("<task>\n")
		prompt.WriteString("Answer the question using the reference material.\n")
		prompt.WriteString("If you list steps, number them from 1.\n")
		prompt.WriteString("</task>\n\n")
	}

	prompt.WriteString("Question: ")
	prompt.WriteString(req.Question)
	prompt.WriteString("\n")

	return prompt.String()
}

func trim(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
