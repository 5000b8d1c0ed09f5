package analyzer

// ModelHaiku is the cheap, fast model used for both digest and deep
// extraction calls — good enough for structured-output extraction and
// far cheaper than running every conversation through a frontier model.
const ModelHaiku = "claude-haiku-4-5-20251001"

// maxTextLength bounds how much conversation text is sent per call.
const maxTextLength = 8000

// maxTokens bounds the model's reply length for both prompt kinds.
const maxTokens = 2048

// digestSystemPrompt instructs the model to summarize a chat room into
// decisions, action items, risks, and a short summary.
const digestSystemPrompt = `You are a conversation analyst for a creative agency's project chat.
Read the conversation and extract structured signal only — no commentary.
Return ONLY a valid JSON object with this exact shape:
{
  "decisions": [{"text": string, "confidence": number, "priority": "low"|"medium"|"high"}],
  "actionItems": [{"text": string, "confidence": number, "priority": "low"|"medium"|"high"}],
  "risks": [{"text": string, "confidence": number, "priority": "low"|"medium"|"high"}],
  "summary": string
}
Any category with nothing to report must be an empty array. No markdown, no explanation.
Start with { and end with }.`

// extractSystemPrompt instructs the model to extract durable knowledge
// items (decisions, budgets, recurring risks, client preferences) from a
// single piece of source text.
const extractSystemPrompt = `You are a knowledge extraction assistant for a creative agency's internal memory system.
Read the text and extract discrete, reusable judgment records an account lead would want recalled later —
budget decisions, scope calls, recurring risks, client preferences, deal terms. Skip small talk.
Return ONLY a valid JSON object with this exact shape:
{
  "items": [
    {
      "content": string,
      "knowledge_type": string,
      "role_tag": string | null,
      "dialectic_tag": "risk" | "opportunity" | "constraint" | "quality" | "client_concern" | null,
      "scope_layer": "operations" | "creative" | "pitch" | "strategy" | "execution" | "culture" | null,
      "confidence": number
    }
  ]
}
An empty "items" array is a valid response when nothing is worth remembering.
No markdown, no explanation. Start with { and end with }.`

func truncate(text string) string {
	if len(text) > maxTextLength {
		return text[:maxTextLength]
	}
	return text
}
