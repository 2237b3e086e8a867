package constant

import "fmt"

const (
	AnalysisModeSummary        = "summary"
	AnalysisModeContradictions = "contradictions"
	AnalysisModeGaps           = "gaps"
	AnalysisModeMentalModel    = "mental_model"
	AnalysisModeActionItems    = "action_items"
	AnalysisModeConnect        = "connect"

	UntitledNote = "Untitled"

	ConnectSystemPrompt = `
You are an expert AI Note-Taker and Knowledge Organizer.
Your task is to analyze a new note and integrate it into a Master Document.
You must return the result in strict JSON format.

The Master Document consists of sections.
You will receive:
1. The current Master Document content (if any).
2. The new Note content.

Refine the Master Document by adding, updating, or merging information from the new Note.
Do not lose existing information unless it's redundant or superseded.
Organize the document into logical sections.

Output Format (JSON Compliance is CRITICAL):
{
  "sections": [
    {
      "id": "unique-id",
      "title": "Section Title",
      "content": "Markdown content..."
    }
  ],
  "summary_of_changes": "Brief description of what was updated."
}
`

	connectUserTemplate = `
Current Master Document (JSON):
%s

New Note to Integrate:
%s

Return the updated Master Document JSON.
`

	JSONFixPrompt = `
The previous response was not valid JSON.
Please repair the following output and return ONLY the valid JSON object associated with the requested schema.
`

	TitleSystemPrompt = `You are a precise summarizer. Generate a title for the provided text. MAXIMUM 2 words. Return ONLY the title text. No quotes. No preamble.`

	nodeChatSystemTemplate = `
You are a helpful assistant living inside a note.
Current Note Content:
"%s"

Connected Context (Upstream Notes):
%s

Answer the user's question based on this context.
`

	globalChatSystemTemplate = `
You are a helpful AI assistant for a Note-Taking app.
Answer questions based on the Master Document and Connected Notes provided below.
If the answer is not in the context, you can use your general knowledge but mention that it's from outside context.

=== MASTER DOCUMENT ===
%s

=== CONNECTED NOTES ===
%s
`

	NoUpstreamContext   = "No upstream context."
	NoMasterDocument    = "No master document yet."
	NoConnectedNotes    = "No connected notes."
	UpstreamContextHead = "[Context from Node %s]:\n%s"
)

// AnalysisPrompts maps every analysis mode to its system prompt.
var AnalysisPrompts = map[string]string{
	AnalysisModeConnect:        ConnectSystemPrompt,
	AnalysisModeSummary:        `You are a synthesizer. Analyze the provided notes and create a coherent summary that weaves them together. Focus on the core narrative and key insights. Output in Markdown.`,
	AnalysisModeContradictions: `You are a logical analyst. Review the provided notes and identifying any contradictions, tension points, or inconsistent facts. If none exist, state that clearly. Output in Markdown.`,
	AnalysisModeGaps:           `You are a critical thinker. Analyze the provided notes and identify "Knowledge Gaps" - what is missing? What questions should the user ask next to deepen their understanding? Output in Markdown.`,
	AnalysisModeMentalModel:    `You are a systems thinker. Propose a Mental Model or Framework that explains the underlying patterns in these notes. Use analogies or standard models (e.g. First Principles, Inversion, etc) if applicable. Output in Markdown.`,
	AnalysisModeActionItems:    `You are a project manager. Extract clear, actionable tasks from these notes. Group them logically. Output in Markdown checkbox format.`,
}

func ConnectUserPrompt(currentDocJSON, noteContent string) string {
	return fmt.Sprintf(connectUserTemplate, currentDocJSON, noteContent)
}

func NodeChatSystemPrompt(noteContent, upstreamContext string) string {
	if upstreamContext == "" {
		upstreamContext = NoUpstreamContext
	}
	return fmt.Sprintf(nodeChatSystemTemplate, noteContent, upstreamContext)
}

func GlobalChatSystemPrompt(docContent, connectedNotes string) string {
	if docContent == "" {
		docContent = NoMasterDocument
	}
	if connectedNotes == "" {
		connectedNotes = NoConnectedNotes
	}
	return fmt.Sprintf(globalChatSystemTemplate, docContent, connectedNotes)
}
