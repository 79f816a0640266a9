package synthesis

import "strings"

// SystemPrompt sets the assistant role for every answer.
const SystemPrompt = "You are a knowledgeable legal assistant specializing in helping paralegals " +
	"with legal research and document analysis."

const contextSeparator = "\n\n"

// BuildContext joins passages with blank lines in rank order.
func BuildContext(documents []string) string {
	return strings.Join(documents, contextSeparator)
}

// BuildUserPrompt embeds the context block and the verbatim question
// together with the grounding instructions.
func BuildUserPrompt(passages, query string) string {
	var b strings.Builder
	b.WriteString("You are a legal assistant helping paralegals with legal research.\n")
	b.WriteString("Based on the following legal documents, answer the user's question accurately and professionally.\n\n")
	b.WriteString("Legal Documents:\n")
	b.WriteString(passages)
	b.WriteString("\n\nUser Question: ")
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString("Please provide a clear, accurate answer based only on the legal documents provided.\n")
	b.WriteString("If the documents don't contain enough information to answer the question, say so.\n")
	b.WriteString("Include relevant citations to the legal concepts mentioned.")
	return b.String()
}
