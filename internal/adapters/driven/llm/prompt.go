// Package llm holds the grounded-answer prompt shared by the answer
// synthesizer adapters.
package llm

import "fmt"

// SystemPrompt constrains the model to answer strictly from the
// retrieved passages.
const SystemPrompt = `You are a question answering assistant. Answer the question using ONLY the provided context passages. If the context does not contain the answer, say that the indexed documents do not cover the question. Be concise.`

// BuildUserPrompt formats the retrieved context and the question into
// the user message.
func BuildUserPrompt(question, contextText string) string {
	return fmt.Sprintf(`Context passages:

%s

Question: %s

Answer:`, contextText, question)
}
