package llm

import "fmt"

// summaryPrompt wraps one document's text in the per-document
// instructions. The label line (filename and type) is omitted when
// empty so ad-hoc text can be summarized without a fake context.
func summaryPrompt(text, label string) string {
	contextLine := ""
	if label != "" {
		contextLine = fmt.Sprintf("Context: %s\n\n", label)
	}
	return fmt.Sprintf(`Please provide a clear and concise summary of the following document.
Focus on the main ideas, key points, and important details.

%sDocument content:
%s

Summary:`, contextLine, text)
}

// masterPrompt wraps the combined per-document summaries in the
// synthesis instructions.
func masterPrompt(combined string) string {
	return fmt.Sprintf(`You are analyzing a collection of documents. Below are summaries of individual documents.

Please create a comprehensive master summary that:
1. Identifies the main themes and topics across all documents
2. Highlights the most important information
3. Notes any connections or relationships between documents
4. Provides an overall synthesis of the content

Individual document summaries:
%s

Master Summary:`, combined)
}
