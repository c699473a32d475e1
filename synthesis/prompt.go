package synthesis

import (
	"fmt"
	"strings"
)

// RequiredSections are the seven canonical divisions every generated
// paper must contain, in render order.
var RequiredSections = []string{
	"Abstract",
	"Introduction",
	"Literature Review",
	"Methodology",
	"Discussion",
	"Conclusion",
	"References",
}

const paperPromptTemplate = `You are an expert academic writer. Using the conversation transcript and any extracted document text below, write a complete formal research paper.

Strict requirements:
- Begin with a generated title on its own line.
- The second line must be exactly: Author: %s
- The paper must be at least 1000-1200 words in total, roughly four pages.
- Include ALL of the following section headings, each on its own line, in this order:
%s
- Abstract: 150-200 words summarizing the entire paper.
- Introduction: motivate the topic and state the research question.
- Literature Review: situate the topic in existing work.
- Methodology: describe the approach taken in the conversation.
- Discussion: analyze findings and their implications.
- Conclusion: summarize contributions and future directions.
- References: list sources in a consistent citation style.
- Use a formal academic tone throughout.
- Preserve any inline code or technical content from the transcript where relevant.

Conversation context:
%s`

// BuildPaperPrompt renders the fixed structural contract for paper
// synthesis. The author name is included verbatim.
func BuildPaperPrompt(contextText, authorName string) string {
	var sections strings.Builder
	for _, s := range RequiredSections {
		fmt.Fprintf(&sections, "  - %s\n", s)
	}
	return fmt.Sprintf(paperPromptTemplate, authorName, sections.String(), contextText)
}

const chatPromptTemplate = `You are a helpful research assistant. Answer the user's message using the recent conversation and, when present, the web search results. Cite search results by their [n] index when you use them.

%s%s
User message: %s`

// BuildChatPrompt renders the prompt for one augmented interactive turn.
// recentContext and searchBlock may be empty.
func BuildChatPrompt(message, recentContext, searchBlock string) string {
	ctxPart := ""
	if recentContext != "" {
		ctxPart = "Recent conversation:\n" + recentContext + "\n"
	}
	searchPart := ""
	if searchBlock != "" {
		searchPart = searchBlock + "\n"
	}
	return fmt.Sprintf(chatPromptTemplate, ctxPart, searchPart, message)
}
