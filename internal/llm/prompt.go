package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt is sent as the system message by chat-style providers
const SystemPrompt = "You are a child psychologist and career counsellor. " +
	"Answer in plain prose without markdown formatting."

// BuildPrompt creates a prompt for character and profession analysis
func BuildPrompt(req Request) string {
	language := req.Language
	if language == "" {
		language = "English"
	}

	var answers strings.Builder
	for i, p := range req.Pairs {
		question := p.QuestionText
		if question == "" {
			question = p.QuestionID.String()
		}
		fmt.Fprintf(&answers, "%d. Question: %s\n   Answer: %s\n", i+1, question, p.Answer)
	}
	if answers.Len() == 0 {
		answers.WriteString("(no answers were given)\n")
	}

	return fmt.Sprintf(`A child answered the following interview questions.

%s
Based on these answers:
1. Describe the child's character in a few sentences
2. Suggest professions that would suit this character and explain why
3. Keep the tone warm and encouraging, it will be read aloud to the child
4. Write the whole response in %s

Analysis:`, answers.String(), language)
}

// CleanResponse strips markdown fences and surrounding whitespace from a model reply
func CleanResponse(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if i := strings.IndexByte(content, '\n'); i >= 0 {
			content = content[i+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}
