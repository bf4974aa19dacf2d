package discovery

import (
	"fmt"
	"strings"

	"github.com/aiscout/backend/app/chat"
	"github.com/aiscout/backend/app/config"
	"github.com/aiscout/backend/app/gemini"
)

// resultFormat tells the model what shape each result object must have. The
// stream parser depends on getting a JSON array of objects with these fields.
const resultFormat = `Return your results as a JSON array of objects. Each object must have exactly these fields:
"title" (string), "type" (one of "article", "video", "podcast", "academic"), "description" (string, 1-2 sentences),
"source" (string, the publication or platform name), "relevance" (string, one sentence on why this matches),
"url" (string, the direct link; leave empty if you are not certain of the exact URL).
Output the JSON array and nothing else after it.`

// recommendationFormat deliberately omits the url field: recommendation links
// are resolved independently afterwards instead of trusting model URLs.
const recommendationFormat = `Return your results as a JSON array of objects. Each object must have exactly these fields:
"title" (string), "type" (one of "article", "video", "podcast", "academic"), "description" (string, 1-2 sentences),
"source" (string, the publication or platform name), "relevance" (string, one sentence on why this matches).
Output the JSON array and nothing else after it.`

func buildSearchPrompt(prompts *config.Prompts, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search the web for the %d most relevant, recent pieces of content about: %s\n\n", prompts.SearchResultCount, query)
	b.WriteString(prompts.SourceConstraints)
	b.WriteString("\n\n")
	b.WriteString(resultFormat)
	return b.String()
}

func buildRecommendationPrompt(prompts *config.Prompts, interests string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nRecommend %d pieces of content", prompts.RecommendationBrief, prompts.RecommendationCount)
	if interests != "" {
		fmt.Fprintf(&b, " tailored to these interests: %s", interests)
	}
	b.WriteString("\n\n")
	b.WriteString(prompts.SourceConstraints)
	b.WriteString("\n\n")
	b.WriteString(recommendationFormat)
	return b.String()
}

func buildCitationPrompt(title, source string) string {
	if source != "" {
		return fmt.Sprintf("Find the exact URL of %q published by %s. Search the web and answer with the URL only.", title, source)
	}
	return fmt.Sprintf("Find the exact URL of %q. Search the web and answer with the URL only.", title)
}

// buildChatSeed builds the hidden preamble turns a chat session starts with:
// instructions, the article's metadata and, when extraction succeeded, the
// article's own text.
func buildChatSeed(prompts *config.Prompts, article chat.Article, articleText string) []gemini.Content {
	var b strings.Builder
	b.WriteString(prompts.ChatInstructions)
	fmt.Fprintf(&b, "\n\nThe user is asking about this content:\nTitle: %s\nSource: %s\nType: %s\nURL: %s\n",
		article.Title, article.Source, article.Type, article.URL)
	if article.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", article.Description)
	}

	seed := []gemini.Content{
		{Role: "user", Parts: []gemini.Part{{Text: b.String()}}},
		{Role: "model", Parts: []gemini.Part{{Text: "Understood. I will answer questions about this content."}}},
	}

	if articleText != "" {
		seed = append(seed,
			gemini.Content{Role: "user", Parts: []gemini.Part{{Text: "Here is the full text of the content for reference:\n\n" + articleText}}},
			gemini.Content{Role: "model", Parts: []gemini.Part{{Text: "I have read the content and am ready for questions."}}},
		)
	}

	return seed
}
