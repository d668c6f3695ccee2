package rag

import (
	"fmt"
	"strings"

	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/commonModels"
)

// buildPrompt assembles the grounding context, one passage per retrieved
// hit tagged with its source, in the order the search returned them.
func buildPrompt(query string, hits []commonModels.SearchHit) string {
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", sourceName(hit), hit.Content))
	}
	groundingContext := strings.Join(parts, "\n\n")

	return fmt.Sprintf("Answer the question based on the context provided.\n\nContext:\n%s\n\nQuestion: %s\n\nAnswer:", groundingContext, query)
}

func sourceName(hit commonModels.SearchHit) string {
	if hit.StorageName != "" {
		return hit.StorageName
	}
	if hit.Title != "" {
		return hit.Title
	}
	return "Unknown"
}

func buildCitations(hits []commonModels.SearchHit) []commonModels.Citation {
	citations := make([]commonModels.Citation, 0, len(hits))
	for _, hit := range hits {
		citations = append(citations, commonModels.Citation{
			Source:  sourceName(hit),
			Excerpt: excerpt(hit.Content),
		})
	}
	return citations
}

// excerpt is a bounded prefix of the passage with an ellipsis marker,
// derived for display, never stored.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > config.CitationExcerptLength {
		runes = runes[:config.CitationExcerptLength]
	}
	return string(runes) + "..."
}
