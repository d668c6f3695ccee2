package adapter

import (
	"github.com/adevara/docqa/internal/api"
	"github.com/adevara/docqa/internal/domain/commonModels"
)

func ToQueryResponse(result commonModels.QueryResult) api.QueryResponse {
	citations := make([]api.Citation, 0, len(result.Citations))
	for _, c := range result.Citations {
		citations = append(citations, api.Citation{
			Source:  c.Source,
			Content: c.Excerpt,
		})
	}

	return api.QueryResponse{
		Answer:    result.Answer,
		Citations: citations,
	}
}
