package search

import (
	"context"

	"go.uber.org/zap"

	"roleradar/internal/events"
	"roleradar/internal/models"
	"roleradar/internal/repository"
)

// Title and URL share a varchar(512) column width.
const maxColumnLen = 512

// Ingestor runs provider queries and stores the hits in the intake table.
// A hit whose URL is already known is skipped, whatever query found it.
type Ingestor struct {
	Repo       repository.Repository
	Client     *Client
	Logger     *zap.Logger
	Events     *events.Hub
	MaxResults int
}

// IngestStats reports one RunSearches pass.
type IngestStats struct {
	Queries int `json:"queries"`
	Fetched int `json:"fetched"`
	Stored  int `json:"stored"`
}

func (in *Ingestor) RunSearches(ctx context.Context, queries []string) (IngestStats, error) {
	stats := IngestStats{Queries: len(queries)}
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		hits, err := in.Client.Search(ctx, query, in.MaxResults)
		if err != nil {
			in.Logger.Warn("search query failed", zap.String("query", query), zap.Error(err))
			continue
		}
		stats.Fetched += len(hits)
		for _, hit := range hits {
			if hit.URL == "" {
				continue
			}
			result := &models.SearchResult{
				Query:         query,
				Title:         truncate(hit.Title, maxColumnLen),
				Content:       hit.Content,
				URL:           truncate(hit.URL, maxColumnLen),
				Relevance:     hit.Score.Decimal,
				PublishedDate: hit.PublishedDate,
			}
			inserted, err := in.Repo.InsertSearchResultIfNew(ctx, result)
			if err != nil {
				in.Logger.Error("failed to store search result", zap.String("url", result.URL), zap.Error(err))
				continue
			}
			if inserted {
				stats.Stored++
			}
		}
	}
	in.Logger.Info("search pass complete",
		zap.Int("queries", stats.Queries),
		zap.Int("fetched", stats.Fetched),
		zap.Int("stored", stats.Stored))
	if in.Events != nil && stats.Stored > 0 {
		in.Events.Publish(events.Event{Type: events.TypeResultsStored, Data: stats})
	}
	return stats, nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
