package qdrantDB

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/commonModels"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/internal/rag/vectorDB"
	"github.com/adevara/docqa/pkg/logger_i"
)

var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	qObj           *qdrant.Client
	collectionName string
	logger         *logger_i.Logger
}

func NewClient(ctx context.Context, host string, port int) (vectorDB.Store, error) {
	logger := logger_i.NewLogger("Qdrant")

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, faults.Wrap(faults.Index, "could not instantiate qdrant client", err)
	}

	holder := &ClientHolder{
		qObj:           client,
		collectionName: config.IndexCollectionName,
		logger:         logger,
	}

	if err := holder.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	go closeQdrant(ctx, client, logger)
	return holder, nil
}

func closeQdrant(ctx context.Context, qi *qdrant.Client, logger *logger_i.Logger) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
}

// EnsureCollection creates the collection plus the payload indexes the
// hybrid and delete filters rely on: full-text on content, keyword on
// storage_name, integer on chunk_order.
func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	exists, err := db.qObj.CollectionExists(ctx, db.collectionName)
	if err != nil {
		return faults.Wrap(faults.Index, "checking collection", err)
	}
	if exists {
		return nil
	}

	err = db.qObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return faults.Wrap(faults.Index, "creating collection", err)
	}

	fieldIndexes := []struct {
		field string
		kind  qdrant.FieldType
	}{
		{"content", qdrant.FieldType_FieldTypeText},
		{"storage_name", qdrant.FieldType_FieldTypeKeyword},
		{"chunk_order", qdrant.FieldType_FieldTypeInteger},
	}
	for _, fi := range fieldIndexes {
		_, err = db.qObj.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: db.collectionName,
			FieldName:      fi.field,
			FieldType:      fi.kind.Enum(),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return faults.Wrap(faults.Index, fmt.Sprintf("creating %s field index", fi.field), err)
		}
	}
	return nil
}

// HybridSearch runs the vector leg and the keyword leg separately and merges
// them, vector hits first, deduplicated by point id, capped at topK.
func (db *ClientHolder) HybridSearch(ctx context.Context, query string, vector []float32, topK int) ([]commonModels.SearchHit, error) {
	loggr := db.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	scored, err := db.qObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, faults.Wrap(faults.Index, "vector query failed", err)
	}

	keyword, err := db.qObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: db.collectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchText("content", query)},
		},
		Limit:       qdrant.PtrOf(uint32(topK)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error running keyword scroll: ", "error:", err)
		return nil, faults.Wrap(faults.Index, "keyword query failed", err)
	}

	seen := make(map[string]bool, topK)
	var hits []commonModels.SearchHit
	for _, hit := range scored {
		if len(hits) == topK {
			break
		}
		seen[hit.Id.GetUuid()] = true
		hits = append(hits, toHit(hit.Payload, hit.Score))
	}
	for _, hit := range keyword {
		if len(hits) == topK {
			break
		}
		if seen[hit.Id.GetUuid()] {
			continue
		}
		seen[hit.Id.GetUuid()] = true
		hits = append(hits, toHit(hit.Payload, 0))
	}

	loggr.Debug("Hybrid search done", "vector hits", len(scored), "keyword hits", len(keyword))
	return hits, nil
}

func toHit(payload map[string]*qdrant.Value, score float32) commonModels.SearchHit {
	return commonModels.SearchHit{
		Content:     payload["content"].GetStringValue(),
		Title:       payload["title"].GetStringValue(),
		StorageName: payload["storage_name"].GetStringValue(),
		Score:       score,
	}
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, entries []commonModels.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(entries))
	for i, entry := range entries {
		if len(entry.Embedding) != int(dimension) {
			return faults.New(faults.Index, fmt.Sprintf("entry %s has %d-dim vector, index wants %d", entry.Id, len(entry.Embedding), dimension))
		}
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(entry.Id),
			Vectors: qdrant.NewVectors(entry.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":      entry.Content,
				"title":        entry.Title,
				"storage_name": entry.StorageName,
				"storage_path": entry.StoragePath,
				"chunk_order":  entry.Ordinal,
			}),
		}
	}

	_, err := db.qObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return faults.Wrap(faults.Index, "qdrant upsert failed", err)
	}
	return nil
}

func (db *ClientHolder) DeleteByDocument(ctx context.Context, docName string) error {
	return db.deleteByFilter(ctx, &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("storage_name", docName)},
	})
}

func (db *ClientHolder) DeleteStale(ctx context.Context, docName string, keepCount int) error {
	return db.deleteByFilter(ctx, &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("storage_name", docName),
			qdrant.NewRange("chunk_order", &qdrant.Range{Gte: qdrant.PtrOf(float64(keepCount))}),
		},
	})
}

func (db *ClientHolder) deleteByFilter(ctx context.Context, filter *qdrant.Filter) error {
	_, err := db.qObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collectionName,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return faults.Wrap(faults.Index, "qdrant delete failed", err)
	}
	return nil
}
