package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

const defaultQdrantGRPCPort = 6334

// RubricChunk is one embedded piece of a rubric document.
type RubricChunk struct {
	DocID     string
	DocType   string
	Index     int
	Text      string
	Embedding []float32
}

// PointID is stable per document and chunk index so that re-ingesting a
// document overwrites its previous points.
func (c RubricChunk) PointID() string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("rubric:%s#%d", c.DocID, c.Index))).String()
}

// QdrantService stores rubric chunks and their embeddings.
type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertChunks(ctx context.Context, chunks []RubricChunk) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error)
	// DeleteChunksFrom removes the document's chunks with an index of
	// fromIndex or higher. fromIndex 0 removes the whole document.
	DeleteChunksFrom(ctx context.Context, docID string, fromIndex int) error
	Close() error
}

type SearchResult struct {
	DocID      string
	DocType    string
	ChunkIndex int
	Score      float32
	Text       string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

// NewQdrantService connects over gRPC. The port in urlStr defaults to 6334.
func NewQdrantService(urlStr, apiKey, collectionName string, vectorSize uint64, logger *zap.Logger) (QdrantService, error) {
	cfg, err := qdrantConfigFromURL(urlStr, apiKey)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		logger:         logger,
	}, nil
}

func qdrantConfigFromURL(urlStr, apiKey string) (*qdrant.Config, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("invalid Qdrant URL %q: missing host", urlStr)
	}

	port := defaultQdrantGRPCPort
	if p := parsed.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid Qdrant port %q: %w", p, err)
		}
	}

	return &qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	}, nil
}

// InitCollection creates the collection and its doc_type index when missing,
// and checks the vector size of an existing one.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		info, err := q.client.GetCollectionInfo(ctx, q.collectionName)
		if err != nil {
			return fmt.Errorf("failed to read collection info: %w", err)
		}
		size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
		if size != 0 && size != q.vectorSize {
			return fmt.Errorf("collection %s has vector size %d, configured %d", q.collectionName, size, q.vectorSize)
		}
		q.logger.Info("✅ Qdrant collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: q.collectionName,
		FieldName:      "doc_type",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to index doc_type: %w", err)
	}

	q.logger.Info("✅ Qdrant collection created",
		zap.String("collection", q.collectionName),
		zap.Uint64("vector_size", q.vectorSize))
	return nil
}

// UpsertChunks writes all chunks in one request.
func (q *qdrantService) UpsertChunks(ctx context.Context, chunks []RubricChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		if uint64(len(c.Embedding)) != q.vectorSize {
			return fmt.Errorf("chunk %d of %s has %d dimensions, collection expects %d",
				c.Index, c.DocID, len(c.Embedding), q.vectorSize)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(c.PointID()),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"doc_id":      c.DocID,
				"doc_type":    c.DocType,
				"chunk_index": int64(c.Index),
				"text":        c.Text,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}
	return nil
}

// SearchSimilar returns the closest chunks, optionally of one doc type.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	req := &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if docType != "" {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("doc_type", docType)},
		}
	}

	points, err := q.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, p := range points {
		results = append(results, SearchResult{
			DocID:      p.Payload["doc_id"].GetStringValue(),
			DocType:    p.Payload["doc_type"].GetStringValue(),
			ChunkIndex: int(p.Payload["chunk_index"].GetIntegerValue()),
			Score:      p.Score,
			Text:       p.Payload["text"].GetStringValue(),
		})
	}
	return results, nil
}

func (q *qdrantService) DeleteChunksFrom(ctx context.Context, docID string, fromIndex int) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(chunkFilter(docID, fromIndex)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete chunks of %s: %w", docID, err)
	}
	return nil
}

func chunkFilter(docID string, fromIndex int) *qdrant.Filter {
	must := []*qdrant.Condition{qdrant.NewMatch("doc_id", docID)}
	if fromIndex > 0 {
		must = append(must, qdrant.NewRange("chunk_index", &qdrant.Range{
			Gte: qdrant.PtrOf(float64(fromIndex)),
		}))
	}
	return &qdrant.Filter{Must: must}
}

func (q *qdrantService) Close() error {
	return q.client.Close()
}
