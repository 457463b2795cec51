package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"

	"delm/internal/domain"
)

const qdrantTimeout = 30 * time.Second

// QdrantStore keeps patterns in a Qdrant collection over gRPC. Point ids are
// derived deterministically from pattern ids, so re-adding an id is a
// server-side atomic upsert of the whole point.
type QdrantStore struct {
	conn       *grpc.ClientConn
	points     qdrant.PointsClient
	collection string
	categories *domain.CategorySet
	dimension  int
}

// NewQdrantStore connects to Qdrant and ensures the collection exists with a
// cosine-distance vector index of the configured dimension.
func NewQdrantStore(addr, collection string, categories *domain.CategorySet, dimension int) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("could not connect to qdrant: %w", err)
	}

	s := &QdrantStore{
		conn:       conn,
		points:     qdrant.NewPointsClient(conn),
		collection: collection,
		categories: categories,
		dimension:  dimension,
	}

	ctx, cancel := context.WithTimeout(context.Background(), qdrantTimeout)
	defer cancel()
	if err := s.ensureCollection(ctx, qdrant.NewCollectionsClient(conn)); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, collections qdrant.CollectionsClient) error {
	_, err := collections.Get(ctx, &qdrant.GetCollectionInfoRequest{
		CollectionName: s.collection,
	})
	if err == nil {
		return nil
	}

	_, err = collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(s.dimension),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	return nil
}

// pointID maps a pattern id to a stable Qdrant UUID.
func pointID(patternID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("delm:pattern:"+patternID)).String()
}

// Insert upserts the whole record under the pattern's stable point id. The
// insertion sequence is kept from the existing point on overwrite so the
// tie-break order of older patterns does not shift.
func (s *QdrantStore) Insert(p domain.Pattern) error {
	if err := validateInsert(p, s.categories, s.dimension); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), qdrantTimeout)
	defer cancel()

	pid := &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID(p.ID)}}

	seq := uint64(time.Now().UnixNano())
	if existing, err := s.getSeq(ctx, pid); err == nil && existing > 0 {
		seq = existing
	}

	tagValues := make([]*qdrant.Value, len(p.Tags))
	for i, tag := range p.Tags {
		tagValues[i] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: tag}}
	}
	payload := map[string]*qdrant.Value{
		"pattern_id": {Kind: &qdrant.Value_StringValue{StringValue: p.ID}},
		"name":       {Kind: &qdrant.Value_StringValue{StringValue: p.Name}},
		"category":   {Kind: &qdrant.Value_StringValue{StringValue: p.Category}},
		"content":    {Kind: &qdrant.Value_StringValue{StringValue: p.Content}},
		"tags":       {Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: tagValues}}},
		"seq":        {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(seq)}},
	}

	_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           proto.Bool(true),
		Points: []*qdrant.PointStruct{{
			Id:      pid,
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: p.Embedding}}},
			Payload: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert pattern %s: %w", p.ID, err)
	}
	return nil
}

func (s *QdrantStore) getSeq(ctx context.Context, pid *qdrant.PointId) (uint64, error) {
	resp, err := s.points.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{pid},
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return 0, err
	}
	for _, point := range resp.GetResult() {
		if v, ok := point.GetPayload()["seq"]; ok {
			return uint64(v.GetIntegerValue()), nil
		}
	}
	return 0, nil
}

// Query runs a server-side cosine search, optionally filtered by category,
// then re-applies the deterministic tie-break locally.
func (s *QdrantStore) Query(vector []float32, category string, k int) ([]domain.RetrievalResult, error) {
	if err := validateQuery(vector, k, s.dimension); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), qdrantTimeout)
	defer cancel()

	req := &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	}
	if category != "" {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key:   "category",
						Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: category}},
					},
				},
			}},
		}
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	cands := make([]candidate, 0, len(resp.GetResult()))
	for _, hit := range resp.GetResult() {
		payload := hit.GetPayload()
		if payload == nil {
			continue
		}

		var tags []string
		if list := payload["tags"].GetListValue(); list != nil {
			for _, v := range list.GetValues() {
				if tag := v.GetStringValue(); tag != "" {
					tags = append(tags, tag)
				}
			}
		}

		cands = append(cands, candidate{
			result: domain.RetrievalResult{
				PatternID: payload["pattern_id"].GetStringValue(),
				Score:     float64(hit.GetScore()),
				Name:      payload["name"].GetStringValue(),
				Category:  payload["category"].GetStringValue(),
				Tags:      tags,
				Content:   payload["content"].GetStringValue(),
			},
			seq: uint64(payload["seq"].GetIntegerValue()),
		})
	}
	return rank(cands, k), nil
}

// Count returns the exact number of points in the collection.
func (s *QdrantStore) Count() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), qdrantTimeout)
	defer cancel()

	resp, err := s.points.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          proto.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Delete removes the point for a pattern id; absent ids are a no-op.
func (s *QdrantStore) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), qdrantTimeout)
	defer cancel()

	_, err := s.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           proto.Bool(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{{PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID(id)}}},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete pattern %s: %w", id, err)
	}
	return nil
}

func (s *QdrantStore) Close() error {
	return s.conn.Close()
}
