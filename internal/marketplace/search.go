package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	platformes "smartkheti_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSearchUnavailable tells the service to fall back to database search.
var ErrSearchUnavailable = errors.New("search index unavailable")

const maxSearchHits = 500

// SearchIndex keeps listings searchable outside the database.
type SearchIndex interface {
	IndexListing(ctx context.Context, listing *CropListing) error
	DeleteListing(ctx context.Context, id uuid.UUID) error
	// Search returns matching listing IDs, newest first.
	Search(ctx context.Context, query string) ([]uuid.UUID, error)
	// BulkIndex indexes a batch and reports how many documents succeeded and failed.
	BulkIndex(ctx context.Context, listings []CropListing) (int, int, error)
}

// NewSearchIndex returns an Elasticsearch-backed index, or a no-op index when no client is configured.
func NewSearchIndex(client *platformes.ESClientWrapper, logger *zap.Logger) SearchIndex {
	if client == nil {
		return noopIndex{}
	}
	return &ElasticsearchIndex{client: client, logger: logger.Named("ListingSearch")}
}

type noopIndex struct{}

func (noopIndex) IndexListing(context.Context, *CropListing) error { return nil }
func (noopIndex) DeleteListing(context.Context, uuid.UUID) error   { return nil }
func (noopIndex) Search(context.Context, string) ([]uuid.UUID, error) {
	return nil, ErrSearchUnavailable
}
func (noopIndex) BulkIndex(context.Context, []CropListing) (int, int, error) {
	return 0, 0, ErrSearchUnavailable
}

// ElasticsearchIndex stores listing documents in the crop_listings index.
type ElasticsearchIndex struct {
	client *platformes.ESClientWrapper
	logger *zap.Logger
}

// ListingToDocument converts a listing to its search document. Farmer and Category
// should be preloaded.
func ListingToDocument(l *CropListing) ([]byte, error) {
	if l == nil {
		return nil, errors.New("listing cannot be nil")
	}
	doc := map[string]interface{}{
		"crop_name":      l.CropName,
		"location":       l.Location,
		"description":    l.Description,
		"category":       l.CategoryName(),
		"farmer_id":      l.FarmerID.String(),
		"farmer_name":    l.FarmerName(),
		"contact_number": l.ContactNumber,
		"rate":           l.Rate,
		"quantity":       l.Quantity,
		"date_posted":    l.DatePosted,
	}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error marshalling listing to JSON for ES: %w", err)
	}
	return docBytes, nil
}

func (e *ElasticsearchIndex) IndexListing(ctx context.Context, listing *CropListing) error {
	body, err := ListingToDocument(listing)
	if err != nil {
		return err
	}
	res, err := esapi.IndexRequest{
		Index:      platformes.CropListingsIndexName,
		DocumentID: listing.ID.String(),
		Body:       bytes.NewReader(body),
	}.Do(ctx, e.client.Client)
	if err != nil {
		return fmt.Errorf("indexing listing %s: %w", listing.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing listing %s: status %s", listing.ID, res.Status())
	}
	return nil
}

func (e *ElasticsearchIndex) DeleteListing(ctx context.Context, id uuid.UUID) error {
	res, err := esapi.DeleteRequest{
		Index:      platformes.CropListingsIndexName,
		DocumentID: id.String(),
	}.Do(ctx, e.client.Client)
	if err != nil {
		return fmt.Errorf("deleting listing %s from index: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("deleting listing %s from index: status %s", id, res.Status())
	}
	return nil
}

func (e *ElasticsearchIndex) Search(ctx context.Context, query string) ([]uuid.UUID, error) {
	body := map[string]interface{}{
		"size":    maxSearchHits,
		"_source": false,
		"sort":    []interface{}{map[string]interface{}{"date_posted": map[string]string{"order": "desc"}}},
		"query": map[string]interface{}{
			"query_string": map[string]interface{}{
				"query":            wildcardQuery(query),
				"fields":           []string{"crop_name", "location", "description"},
				"default_operator": "AND",
				"analyze_wildcard": true,
			},
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := esapi.SearchRequest{
		Index: []string{platformes.CropListingsIndexName},
		Body:  bytes.NewReader(raw),
	}.Do(ctx, e.client.Client)
	if err != nil {
		return nil, fmt.Errorf("searching listings: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("searching listings: status %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			e.logger.Warn("Skipping search hit with invalid id", zap.String("id", hit.ID))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (e *ElasticsearchIndex) BulkIndex(ctx context.Context, listings []CropListing) (int, int, error) {
	var buf bytes.Buffer
	failed := 0
	sent := 0
	for i := range listings {
		l := &listings[i]
		doc, err := ListingToDocument(l)
		if err != nil {
			e.logger.Error("Failed to convert listing to document", zap.String("listingID", l.ID.String()), zap.Error(err))
			failed++
			continue
		}
		fmt.Fprintf(&buf, `{"index":{"_index":%q,"_id":%q}}`+"\n", platformes.CropListingsIndexName, l.ID.String())
		buf.Write(doc)
		buf.WriteByte('\n')
		sent++
	}
	if sent == 0 {
		return 0, failed, nil
	}

	res, err := esapi.BulkRequest{Body: &buf}.Do(ctx, e.client.Client)
	if err != nil {
		return 0, failed + sent, fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, failed + sent, fmt.Errorf("bulk request: status %s", res.Status())
	}

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return 0, failed + sent, fmt.Errorf("decoding bulk response: %w", err)
	}
	synced := 0
	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			e.logger.Error("Failed to index document in bulk batch",
				zap.String("listingID", item.Index.ID),
				zap.Any("error", item.Index.Error),
				zap.Int("status", item.Index.Status),
			)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

// wildcardQuery turns free text into a query_string that matches each term as a substring.
func wildcardQuery(text string) string {
	terms := strings.Fields(strings.ToLower(text))
	for i, t := range terms {
		terms[i] = "*" + escapeQueryString(t) + "*"
	}
	return strings.Join(terms, " ")
}

var queryStringReplacer = strings.NewReplacer(
	`\`, `\\`, `+`, `\+`, `-`, `\-`, `=`, `\=`, `&`, `\&`, `|`, `\|`, `>`, `\>`, `<`, `\<`,
	`!`, `\!`, `(`, `\(`, `)`, `\)`, `{`, `\{`, `}`, `\}`, `[`, `\[`, `]`, `\]`, `^`, `\^`,
	`"`, `\"`, `~`, `\~`, `*`, `\*`, `?`, `\?`, `:`, `\:`, `/`, `\/`,
)

func escapeQueryString(s string) string {
	return queryStringReplacer.Replace(s)
}

// SyncAll reindexes every listing in batches and returns the synced and failed totals.
func SyncAll(ctx context.Context, repo Repository, index SearchIndex, batchSize int, logger *zap.Logger) (int, int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	offset, totalSynced, totalFailed := 0, 0, 0
	for batch := 1; ; batch++ {
		listings, err := repo.FindAllForSync(ctx, offset, batchSize)
		if err != nil {
			return totalSynced, totalFailed, fmt.Errorf("failed to fetch batch %d: %w", batch, err)
		}
		if len(listings) == 0 {
			break
		}
		synced, failed, err := index.BulkIndex(ctx, listings)
		if err != nil {
			logger.Error("Bulk index failed", zap.Int("batchNumber", batch), zap.Error(err))
		}
		totalSynced += synced
		totalFailed += failed
		logger.Info("Batch processed",
			zap.Int("batchNumber", batch),
			zap.Int("syncedInBatch", synced),
			zap.Int("failedInBatch", failed),
		)
		offset += len(listings)
	}
	return totalSynced, totalFailed, nil
}
