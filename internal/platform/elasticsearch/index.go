package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const CropListingsIndexName = "crop_listings"

func cropListingsMapping() map[string]interface{} {
	text := map[string]interface{}{"type": "text"}
	keyword := map[string]interface{}{"type": "keyword"}
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"crop_name":      text,
				"location":       text,
				"description":    text,
				"category":       keyword,
				"farmer_id":      keyword,
				"farmer_name":    text,
				"contact_number": keyword,
				"rate":           map[string]interface{}{"type": "double"},
				"quantity":       keyword,
				"date_posted":    map[string]interface{}{"type": "date"},
			},
		},
	}
}

// CreateCropListingsIndexIfNotExists creates the listings index with its mapping.
func CreateCropListingsIndexIfNotExists(ctx context.Context, client *ESClientWrapper, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{CropListingsIndexName}}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("checking index %s: %w", CropListingsIndexName, err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		log.Debug("Index already exists", zap.String("index_name", CropListingsIndexName))
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("checking index %s: status %s", CropListingsIndexName, res.Status())
	}

	body, err := json.Marshal(cropListingsMapping())
	if err != nil {
		return fmt.Errorf("marshal listings mapping: %w", err)
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: CropListingsIndexName,
		Body:  bytes.NewReader(body),
	}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("creating index %s: %w", CropListingsIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		_ = json.NewDecoder(createRes.Body).Decode(&errorBody)
		log.Error("Failed to create index", zap.String("status", createRes.Status()), zap.Any("error_details", errorBody))
		return fmt.Errorf("failed to create index %s: status %s", CropListingsIndexName, createRes.Status())
	}

	log.Info("Index created", zap.String("index_name", CropListingsIndexName))
	return nil
}
