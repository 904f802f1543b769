package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// DetectionAPI covers disease detection and detection history.
type DetectionAPI struct{ c *Client }

func (c *Client) Detection() DetectionAPI { return DetectionAPI{c} }

// Detect uploads a leaf photo for classification.
func (a DetectionAPI) Detect(ctx context.Context, filename string, image io.Reader) (*DetectionResult, error) {
	body := Multipart(nil, File{Field: "image", Filename: filename, Content: image})
	var out DetectionResult
	if err := a.c.Do(ctx, http.MethodPost, "/disease_detection/detect/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns the caller's detections, newest first.
func (a DetectionAPI) History(ctx context.Context) ([]DetectionRecord, error) {
	var out []DetectionRecord
	if err := a.c.Do(ctx, http.MethodGet, "/disease_detection/detection-history/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordPage is one page of the staff-only detection listing.
type RecordPage struct {
	Data       []DetectionRecord `json:"data"`
	Pagination *Pagination       `json:"pagination"`
}

func (a DetectionAPI) AdminAll(ctx context.Context, page, pageSize int) (*RecordPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	path := "/disease_detection/admin/detections/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out RecordPage
	if err := a.c.doRaw(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
