package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// httpClient is shared across all Remote instances so connections get
// pooled rather than rebuilt per call.
var httpClient = &http.Client{Timeout: 5 * time.Second}

// Remote reads and writes blobs against an HTTP-addressable store
// exposing GET /blobs/{id} and PUT /blobs/{id}. It has no Store method
// taking a context because the Store interface doesn't carry one;
// callers needing cancellation should call ReadContext/WriteContext
// with their own deadline.
type Remote struct {
	BaseURL string
}

// NewRemote returns a Remote client pointed at baseURL, e.g.
// "http://store.internal:9090".
func NewRemote(baseURL string) *Remote {
	return &Remote{BaseURL: baseURL}
}

func (r *Remote) Read(id string) (Blob, error) {
	return r.ReadContext(context.Background(), id)
}

func (r *Remote) Write(id string, blob Blob) error {
	return r.WriteContext(context.Background(), id, blob)
}

type wireBlob struct {
	Data        []byte   `json:"data"`
	ContentType string   `json:"content_type"`
	Signers     []string `json:"signers"`
}

// ReadContext fetches a blob by id, failing with ErrNotFound on a 404
// response.
func (r *Remote) ReadContext(ctx context.Context, id string) (Blob, error) {
	url := fmt.Sprintf("%s/blobs/%s", r.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Blob{}, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return Blob{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Blob{}, ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return Blob{}, fmt.Errorf("store: GET %s: http %d", url, resp.StatusCode)
	}

	var wb wireBlob
	if err := json.NewDecoder(resp.Body).Decode(&wb); err != nil {
		return Blob{}, err
	}
	return Blob{Data: wb.Data, ContentType: wb.ContentType, Signers: wb.Signers}, nil
}

// WriteContext stores blob under id.
func (r *Remote) WriteContext(ctx context.Context, id string, blob Blob) error {
	url := fmt.Sprintf("%s/blobs/%s", r.BaseURL, id)
	body, err := json.Marshal(wireBlob{Data: blob.Data, ContentType: blob.ContentType, Signers: blob.Signers})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("store: PUT %s: http %d", url, resp.StatusCode)
	}
	return nil
}
