package talenthub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient implements Client against the hub's REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient constructs an HTTP hub client.
func NewHTTPClient(baseURL, token string, timeout time.Duration) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("HUB_BASE_URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *HTTPClient) ListDocuments(ctx context.Context, kind Kind) ([]Document, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid kind %q", kind)
	}
	var payload []map[string]any
	path := "/documents?kind=" + url.QueryEscape(string(kind))
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return decodeAll(kind, payload)
}

func (c *HTTPClient) ListCategories(ctx context.Context) (map[string]int, error) {
	var payload map[string]int
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *HTTPClient) ListDocumentsInCategory(ctx context.Context, category string) ([]Document, error) {
	var payload []map[string]any
	path := "/categories/" + url.PathEscape(category) + "/documents"
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return decodeAll(KindCV, payload)
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, kind Kind, id string) error {
	path := "/documents/" + url.PathEscape(string(kind)) + "/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) ReprocessDocument(ctx context.Context, kind Kind, id string) error {
	path := "/documents/" + url.PathEscape(string(kind)) + "/" + url.PathEscape(id) + "/reprocess"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *HTTPClient) StartMatch(ctx context.Context, cvIDs []string, jdID string) (MatchHandle, error) {
	body := map[string]any{
		"cv_ids": cvIDs,
		"jd_id":  jdID,
	}
	var resp struct {
		Handle string `json:"handle"`
	}
	if err := c.do(ctx, http.MethodPost, "/match", body, &resp); err != nil {
		return "", err
	}
	if resp.Handle == "" {
		return "", fmt.Errorf("talent hub: match response missing handle")
	}
	return MatchHandle(resp.Handle), nil
}

func (c *HTTPClient) GetMatchProgress(ctx context.Context, handle MatchHandle) (Progress, error) {
	var progress Progress
	path := "/match/" + url.PathEscape(string(handle)) + "/progress"
	if err := c.do(ctx, http.MethodGet, path, nil, &progress); err != nil {
		return Progress{}, err
	}
	return progress, nil
}

func (c *HTTPClient) GetMatchResult(ctx context.Context, handle MatchHandle) (MatchResult, error) {
	var result MatchResult
	path := "/match/" + url.PathEscape(string(handle)) + "/result"
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return MatchResult{}, err
	}
	return result, nil
}

func (c *HTTPClient) UploadJD(ctx context.Context, fileName string, data []byte) (UploadReceipt, error) {
	var receipt UploadReceipt
	if err := c.doMultipart(ctx, "/jd/upload", fileName, data, nil, &receipt); err != nil {
		return UploadReceipt{}, err
	}
	if receipt.ReferenceID == "" {
		return UploadReceipt{}, fmt.Errorf("talent hub: upload response missing reference id")
	}
	return receipt, nil
}

func (c *HTTPClient) ExtractUIFields(ctx context.Context, referenceID string) (JobFields, error) {
	var fields JobFields
	path := "/jd/" + url.PathEscape(referenceID) + "/fields"
	if err := c.do(ctx, http.MethodGet, path, nil, &fields); err != nil {
		return JobFields{}, err
	}
	return fields, nil
}

func (c *HTTPClient) PublishJobFromReference(ctx context.Context, referenceID string, fields JobFields) (PublishReceipt, error) {
	body := map[string]any{
		"reference_id": referenceID,
		"fields":       fields,
	}
	var receipt PublishReceipt
	if err := c.do(ctx, http.MethodPost, "/jobs/from-reference", body, &receipt); err != nil {
		return PublishReceipt{}, err
	}
	return receipt, nil
}

func (c *HTTPClient) PublishJobFromForm(ctx context.Context, fields JobFields, fileName string, data []byte) (PublishReceipt, error) {
	var receipt PublishReceipt
	if len(data) > 0 {
		if err := c.doMultipart(ctx, "/jobs", fileName, data, &fields, &receipt); err != nil {
			return PublishReceipt{}, err
		}
		return receipt, nil
	}
	if err := c.do(ctx, http.MethodPost, "/jobs", map[string]any{"fields": fields}, &receipt); err != nil {
		return PublishReceipt{}, err
	}
	return receipt, nil
}

func (c *HTTPClient) UpdateJob(ctx context.Context, jobID string, fields JobFields) error {
	path := "/jobs/" + url.PathEscape(jobID)
	return c.do(ctx, http.MethodPut, path, map[string]any{"fields": fields}, nil)
}

func decodeAll(kind Kind, payload []map[string]any) ([]Document, error) {
	out := make([]Document, 0, len(payload))
	for _, raw := range payload {
		doc, err := DecodeDocument(kind, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	return c.send(req, out)
}

func (c *HTTPClient) doMultipart(ctx context.Context, path, fileName string, data []byte, fields *JobFields, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := fileWriter.Write(data); err != nil {
		return err
	}
	if fields != nil {
		encoded, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		if err := writer.WriteField("fields", string(encoded)); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuth(req)

	return c.send(req, out)
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("talent hub request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("talent hub response read: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(raw, &envelope); err == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("talent hub response parse: %w", err)
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
