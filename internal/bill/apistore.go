package bill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
)

// HTTPDoer is the http.Client subset the store client needs.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// APIStore implements Store against the remote data-access API. A
// non-2xx answer surfaces as an error whose message is "Erreur <code>",
// the exact form the pipelines log and the view layer renders.
type APIStore struct {
	baseURL string
	client  HTTPDoer
	session SessionStore
	log     *slog.Logger
}

// NewAPIStore builds a store client for the API at baseURL. The session
// store provides the bearer token attached to every request.
func NewAPIStore(baseURL string, client HTTPDoer, session SessionStore) *APIStore {
	return NewAPIStoreWithLogger(baseURL, client, session, slog.Default())
}

// NewAPIStoreWithLogger builds a store client with an explicit logger,
// used by tests to observe the per-call diagnostics.
func NewAPIStoreWithLogger(baseURL string, client HTTPDoer, session SessionStore, log *slog.Logger) *APIStore {
	return &APIStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		session: session,
		log:     log,
	}
}

// Bills returns the bill accessor.
func (s *APIStore) Bills() BillService {
	return &billAPI{store: s}
}

// billAPI implements BillService over the /bills resource.
type billAPI struct {
	store *APIStore
}

// do executes one API request and returns the response body.
func (s *APIStore) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token, err := s.session.Get(SessionJWTKey); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	s.log.Debug("store call", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Erreur %d", resp.StatusCode)
	}
	return respBody, nil
}

// List returns the raw bill records, in store order.
func (b *billAPI) List(ctx context.Context) ([]Bill, error) {
	body, err := b.store.do(ctx, http.MethodGet, "/bills", nil, "")
	if err != nil {
		return nil, err
	}
	var bills []Bill
	if err := json.Unmarshal(body, &bills); err != nil {
		return nil, fmt.Errorf("decoding bills: %w", err)
	}
	return bills, nil
}

// CreateFile uploads the receipt file and the submitting user's email as
// a multipart payload.
func (b *billAPI) CreateFile(ctx context.Context, req CreateFileRequest) (*UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.FileName))
	if req.ContentType != "" {
		header.Set("Content-Type", req.ContentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("building multipart payload: %w", err)
	}
	if _, err := part.Write(req.FileData); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}
	if err := writer.WriteField("email", req.Email); err != nil {
		return nil, fmt.Errorf("writing email part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart payload: %w", err)
	}

	body, err := b.store.do(ctx, http.MethodPost, "/bills", &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding upload result: %w", err)
	}
	result.FileName = req.FileName
	return &result, nil
}

// Update upserts the bill record selected by the stored file key.
func (b *billAPI) Update(ctx context.Context, req UpdateRequest) (*Bill, error) {
	body, err := b.store.do(ctx, http.MethodPatch, "/bills/"+req.Selector, bytes.NewReader(req.Data), "application/json")
	if err != nil {
		return nil, err
	}
	var updated Bill
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("decoding updated bill: %w", err)
	}
	return &updated, nil
}
