package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
)

// HTTPClient talks to the backend REST API. Every request carries the bearer
// token (when set) and is bounded by the configured timeout, so a hung
// validity check can never outlive the next poll tick.
type HTTPClient struct {
	baseURL     string
	http        *http.Client
	accessToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetAccessToken installs the bearer token used on subsequent requests.
func (c *HTTPClient) SetAccessToken(token string) {
	c.accessToken = token
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrorNotFound
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*LoginResult, error) {
	res := &LoginResult{}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": string(password),
	}, res)
	if err != nil {
		return nil, err
	}
	c.accessToken = res.AccessToken
	return res, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, userID string) (string, error) {
	var res struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/"+userID+"/session", nil, &res); err != nil {
		return "", err
	}
	return res.SessionID, nil
}

func (c *HTTPClient) UpdateSession(ctx context.Context, userID string, sessionID string) error {
	return c.do(ctx, http.MethodPut, "/api/users/"+userID+"/session",
		map[string]string{"sessionId": sessionID}, nil)
}

func (c *HTTPClient) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	var docs []*models.Document
	if err := c.do(ctx, http.MethodGet, "/api/documents", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *HTTPClient) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc := &models.Document{}
	if err := c.do(ctx, http.MethodGet, "/api/documents/"+id, nil, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *HTTPClient) CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	created := &models.Document{}
	if err := c.do(ctx, http.MethodPost, "/api/documents", doc, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *HTTPClient) UploadDocument(ctx context.Context, upload UploadRequest) (*models.Document, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if upload.Name != "" {
		if err := w.WriteField("name", upload.Name); err != nil {
			return nil, err
		}
	}
	part, err := w.CreateFormFile("file", upload.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return nil, err
	}

	doc := &models.Document{}
	if err := json.NewDecoder(resp.Body).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/documents/"+id, nil, nil)
}

// FetchBlob pulls raw bytes from a durable URL. It goes straight at the URL
// rather than through the API since blob URLs point at the object store.
func (c *HTTPClient) FetchBlob(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *HTTPClient) ListRooms(ctx context.Context) ([]*models.Room, error) {
	var rooms []*models.Room
	if err := c.do(ctx, http.MethodGet, "/api/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *HTTPClient) ListMeetings(ctx context.Context) ([]*models.Meeting, error) {
	var meetings []*models.Meeting
	if err := c.do(ctx, http.MethodGet, "/api/meetings", nil, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}
