package listings_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"listing-organizer/internal/contextkeys"
	"listing-organizer/internal/contracts"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"
)

// StatusError - ответ API с кодом вне диапазона 2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("listings api returned non-success status code %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return domain.ErrRemoteCall }

type Client struct {
	baseURL       string
	httpClient    *http.Client
	retryMax      uint64
	retryInterval time.Duration
}

var _ port.ListingsAPIPort = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, retryMax uint64, retryInterval time.Duration) *Client {
	return &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: timeout},
		retryMax:      retryMax,
		retryInterval: retryInterval,
	}
}

// doRequest - внутренний хелпер: trace_id, авторизация и общие заголовки.
func (c *Client) doRequest(ctx context.Context, cred domain.Credential, method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set(contextkeys.TraceHeader, traceID)
	}
	if cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}
	if cred.UserID != "" {
		req.Header.Set("X-User-ID", cred.UserID)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteCall, err)
	}
	return resp, nil
}

// call выполняет запрос и возвращает тело успешного ответа.
func (c *Client) call(ctx context.Context, logger port.LoggerPort, cred domain.Credential, method, url string, body io.Reader, contentType string) ([]byte, error) {
	logger.Debug("Sending request to listings api", port.Fields{"url": url, "http_method": method})

	resp, err := c.doRequest(ctx, cred, method, url, body, contentType)
	if err != nil {
		logger.Error("Failed to perform request to listings api", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Failed to read response body", err, nil)
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrRemoteCall, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
		logger.Error("Received error response from listings api", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}
	return bodyBytes, nil
}

func (c *Client) sendJSON(ctx context.Context, logger port.LoggerPort, cred domain.Credential, method, url string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.call(ctx, logger, cred, method, url, bytes.NewReader(buf), "application/json")
}

func componentLogger(ctx context.Context, method string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ListingsApiClient",
		"method":    method,
	})
}

func (c *Client) ExtractProperty(ctx context.Context, cred domain.Credential, sourceURL string) (*domain.Property, error) {
	clientLogger := componentLogger(ctx, "ExtractProperty")

	endpoint := fmt.Sprintf("%s/api/v1/properties/extract?url=%s", c.baseURL, url.QueryEscape(sourceURL))
	body, err := c.call(ctx, clientLogger, cred, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	property, err := decodeProperty(body)
	if err != nil {
		clientLogger.Error("Extracted property does not match contract", err, nil)
		return nil, err
	}

	clientLogger.Info("Property extracted", port.Fields{"images_count": len(property.Images)})
	return property, nil
}

func (c *Client) UploadImages(ctx context.Context, cred domain.Credential, files []domain.UploadFile) ([]domain.Image, error) {
	clientLogger := componentLogger(ctx, "UploadImages")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create multipart part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write multipart part: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/images", c.baseURL)
	body, err := c.call(ctx, clientLogger, cred, http.MethodPost, endpoint, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var resp UploadImagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		clientLogger.Error("Failed to decode upload response", err, nil)
		return nil, fmt.Errorf("%w: decode upload response: %v", domain.ErrRemoteCall, err)
	}

	images := make([]domain.Image, 0, len(resp.Images))
	for _, img := range resp.Images {
		images = append(images, domain.Image{URL: img.URL, Description: img.Description})
	}
	clientLogger.Info("Images uploaded", port.Fields{"files_count": len(files), "images_count": len(images)})
	return images, nil
}

func (c *Client) CreateProperty(ctx context.Context, cred domain.Credential, payload domain.PropertyPayload) (string, error) {
	clientLogger := componentLogger(ctx, "CreateProperty")

	endpoint := fmt.Sprintf("%s/api/v1/properties", c.baseURL)
	body, err := c.sendJSON(ctx, clientLogger, cred, http.MethodPost, endpoint, fromDomainPayload(payload))
	if err != nil {
		return "", err
	}

	var resp CreatePropertyResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.ID == "" {
		err = fmt.Errorf("%w: create response without id: %s", domain.ErrRemoteCall, string(body))
		clientLogger.Error("Failed to decode create response", err, nil)
		return "", err
	}

	clientLogger.Info("Property created", port.Fields{"property_id": resp.ID})
	return resp.ID, nil
}

func (c *Client) UpdateProperty(ctx context.Context, cred domain.Credential, id string, payload domain.PropertyPayload) error {
	clientLogger := componentLogger(ctx, "UpdateProperty")

	endpoint := fmt.Sprintf("%s/api/v1/properties/%s", c.baseURL, url.PathEscape(id))
	if _, err := c.sendJSON(ctx, clientLogger, cred, http.MethodPut, endpoint, fromDomainPayload(payload)); err != nil {
		return err
	}

	clientLogger.Info("Property updated", port.Fields{"property_id": id})
	return nil
}

func (c *Client) FetchProperty(ctx context.Context, cred domain.Credential, id string) (*domain.Property, error) {
	clientLogger := componentLogger(ctx, "FetchProperty")

	endpoint := fmt.Sprintf("%s/api/v1/properties/%s", c.baseURL, url.PathEscape(id))
	var property *domain.Property
	err := c.withReadRetry(ctx, clientLogger, func() error {
		body, err := c.call(ctx, clientLogger, cred, http.MethodGet, endpoint, nil, "")
		if err != nil {
			return err
		}
		property, err = decodeProperty(body)
		return err
	})
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: property %q: %v", domain.ErrInvalidIdentifier, id, err)
		}
		return nil, err
	}

	if property.ID == "" {
		property.ID = id
	}
	clientLogger.Debug("Property fetched", port.Fields{"property_id": id})
	return property, nil
}

func (c *Client) FetchBoards(ctx context.Context, cred domain.Credential, filters domain.BoardFilters) ([]domain.RemoteBucket, error) {
	clientLogger := componentLogger(ctx, "FetchBoards")

	query := url.Values{}
	if filters.Address != "" {
		query.Set("address", filters.Address)
	}
	query.Set("available", strconv.FormatBool(filters.Available))
	query.Set("unavailable", strconv.FormatBool(filters.Unavailable))
	endpoint := fmt.Sprintf("%s/api/v1/boards?%s", c.baseURL, query.Encode())

	var resp BoardsResponse
	err := c.withReadRetry(ctx, clientLogger, func() error {
		body, err := c.call(ctx, clientLogger, cred, http.MethodGet, endpoint, nil, "")
		if err != nil {
			return err
		}
		if err := contracts.Validate(contracts.BoardsV1, body); err != nil {
			return contractError(err)
		}
		resp = BoardsResponse{}
		if err := json.Unmarshal(body, &resp); err != nil {
			return contractError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	buckets := toDomainBuckets(resp)
	clientLogger.Debug("Boards fetched", port.Fields{"buckets_count": len(buckets)})
	return buckets, nil
}

func (c *Client) UpdatePropertyBoardAssignment(ctx context.Context, cred domain.Credential, id string, assignment domain.BoardAssignment) error {
	clientLogger := componentLogger(ctx, "UpdatePropertyBoardAssignment")

	endpoint := fmt.Sprintf("%s/api/v1/properties/%s/board", c.baseURL, url.PathEscape(id))
	req := BoardAssignmentDTO{BucketID: assignment.BucketID, Index: assignment.Index}
	if _, err := c.sendJSON(ctx, clientLogger, cred, http.MethodPatch, endpoint, req); err != nil {
		return err
	}

	clientLogger.Info("Board assignment updated", port.Fields{"property_id": id, "index": assignment.Index})
	return nil
}

func (c *Client) UpdatePropertyAvailability(ctx context.Context, cred domain.Credential, id string, available bool) error {
	clientLogger := componentLogger(ctx, "UpdatePropertyAvailability")

	endpoint := fmt.Sprintf("%s/api/v1/properties/%s/availability", c.baseURL, url.PathEscape(id))
	if _, err := c.sendJSON(ctx, clientLogger, cred, http.MethodPatch, endpoint, AvailabilityRequest{Available: available}); err != nil {
		return err
	}

	clientLogger.Info("Availability updated", port.Fields{"property_id": id, "available": available})
	return nil
}

func decodeProperty(body []byte) (*domain.Property, error) {
	if err := contracts.ValidatePropertyDraft(body); err != nil {
		return nil, contractError(err)
	}
	var dto PropertyResponse
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, contractError(err)
	}
	return toDomainProperty(dto), nil
}
