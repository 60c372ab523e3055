package listings_api_client

import (
	"context"
	"encoding/json"
	"io"
	"listing-organizer/internal/contextkeys"
	"listing-organizer/internal/core/domain"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCred = domain.Credential{UserID: "user-1", Token: "secret"}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, 2, time.Millisecond)
}

func TestExtractPropertySendsCredentialsAndMapsResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/properties/extract", r.URL.Path)
		assert.Equal(t, "https://portal/ad/1", r.URL.Query().Get("url"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "user-1", r.Header.Get("X-User-ID"))
		assert.Equal(t, "trace-42", r.Header.Get(contextkeys.TraceHeader))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"address": "Rua B, 5",
			"isRent": true,
			"isSell": true,
			"information": {"bedrooms": 3, "totalArea": 80},
			"costs": {"rentValue": 3000, "sellPrice": 450000, "unknown": 1, "iptuValue": null},
			"images": [{"url": "https://cdn/a.jpg"}, {"url": "https://cdn/b.jpg"}],
			"provider": "portal"
		}`)
	})

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-42")
	property, err := client.ExtractProperty(ctx, testCred, "https://portal/ad/1")
	require.NoError(t, err)

	assert.Equal(t, "Rua B, 5", property.Address)
	assert.Equal(t, domain.ModeBoth, property.Mode)
	require.NotNil(t, property.Information.Bedrooms)
	assert.Equal(t, 3, *property.Information.Bedrooms)
	assert.Equal(t, domain.Costs{domain.CostRent: 3000, domain.CostSellPrice: 450000}, property.Costs)
	require.Len(t, property.Images, 2)
	assert.Equal(t, "https://cdn/a.jpg", property.Images[0].URL)
	assert.True(t, property.Available)
}

func TestExtractPropertyRejectsContractViolation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"address": 12}`)
	})

	_, err := client.ExtractProperty(context.Background(), testCred, "https://portal/ad/1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContractViolation)
	assert.ErrorIs(t, err, domain.ErrRemoteCall)
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.CreateProperty(context.Background(), testCred, domain.PropertyPayload{Address: "x"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, statusCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestReadsRetryServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"buckets": [{"bucketId": null, "items": [{"id": "p1", "index": 0, "available": false}]}]}`)
	})

	buckets, err := client.FetchBoards(context.Background(), testCred, domain.BoardFilters{Available: true})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, buckets, 1)
	assert.Nil(t, buckets[0].BucketID)
	assert.False(t, buckets[0].Items[0].Available)
}

func TestReadsGiveUpAfterRetryMax(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FetchBoards(context.Background(), testCred, domain.BoardFilters{})
	require.Error(t, err)
	// первая попытка + retryMax повторов
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchProperty(context.Background(), testCred, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchBoardsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Rua A", q.Get("address"))
		assert.Equal(t, "true", q.Get("available"))
		assert.Equal(t, "false", q.Get("unavailable"))
		_, _ = io.WriteString(w, `{"buckets": []}`)
	})

	buckets, err := client.FetchBoards(context.Background(), testCred, domain.BoardFilters{Address: "Rua A", Available: true})
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestUploadImagesSendsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 1)
		assert.Equal(t, "front.jpg", files[0].Filename)
		assert.Equal(t, "image/jpeg", files[0].Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"images": [{"url": "https://cdn/front.jpg"}]}`)
	})

	images, err := client.UploadImages(context.Background(), testCred, []domain.UploadFile{
		{Name: "front.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Image{{URL: "https://cdn/front.jpg"}}, images)
}

func TestCreatePropertyPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req PropertyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.IsRent)
		assert.False(t, req.IsSell)
		assert.Equal(t, map[string]float64{"rentValue": 1200}, req.Costs)
		assert.Equal(t, "own", req.Provider)
		_, _ = io.WriteString(w, `{"id": "new-id"}`)
	})

	id, err := client.CreateProperty(context.Background(), testCred, domain.PropertyPayload{
		Address:  "Rua C",
		IsRent:   true,
		Costs:    domain.Costs{domain.CostRent: 1200},
		Provider: domain.ProviderOwn,
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)
}

func TestBoardAssignmentSendsNullForSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/properties/p1/board", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"bucketId": null, "index": 2}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.UpdatePropertyBoardAssignment(context.Background(), testCred, "p1", domain.BoardAssignment{Index: 2})
	require.NoError(t, err)
}
