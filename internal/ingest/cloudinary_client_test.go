package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Randallflagg19/travel/internal/platform/cloudinary"
	"github.com/Randallflagg19/travel/internal/testutil"
)

// newCloudinaryServer serves one folder with n images through the search
// endpoint and answers every metadata request with a server error.
func newCloudinaryServer(t *testing.T, n int) *cloudinary.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1_1/demo/folders/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"folders":[]}`))
	})
	mux.HandleFunc("POST /v1_1/demo/resources/search", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Expression string `json:"expression"`
			MaxResults int    `json:"max_results"`
			NextCursor string `json:"next_cursor"`
		}
		require.NoError(t, json.Unmarshal(body, &req))

		page := cloudinary.ResourcePage{Resources: []cloudinary.Resource{}}
		if strings.HasSuffix(req.Expression, "resource_type:image") {
			start, _ := strconv.Atoi(req.NextCursor)
			end := min(start+req.MaxResults, n)
			for i := start; i < end; i++ {
				id := fmt.Sprintf("travel/photo-%02d", i)
				page.Resources = append(page.Resources, cloudinary.Resource{
					PublicID:     id,
					AssetFolder:  "travel",
					ResourceType: "image",
					Format:       "jpg",
					SecureURL:    "https://res.cloudinary.com/demo/image/upload/" + id + ".jpg",
				})
			}
			if end < n {
				page.NextCursor = strconv.Itoa(end)
			}
			page.TotalCount = n
		}
		out, _ := json.Marshal(page)
		_, _ = w.Write(out)
	})
	mux.HandleFunc("GET /v1_1/demo/resources/image/upload/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"metadata unavailable"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return cloudinary.NewClient(cloudinary.Config{
		CloudName: "demo",
		APIKey:    "key",
		APISecret: "secret",
		BaseURL:   srv.URL,
		RPS:       1000,
	})
}

func TestService_Run_EnrichmentFailuresDoNotStopListing(t *testing.T) {
	client := newCloudinaryServer(t, 12)
	repo := testutil.NewMemoryCatalog()
	cfg := testConfig()
	cfg.PageSize = 6
	svc := newTestService(client, repo, cfg)

	sum, err := svc.Run(context.Background(), Request{Prefix: "travel", OwnerID: testutil.TestAdminID})
	require.NoError(t, err)

	assert.Equal(t, 12, sum.Scanned)
	assert.Equal(t, 12, sum.Inserted)
	assert.Zero(t, sum.ErrorCount)
	assert.Empty(t, sum.Errors)
	assert.Equal(t, 12, repo.Len())
	for _, a := range repo.All() {
		assert.Nil(t, a.Lat, "failed enrichment leaves coordinates unknown")
	}
}
