package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua/cmsinit/internal/cma"
	"lingua/cmsinit/internal/orchestrator"
	"lingua/cmsinit/internal/schema"
)

// memorySpace is an in-memory schema.ManagementClient.
type memorySpace struct {
	mu    sync.Mutex
	types map[string]cma.ContentType
}

func (m *memorySpace) ListContentTypes(_ context.Context, _ string) ([]cma.ContentType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]cma.ContentType, 0, len(m.types))
	for _, ct := range m.types {
		out = append(out, ct)
	}
	return out, nil
}

func (m *memorySpace) CreateContentType(_ context.Context, _ string, ct cma.ContentType) *cma.Creation {
	m.mu.Lock()
	defer m.mu.Unlock()
	ct.Sys.Version = 1
	m.types[ct.Sys.ID] = ct
	creation, resolve := cma.NewCreation()
	resolve(ct, nil)
	return creation
}

func (m *memorySpace) FetchContentType(_ context.Context, _ string, id string) (cma.ContentType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ct, ok := m.types[id]
	if !ok {
		return cma.ContentType{}, &cma.APIError{Method: http.MethodGet, Path: id, StatusCode: http.StatusNotFound}
	}
	return ct, nil
}

func (m *memorySpace) PublishContentType(_ context.Context, _ string, ct cma.ContentType) (cma.ContentType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ct.Sys.PublishedVersion = ct.Sys.Version
	ct.Sys.Version++
	m.types[ct.Sys.ID] = ct
	return ct, nil
}

func (m *memorySpace) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.types)
}

// TestBootstrapFlow_202ThenReady drives a full bootstrap over HTTP: POST
// returns 202, /ready flips to 200 once the background run settles, and a
// second bootstrap finds the existing content type.
func TestBootstrapFlow_202ThenReady(t *testing.T) {
	t.Parallel()

	space := &memorySpace{types: map[string]cma.ContentType{}}
	o := orchestrator.New(
		schema.NewBootstrapper(space, "space-1"),
		orchestrator.ProberFunc(func(context.Context) error { return nil }),
		nil,
	)

	srv := httptest.NewServer(NewRouter(o, "cmsinit-test", time.Minute).Handler())
	defer srv.Close()
	client := srv.Client()

	post := func() int {
		resp, err := client.Post(srv.URL+"/api/v1/bootstrap", "application/json", strings.NewReader(""))
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}
	// lastOutcome runs inside Eventually conditions, so it reports problems
	// as an empty outcome rather than failing the test from another goroutine.
	lastOutcome := func() string {
		resp, err := client.Get(srv.URL + "/api/v1/bootstrap")
		if err != nil {
			return ""
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return ""
		}
		var result orchestrator.BootstrapResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return ""
		}
		return result.Outcome
	}

	assert.Equal(t, http.StatusAccepted, post())

	require.Eventually(t, func() bool {
		r, err := client.Get(srv.URL + "/ready")
		if err != nil {
			return false
		}
		r.Body.Close()
		return r.StatusCode == http.StatusOK && !o.IsBootstrapInProgress()
	}, 5*time.Second, 20*time.Millisecond, "GET /ready should return 200 after bootstrap completes")

	assert.Equal(t, string(schema.OutcomeCreated), lastOutcome())
	assert.Equal(t, 1, space.count())

	assert.Equal(t, http.StatusAccepted, post())
	require.Eventually(t, func() bool {
		return lastOutcome() == string(schema.OutcomeExisting)
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, space.count())

	ct, err := space.FetchContentType(context.Background(), "space-1", schema.ContentTypeID)
	require.NoError(t, err)
	assert.Equal(t, cma.StatusPublished, ct.Status())
}
