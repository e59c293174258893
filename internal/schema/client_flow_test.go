package schema

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua/cmsinit/internal/breaker"
	"lingua/cmsinit/internal/cma"
	"lingua/cmsinit/internal/config"
)

const flowTypesPath = "/spaces/space-1/environments/master/content_types"

// managementServer is an httptest stand-in for the management API holding at
// most the one content type. It records every request as "METHOD path".
type managementServer struct {
	mu       sync.Mutex
	ct       *cma.ContentType
	calls    []string
	versions []string
}

func (m *managementServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, r.Method+" "+r.URL.Path)

	w.Header().Set("Content-Type", "application/vnd.contentful.management.v1+json")
	itemPath := flowTypesPath + "/" + ContentTypeID

	switch {
	case r.Method == http.MethodGet && r.URL.Path == flowTypesPath:
		items := []cma.ContentType{}
		if m.ct != nil {
			items = append(items, *m.ct)
		}
		json.NewEncoder(w).Encode(map[string]any{"total": len(items), "skip": 0, "limit": 100, "items": items}) //nolint:errcheck

	case r.Method == http.MethodPut && r.URL.Path == itemPath:
		var body cma.ContentType
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body.Sys = cma.Sys{ID: ContentTypeID, Type: "ContentType", Version: 1}
		m.ct = &body
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(body) //nolint:errcheck

	case r.Method == http.MethodGet && r.URL.Path == itemPath && m.ct != nil:
		json.NewEncoder(w).Encode(m.ct) //nolint:errcheck

	case r.Method == http.MethodPut && r.URL.Path == itemPath+"/published" && m.ct != nil:
		m.versions = append(m.versions, r.Header.Get("X-Contentful-Version"))
		m.ct.Sys.PublishedVersion = m.ct.Sys.Version
		m.ct.Sys.Version++
		m.ct.Sys.PublishedAt = "2026-10-18T09:30:00Z"
		json.NewEncoder(w).Encode(m.ct) //nolint:errcheck

	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"sys":{"type":"Error","id":"NotFound"},"message":"The resource could not be found."}`)) //nolint:errcheck
	}
}

func (m *managementServer) recorded() (calls, versions []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...), append([]string(nil), m.versions...)
}

func newFlowBootstrapper(t *testing.T, srv *httptest.Server) *Bootstrapper {
	t.Helper()
	t.Cleanup(func() {
		srv.Close()
		if tr, ok := http.DefaultTransport.(*http.Transport); ok {
			tr.CloseIdleConnections()
		}
	})

	client := cma.NewClient(config.ManagementConfig{
		BaseURL:     srv.URL,
		Environment: "master",
		Token:       "CFPAT-test",
		Timeout:     5 * time.Second,
	}, breaker.New("schema-flow-"+t.Name()))
	return NewBootstrapper(client, "space-1")
}

func TestInitialize_AgainstManagementClient(t *testing.T) {
	t.Parallel()

	mgmt := &managementServer{}
	b := newFlowBootstrapper(t, httptest.NewServer(mgmt))

	run, err := b.Initialize(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, run.Outcome())

	ct, err := run.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, ContentTypeID, ct.Sys.ID)
	assert.Equal(t, cma.StatusPublished, ct.Status())
	assert.Equal(t, 2, ct.Sys.Version)
	require.Len(t, ct.Fields, 1)
	assert.Equal(t, "dictionary", ct.Fields[0].ID)
	assert.Equal(t, cma.FieldTypeObject, ct.Fields[0].Type)
	assert.True(t, ct.Fields[0].Required)

	calls, versions := mgmt.recorded()
	assert.Equal(t, []string{
		"GET " + flowTypesPath,
		"PUT " + flowTypesPath + "/Translation",
		"GET " + flowTypesPath + "/Translation",
		"PUT " + flowTypesPath + "/Translation/published",
	}, calls)
	assert.Equal(t, []string{"1"}, versions)

	// A second run finds the published type and changes nothing.
	again, err := b.Initialize(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, OutcomeExisting, again.Outcome())

	calls, _ = mgmt.recorded()
	assert.Len(t, calls, 5)
}

func TestExists_AgainstManagementClient_UnknownSpace(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"sys":{"type":"Error","id":"NotFound"},"message":"The resource could not be found."}`)) //nolint:errcheck
	}))
	b := newFlowBootstrapper(t, srv)

	found, err := b.Exists(waitCtx(t))
	require.Error(t, err)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, cma.ErrNotFound)
}
