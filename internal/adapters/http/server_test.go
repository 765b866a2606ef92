package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/aretw0/thicket/internal/adapters/http"
	"github.com/aretw0/thicket/internal/runtime"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/ports"
)

type apiResponse struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func newTestHandler(t *testing.T) nethttp.Handler {
	t.Helper()
	store := memory.NewStore()
	engine := runtime.NewEngine(ports.Stores{Trees: store, Configs: store, History: store})
	return httpadapter.NewHandler(engine)
}

// do runs one request against the handler and decodes the envelope.
func do(t *testing.T, handler nethttp.Handler, method, path string, body any) (int, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), "body: %s", rr.Body.String())
	return rr.Code, resp
}

func createProject(t *testing.T, handler nethttp.Handler) string {
	t.Helper()
	code, resp := do(t, handler, "POST", "/projects", map[string]string{"title": "demo"})
	require.Equal(t, nethttp.StatusOK, code)

	var project struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &project))
	return project.ID
}

func createTree(t *testing.T, handler nethttp.Handler, projectID, title string) string {
	t.Helper()
	code, resp := do(t, handler, "POST", "/projects/"+projectID+"/trees", map[string]string{"title": title})
	require.Equal(t, nethttp.StatusOK, code)

	var tree struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &tree))
	return tree.ID
}

func TestGetHealth(t *testing.T) {
	handler := newTestHandler(t)
	code, resp := do(t, handler, "GET", "/health", nil)
	assert.Equal(t, nethttp.StatusOK, code)
	assert.True(t, resp.OK)
}

func TestGetProject_NotFound(t *testing.T) {
	handler := newTestHandler(t)
	code, resp := do(t, handler, "GET", "/projects/nope", nil)
	assert.Equal(t, nethttp.StatusNotFound, code)
	assert.False(t, resp.OK)
}

func TestTreeLifecycle(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler)
	treeID := createTree(t, handler, projectID, "Threats")

	treePath := fmt.Sprintf("/projects/%s/trees/%s", projectID, treeID)

	update := map[string]any{
		"title":      "Threats v1",
		"rootNodeId": "root",
		"nodes": []map[string]any{
			{"id": "root", "title": "Root", "children": []string{}},
		},
	}
	code, resp := do(t, handler, "PUT", treePath, update)
	require.Equal(t, nethttp.StatusOK, code)
	require.True(t, resp.OK)

	code, resp = do(t, handler, "GET", treePath, nil)
	require.Equal(t, nethttp.StatusOK, code)

	var computed struct {
		Title string `json:"title"`
		Nodes []struct {
			ID                string `json:"id"`
			ConditionResolved bool   `json:"conditionResolved"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &computed))
	assert.Equal(t, "Threats v1", computed.Title)
	require.Len(t, computed.Nodes, 1)
	assert.True(t, computed.Nodes[0].ConditionResolved, "no condition means resolved")

	code, _ = do(t, handler, "DELETE", treePath, nil)
	assert.Equal(t, nethttp.StatusOK, code)

	code, _ = do(t, handler, "GET", treePath, nil)
	assert.Equal(t, nethttp.StatusNotFound, code)
}

func TestUndoTree(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler)
	treeID := createTree(t, handler, projectID, "Versioned")
	treePath := fmt.Sprintf("/projects/%s/trees/%s", projectID, treeID)

	// Undo needs something to fall back to.
	code, resp := do(t, handler, "PUT", treePath+"/undo", nil)
	assert.Equal(t, nethttp.StatusBadRequest, code)
	assert.False(t, resp.OK)

	for _, title := range []string{"First", "Second"} {
		code, _ = do(t, handler, "PUT", treePath, map[string]any{"title": title})
		require.Equal(t, nethttp.StatusOK, code)
	}

	code, resp = do(t, handler, "PUT", treePath+"/undo", nil)
	require.Equal(t, nethttp.StatusOK, code)

	var computed struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &computed))
	assert.Equal(t, "First", computed.Title)
}

func TestGetDagDown_WrapsRoot(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler)

	childID := createTree(t, handler, projectID, "Child")
	code, _ := do(t, handler, "PUT", fmt.Sprintf("/projects/%s/trees/%s", projectID, childID), map[string]any{
		"title":      "Child",
		"rootNodeId": "c1",
		"nodes":      []map[string]any{{"id": "c1", "title": "leaf"}},
	})
	require.Equal(t, nethttp.StatusOK, code)

	parentID := createTree(t, handler, projectID, "Parent")
	code, _ = do(t, handler, "PUT", fmt.Sprintf("/projects/%s/trees/%s", projectID, parentID), map[string]any{
		"title":      "Parent",
		"rootNodeId": "p1",
		"nodes":      []map[string]any{{"id": "p1", "title": "top", "children": []string{"c1"}}},
	})
	require.Equal(t, nethttp.StatusOK, code)

	code, resp := do(t, handler, "GET", fmt.Sprintf("/projects/%s/trees/%s/dag/down", projectID, parentID), nil)
	require.Equal(t, nethttp.StatusOK, code)

	var root struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Children []struct {
			ID string `json:"id"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &root))
	assert.Equal(t, parentID, root.ID)
	assert.Equal(t, "Parent", root.Title)
	require.Len(t, root.Children, 1)
	assert.Equal(t, childID, root.Children[0].ID)
}

func TestConditionedTreeAgainstSelectedConfig(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler)

	code, resp := do(t, handler, "POST", "/projects/"+projectID+"/configs", map[string]any{
		"name":       "prod",
		"attributes": map[string]any{"cloud": true},
	})
	require.Equal(t, nethttp.StatusOK, code)
	var cfg struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &cfg))

	code, _ = do(t, handler, "PUT", "/projects/"+projectID+"/config", map[string]string{"id": cfg.ID})
	require.Equal(t, nethttp.StatusOK, code)

	treeID := createTree(t, handler, projectID, "Cond")
	treePath := fmt.Sprintf("/projects/%s/trees/%s", projectID, treeID)
	code, _ = do(t, handler, "PUT", treePath, map[string]any{
		"title":      "Cond",
		"rootNodeId": "n1",
		"nodes": []map[string]any{
			{"id": "n1", "title": "on", "conditionAttribute": `config["cloud"] == true`},
			{"id": "n2", "title": "off", "conditionAttribute": `config["cloud"] == false`},
		},
	})
	require.Equal(t, nethttp.StatusOK, code)

	code, resp = do(t, handler, "GET", treePath, nil)
	require.Equal(t, nethttp.StatusOK, code)

	var computed struct {
		Nodes []struct {
			ID                string `json:"id"`
			ConditionResolved bool   `json:"conditionResolved"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &computed))
	resolved := map[string]bool{}
	for _, n := range computed.Nodes {
		resolved[n.ID] = n.ConditionResolved
	}
	assert.Equal(t, map[string]bool{"n1": true, "n2": false}, resolved)
}

func TestNodeOwnerLookup(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler)
	treeID := createTree(t, handler, projectID, "Owner")

	code, _ := do(t, handler, "PUT", fmt.Sprintf("/projects/%s/trees/%s", projectID, treeID), map[string]any{
		"title":      "Owner",
		"rootNodeId": "n1",
		"nodes":      []map[string]any{{"id": "n1", "title": "only"}},
	})
	require.Equal(t, nethttp.StatusOK, code)

	code, resp := do(t, handler, "GET", "/nodes/n1", nil)
	require.Equal(t, nethttp.StatusOK, code)

	var owner struct {
		TreeID string `json:"treeId"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &owner))
	assert.Equal(t, treeID, owner.TreeID)

	code, _ = do(t, handler, "GET", "/nodes/ghost", nil)
	assert.Equal(t, nethttp.StatusNotFound, code)
}

func TestTenantHeaderIsolation(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("POST", "/projects", bytes.NewBufferString(`{"title":"a"}`))
	req.Header.Set("X-Tenant", "team-a")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, nethttp.StatusOK, rr.Code)

	// Another tenant sees an empty project list.
	req = httptest.NewRequest("GET", "/projects", nil)
	req.Header.Set("X-Tenant", "team-b")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, nethttp.StatusOK, rr.Code)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	var projects []any
	require.NoError(t, json.Unmarshal(resp.Result, &projects))
	assert.Empty(t, projects)
}
