package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aretw0/waypoint"
	httpadapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/registry"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyWizard(t *testing.T) *waypoint.Wizard {
	t.Helper()
	wiz, err := waypoint.New(&domain.Definition{
		Name:    "apply",
		BaseURL: "/apply",
		Steps: []domain.StepConfig{
			{Route: "/start", EntryPoint: true, Next: domain.To("age")},
			// Prereqs lets the user come back to /age once the journey has started.
			{Route: "/age", Prereqs: []string{"start"}, Fields: []string{"age"}, Editable: true, Next: domain.When(
				domain.Condition{Field: domain.Single("age"), Op: ">=", Value: 18, Next: domain.To("adult"), ContinueOnEdit: true},
				domain.Condition{Always: true, Next: domain.To("guardian")},
			)},
			{Route: "/adult", Editable: true, Next: domain.To("confirm")},
			{Route: "/guardian", Next: domain.To("confirm")},
			{Route: "/confirm", Prereqs: []string{"adult", "guardian"}},
		},
	})
	require.NoError(t, err)
	return wiz
}

type testClient struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newTestClient(t *testing.T, opts ...httpadapter.Option) *testClient {
	t.Helper()
	sessions := session.NewManager(memory.NewStore())
	server := httptest.NewServer(httpadapter.NewHandler(applyWizard(t), sessions, opts...))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:      t,
		server: server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) get(path string) *http.Response {
	resp, err := c.client.Get(c.server.URL + path)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (c *testClient) post(path string, form url.Values) *http.Response {
	resp, err := c.client.PostForm(c.server.URL+path, form)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func requireRedirect(t *testing.T, resp *http.Response, status int, location string) {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get("Location"))
}

func TestServer_Journey(t *testing.T) {
	c := newTestClient(t)

	// A fresh browser cannot deep link and is sent to the entry point.
	requireRedirect(t, c.get("/apply/age"), http.StatusFound, "/apply/start")

	resp := c.get("/apply/start")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	requireRedirect(t, c.post("/apply/start", nil), http.StatusSeeOther, "/apply/age")
	requireRedirect(t, c.post("/apply/age", url.Values{"age": {"30"}}), http.StatusSeeOther, "/apply/adult")

	// Jumping to the other branch is redirected back.
	requireRedirect(t, c.get("/apply/guardian"), http.StatusFound, "/apply/adult")

	resp = c.get("/apply/age")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		Step    string            `json:"step"`
		Values  map[string]any    `json:"values"`
		History domain.JourneyLog `json:"history"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "/apply/age", view.Step)
	assert.Equal(t, "30", view.Values["age"])
	assert.Equal(t, []string{"/apply/start", "/apply/age"}, view.History.Paths())
	assert.Equal(t, "/apply/adult", view.History[1].Next)
}

func TestServer_ChangingAnswerDropsForwardHistory(t *testing.T) {
	c := newTestClient(t)
	c.get("/apply/start")
	c.post("/apply/start", nil)
	c.post("/apply/age", url.Values{"age": {"30"}})
	requireRedirect(t, c.post("/apply/adult", nil), http.StatusSeeOther, "/apply/confirm")
	require.Equal(t, http.StatusOK, c.get("/apply/confirm").StatusCode)

	requireRedirect(t, c.post("/apply/age", url.Values{"age": {"12"}}), http.StatusSeeOther, "/apply/guardian")
	requireRedirect(t, c.get("/apply/confirm"), http.StatusFound, "/apply/guardian")
	requireRedirect(t, c.get("/apply/adult"), http.StatusFound, "/apply/guardian")
}

func TestServer_SubmitRedirectsToRecordedBranch(t *testing.T) {
	calls := 0
	reg := registry.NewRegistry()
	reg.RegisterBranch("alternate", func(*domain.Condition) string {
		calls++
		if calls%2 == 1 {
			return "left"
		}
		return "right"
	})
	wiz, err := waypoint.New(&domain.Definition{
		Name:    "fork",
		BaseURL: "/fork",
		Steps: []domain.StepConfig{
			{Route: "/start", EntryPoint: true, Next: domain.When(
				domain.Condition{Always: true, Next: domain.Next{FuncName: "alternate"}},
			)},
			{Route: "/left"},
			{Route: "/right"},
		},
	}, waypoint.WithRegistry(reg))
	require.NoError(t, err)

	server := httptest.NewServer(httpadapter.NewHandler(wiz, session.NewManager(memory.NewStore())))
	t.Cleanup(server.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &testClient{t: t, server: server, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}

	c.get("/fork/start")
	requireRedirect(t, c.post("/fork/start", nil), http.StatusSeeOther, "/fork/left")
	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusOK, c.get("/fork/left").StatusCode)
}

func TestServer_EditFlow(t *testing.T) {
	c := newTestClient(t)
	c.post("/apply/start", nil)
	c.post("/apply/age", url.Values{"age": {"12"}})
	c.post("/apply/guardian", nil)

	// Branch without continueOnEdit returns to the edit-back step.
	requireRedirect(t, c.post("/apply/age/edit", url.Values{"age": {"15"}}), http.StatusSeeOther, "/apply/confirm")

	// Branch with continueOnEdit carries on editing the next step.
	requireRedirect(t, c.post("/apply/age/edit", url.Values{"age": {"40"}}), http.StatusSeeOther, "/apply/adult/edit")
}

func TestServer_JSONSubmission(t *testing.T) {
	c := newTestClient(t)
	c.post("/apply/start", nil)

	req, err := http.NewRequest(http.MethodPost, c.server.URL+"/apply/age", strings.NewReader(`{"age": 21, "ignored": true}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	requireRedirect(t, resp, http.StatusSeeOther, "/apply/adult")
}

func TestServer_ValidationErrors(t *testing.T) {
	validator := func(step domain.StepConfig, values map[string]any) []*domain.ValidationError {
		if step.Route != "/age" {
			return nil
		}
		switch values["age"] {
		case "":
			return []*domain.ValidationError{{Key: "age", Type: "required"}}
		case "dead":
			return []*domain.ValidationError{{Key: "age", Type: "deceased", Redirect: "start"}}
		}
		return nil
	}
	c := newTestClient(t, httpadapter.WithValidator(validator))
	c.post("/apply/start", nil)

	requireRedirect(t, c.post("/apply/age", url.Values{"age": {""}}), http.StatusSeeOther, "/apply/age")
	requireRedirect(t, c.post("/apply/age", url.Values{"age": {"dead"}}), http.StatusSeeOther, "/apply/start")

	// Nothing was recorded for the rejected submissions.
	requireRedirect(t, c.get("/apply/adult"), http.StatusFound, "/apply/age")
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	ids := []string{"first", "second"}
	c := newTestClient(t, httpadapter.WithSessionIDs(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	c.post("/apply/start", nil)
	require.Equal(t, http.StatusOK, c.get("/apply/age").StatusCode)

	other, err := cookiejar.New(nil)
	require.NoError(t, err)
	c.client.Jar = other
	requireRedirect(t, c.get("/apply/age"), http.StatusFound, "/apply/start")
}

func TestServer_UnknownRoute(t *testing.T) {
	c := newTestClient(t)
	assert.Equal(t, http.StatusNotFound, c.get("/apply/nowhere").StatusCode)
}
