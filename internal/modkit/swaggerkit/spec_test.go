package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rategrid/internal/platform/config"
	perr "rategrid/internal/platform/errors"
	phttp "rategrid/internal/platform/net/http"
	kit "rategrid/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

const swagger2 = `{"swagger":"2.0","info":{"title":"rategrid API"},"paths":{"/commissions/list":{"post":{"responses":{"200":{"description":"OK"},"409":{"description":"mine"}}}}}}`

func TestBuild_Defaults(t *testing.T) {
	spec, err := Build(swagger2, config.New().Prefix("SWAGGERKIT_TEST_"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	if _, ok := spec["swagger"]; ok {
		t.Fatalf("swagger key should be removed")
	}
	servers, _ := spec["servers"].([]any)
	if len(servers) != 1 {
		t.Fatalf("servers = %v", spec["servers"])
	}
	op := spec["paths"].(map[string]any)["/commissions/list"].(map[string]any)["post"].(map[string]any)
	resps := op["responses"].(map[string]any)
	for _, code := range []string{"400", "500"} {
		if _, ok := resps[code]; !ok {
			t.Fatalf("missing default %s", code)
		}
	}
	if resps["409"].(map[string]any)["description"] != "mine" {
		t.Fatalf("declared response overwritten: %v", resps["409"])
	}
	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorResponse"]; !ok {
		t.Fatalf("ErrorResponse schema missing")
	}
	ex := resps["400"].(map[string]any)["content"].(map[string]any)["application/json"].(map[string]any)["example"].(map[string]any)
	if ex["field"] != "year" || ex["code"] != int(perr.ErrorCodeValidation) {
		t.Fatalf("400 example = %v", ex)
	}
}

func TestMount(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &docReader, func() string { return `{"openapi":"3.0.3","paths":{}}` })
	for _, enabled := range []bool{true, false} {
		m := chi.NewRouter()
		Mount(phttp.AdaptChi(m), enabled)
		rec := httptest.NewRecorder()
		m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
		if want := map[bool]int{true: http.StatusOK, false: http.StatusNotFound}[enabled]; rec.Code != want {
			t.Fatalf("enabled=%v code = %d", enabled, rec.Code)
		}
	}
}

func TestBuild_DowngradesAndTitleSuffix(t *testing.T) {
	t.Setenv("SWAGGERKIT_TEST_DOCS_TITLE_SUFFIX", "(dev)")
	spec, err := Build(`{"openapi":"3.1.0","info":{"title":"rategrid API"},"servers":[]}`, config.New().Prefix("SWAGGERKIT_TEST_"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	if got := spec["info"].(map[string]any)["title"]; got != "rategrid API (dev)" {
		t.Fatalf("title = %v", got)
	}
	if s, _ := spec["servers"].([]any); len(s) != 0 {
		t.Fatalf("existing servers replaced: %v", s)
	}
}

func TestBuild_AppliesMutators(t *testing.T) {
	kit.Swap(t, &mutators, []SpecMutator(nil))
	Register(nil)
	Register(func(spec map[string]any) { spec["x-test"] = true })
	spec, err := Build(`{}`, config.New())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if spec["x-test"] != true {
		t.Fatalf("mutator not applied")
	}
}

func TestBuild_BadJSON(t *testing.T) {
	if _, err := Build(`{`, config.New()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestServeDocJSON(t *testing.T) {
	kit.Swap(t, &docReader, func() string { return `{"openapi":"3.0.3","paths":{}}` })
	rec := httptest.NewRecorder()
	serveDocJSON()(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := spec["servers"]; !ok {
		t.Fatalf("servers missing")
	}

	kit.Swap(t, &docReader, func() string { return "nope" })
	rec = httptest.NewRecorder()
	serveDocJSON()(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMarkSecurePath(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &secured, map[string]bool{})
	MarkSecurePath("/commissions/list", "POST")

	spec := map[string]any{"paths": map[string]any{
		"/commissions/list":    map[string]any{"post": map[string]any{}},
		"/commissions/history": map[string]any{"post": map[string]any{}},
	}}
	applySecurity(spec)

	schemes := spec["components"].(map[string]any)["securitySchemes"].(map[string]any)
	if _, ok := schemes["bearerAuth"]; !ok {
		t.Fatalf("bearerAuth scheme missing")
	}
	paths := spec["paths"].(map[string]any)
	if _, ok := paths["/commissions/list"].(map[string]any)["post"].(map[string]any)["security"]; !ok {
		t.Fatalf("list should be secured")
	}
	if _, ok := paths["/commissions/history"].(map[string]any)["post"].(map[string]any)["security"]; ok {
		t.Fatalf("history should not be secured")
	}
}

func TestApplySecurity_NothingMarked(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &secured, map[string]bool{})
	spec := map[string]any{}
	applySecurity(spec)
	if _, ok := spec["components"]; ok {
		t.Fatalf("spec changed with nothing secured")
	}
}
