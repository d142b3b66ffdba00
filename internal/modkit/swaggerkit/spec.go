package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"rategrid/internal/platform/config"
	perr "rategrid/internal/platform/errors"
)

// SpecMutator edits the parsed document before it is served
type SpecMutator func(map[string]any)

var (
	mu       sync.Mutex
	mutators []SpecMutator
)

// Register adds m to every served document; modules call it from init
func Register(m SpecMutator) {
	if m == nil {
		return
	}
	mu.Lock()
	mutators = append(mutators, m)
	mu.Unlock()
}

// doc is a parsed openapi document
type doc map[string]any

// obj walks keys from the root and creates missing objects on the way
func (d doc) obj(keys ...string) map[string]any {
	cur := map[string]any(d)
	for _, k := range keys {
		next, ok := cur[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[k] = next
		}
		cur = next
	}
	return cur
}

// operations calls fn for every method object under paths
func (d doc) operations(fn func(path, method string, op map[string]any)) {
	paths, _ := d["paths"].(map[string]any)
	for path, node := range paths {
		methods, _ := node.(map[string]any)
		for method, op := range methods {
			if o, ok := op.(map[string]any); ok {
				fn(path, method, o)
			}
		}
	}
}

// Build parses raw as served at /api/v1 and applies the error defaults and every registered mutator
// CORE_API_DOCS_TITLE_SUFFIX is appended to the title when set
func Build(raw string, cfg config.Conf) (map[string]any, error) {
	var d doc
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, err
	}

	// the bundled ui renders 3.0 only
	delete(d, "swagger")
	if v, _ := d["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		d["openapi"] = "3.0.3"
	}
	if _, ok := d["servers"]; !ok {
		d["servers"] = []any{map[string]any{"url": "/api/v1"}}
	}
	if suffix := cfg.MayString("DOCS_TITLE_SUFFIX", ""); suffix != "" {
		if info, ok := d["info"].(map[string]any); ok {
			if title, ok := info["title"].(string); ok {
				info["title"] = title + " " + suffix
			}
		}
	}

	schemas := d.obj("components", "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = errorSchema
	}
	d.operations(func(_, _ string, op map[string]any) {
		responses := doc(op).obj("responses")
		for status, ex := range defaultResponses {
			if key := strconv.Itoa(status); responses[key] == nil {
				responses[key] = errorResponse(status, ex)
			}
		}
	})

	mu.Lock()
	ms := append([]SpecMutator(nil), mutators...)
	mu.Unlock()
	for _, m := range ms {
		m(d)
	}
	return d, nil
}

func serveDocJSON() http.HandlerFunc {
	cfg := config.New().Prefix("CORE_API_")
	return func(w http.ResponseWriter, _ *http.Request) {
		spec, err := Build(docReader(), cfg)
		if err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// errorSchema mirrors the error envelope the api writes
var errorSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"status_code": map[string]any{"type": "integer"},
		"status":      map[string]any{"type": "string"},
		"code":        map[string]any{"type": "integer"},
		"error":       map[string]any{"type": "string"},
		"field":       map[string]any{"type": "string"},
		"request_id":  map[string]any{"type": "string"},
	},
	"required": []any{"status_code", "status"},
}

type example struct {
	code  perr.ErrorCode
	msg   string
	field string
}

// defaultResponses are added to every operation that does not declare the status itself
var defaultResponses = map[int]example{
	http.StatusBadRequest:          {perr.ErrorCodeValidation, "year must be between 1 and 10", "year"},
	http.StatusConflict:            {perr.ErrorCodeConflict, "session is not in edit mode", ""},
	http.StatusInternalServerError: {perr.ErrorCodePanic, "panic recovered", ""},
}

func errorResponse(status int, ex example) map[string]any {
	body := map[string]any{
		"status_code": status,
		"status":      http.StatusText(status),
		"code":        int(ex.code),
		"error":       ex.msg,
	}
	if ex.field != "" {
		body["field"] = ex.field
	}
	return map[string]any{
		"description": http.StatusText(status),
		"content": map[string]any{
			"application/json": map[string]any{
				"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": body,
			},
		},
	}
}
