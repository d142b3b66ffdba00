package commissionapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rategrid/internal/core/matrix"
	perr "rategrid/internal/platform/errors"
	"rategrid/internal/services/api/commissions/domain"

	"github.com/shopspring/decimal"
)

func writeEnv(w http.ResponseWriter, status int, code perr.ErrorCode, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status_code": status,
		"code":        code,
		"error":       msg,
		"data":        data,
	})
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Options{BaseURL: srv.URL + "/", Token: "tok", RetryBase: time.Millisecond})
	c.sleep = func(time.Duration) {}
	return c
}

func TestList_DecodesEnvelopeAndSendsAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/commissions/list" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth = %q", got)
		}
		var in domain.ListInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.ProductID != "p1" {
			t.Errorf("product = %q", in.ProductID)
		}
		writeEnv(w, 200, 0, "", []domain.Commission{
			{ID: "a", ProductID: "p1", PremiumTerm: "10yr", Role: 3, Year: 1, Rate: decimal.RequireFromString("7.25")},
		})
	})

	recs, err := c.List(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].Role != matrix.RoleAdvisor || !recs[0].Rate.Equal(decimal.RequireFromString("7.25")) {
		t.Fatalf("records = %+v", recs)
	}
}

func TestList_RetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeEnv(w, 200, 0, "", []domain.Commission{})
	})
	if _, err := c.List(context.Background(), "p1"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("hits = %d", hits.Load())
	}
}

func TestList_GivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.List(context.Background(), "p1")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if hits.Load() != int32(defaultMaxRetry+1) {
		t.Fatalf("hits = %d", hits.Load())
	}
}

func TestWrites_NeverRetried(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusGatewayTimeout)
	})
	_, err := c.Create(context.Background(), matrix.NewRecord{ProductID: "p1", PremiumTerm: "10yr", Role: 3, Year: 1})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) || hits.Load() != 1 {
		t.Fatalf("err=%v hits=%d", err, hits.Load())
	}
}

func TestErrors_KeepRemoteCode(t *testing.T) {
	cases := []struct {
		name   string
		status int
		code   perr.ErrorCode
		want   perr.ErrorCode
	}{
		{"coded not found", 404, perr.ErrorCodeNotFound, perr.ErrorCodeNotFound},
		{"coded invalid", 422, perr.ErrorCodeInvalidArgument, perr.ErrorCodeInvalidArgument},
		{"uncoded conflict", 409, 0, perr.ErrorCodeConflict},
		{"uncoded teapot", 418, 0, perr.ErrorCodeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeEnv(w, tc.status, tc.code, "nope", nil)
			})
			err := c.Delete(context.Background(), "x")
			if perr.CodeOf(err) != tc.want {
				t.Fatalf("code = %v want %v (%v)", perr.CodeOf(err), tc.want, err)
			}
		})
	}
}

func TestUpdate_SendsDecimalRate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in domain.UpdateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		if in.ID != "a" || !in.Rate.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("payload = %+v", in)
		}
		writeEnv(w, 200, 0, "", domain.Commission{ID: "a", Role: 6, Year: 2, Rate: in.Rate})
	})
	rec, err := c.Update(context.Background(), "a", decimal.RequireFromString("12.5"))
	if err != nil || rec.Role != matrix.RoleSeniorPartner {
		t.Fatalf("rec=%+v err=%v", rec, err)
	}
}
