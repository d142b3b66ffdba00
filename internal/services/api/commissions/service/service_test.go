package service

import (
	"context"
	"testing"
	"time"

	"rategrid/internal/core/matrix"
	perr "rategrid/internal/platform/errors"
	"rategrid/internal/platform/testkit"
	"rategrid/internal/services/api/commissions/domain"
)

func TestNew_PanicsOnNilStore(t *testing.T) {
	testkit.MustPanic(t, func() { New(nil, nil, Options{}) })
}

func TestNew_Defaults(t *testing.T) {
	s := New(newSpy(), nil, Options{})
	if s.opt.BulkConcurrency != defaultBulkConcurrency || s.opt.SessionTTL != defaultSessionTTL {
		t.Fatalf("opts = %+v", s.opt)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newSpy(rec("r1", "10yr", 1, matrix.RoleAdvisor, "5"))
	s := New(st, &memAudit{}, Options{})

	mv, err := s.OpenSession(ctx, domain.OpenSessionInput{ProductID: "p1"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(mv.Terms) != 1 || mv.Terms[0].Years[0].Rates[0].Rate == nil || mv.LoadedAt == nil {
		t.Fatalf("view = %+v", mv)
	}
	id := domain.SessionInput{SessionID: mv.SessionID}

	if _, err := s.SetCell(ctx, domain.SetCellInput{SessionID: mv.SessionID, PremiumTerm: "10yr", Year: 1, Role: 3, Rate: d("6")}); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("set outside edit mode err = %v", err)
	}
	if _, err := s.BeginEdit(ctx, id); err != nil {
		t.Fatalf("begin: %v", err)
	}
	mv, err = s.SetCell(ctx, domain.SetCellInput{SessionID: mv.SessionID, PremiumTerm: "10yr", Year: 1, Role: 3, Rate: d("6")})
	if err != nil || mv.Pending != 1 || !mv.Terms[0].Years[0].Rates[0].Pending {
		t.Fatalf("set view=%+v err=%v", mv, err)
	}
	out, err := s.Save(ctx, id)
	if err != nil || out.Summary.Succeeded != 1 || out.View.Editing {
		t.Fatalf("save out=%+v err=%v", out, err)
	}
	evs, err := s.History(ctx, domain.HistoryInput{ProductID: "p1"})
	if err != nil || len(evs) != 1 {
		t.Fatalf("history = %+v, %v", evs, err)
	}
	if err := s.CloseSession(ctx, id); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.View(ctx, id); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("view after close err = %v", err)
	}
}

func TestCommitDraft_RequiresZeroDecision(t *testing.T) {
	ctx := context.Background()
	st := newSpy()
	s := New(st, nil, Options{})
	mv, _ := s.OpenSession(ctx, domain.OpenSessionInput{ProductID: "p1"})

	dv, err := s.StartDraft(ctx, domain.TermInput{SessionID: mv.SessionID, PremiumTerm: "10yr"})
	if err != nil || dv.ZeroCells != 4 {
		t.Fatalf("draft=%+v err=%v", dv, err)
	}
	if _, err := s.SetDraftRate(ctx, domain.DraftRateInput{SessionID: mv.SessionID, Year: 1, Role: 3, Rate: d("4")}); err != nil {
		t.Fatalf("set rate: %v", err)
	}

	_, err = s.CommitDraft(ctx, domain.CommitInput{SessionID: mv.SessionID})
	if !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("err = %v want conflict", err)
	}
	if st.creates.Load() != 0 {
		t.Fatalf("creates = %d", st.creates.Load())
	}

	omit := false
	out, err := s.CommitDraft(ctx, domain.CommitInput{SessionID: mv.SessionID, IncludeZero: &omit})
	if err != nil || out.Summary.Succeeded != 1 || out.Summary.ZeroCells != 3 {
		t.Fatalf("out=%+v err=%v", out, err)
	}
	if out.View.Draft != nil {
		t.Fatalf("draft kept after commit")
	}
}

func TestDraftOps(t *testing.T) {
	ctx := context.Background()
	s := New(newSpy(), nil, Options{})
	mv, _ := s.OpenSession(ctx, domain.OpenSessionInput{ProductID: "p1"})
	sid := mv.SessionID

	if _, err := s.AddSection(ctx, domain.SessionInput{SessionID: sid}); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("add without draft err = %v", err)
	}
	_, _ = s.StartDraft(ctx, domain.TermInput{SessionID: sid, PremiumTerm: "10yr"})
	_, _ = s.SetDraftRate(ctx, domain.DraftRateInput{SessionID: sid, Year: 1, Role: 6, Rate: d("9")})
	dv, err := s.AddSection(ctx, domain.SessionInput{SessionID: sid})
	if err != nil || len(dv.Sections) != 2 {
		t.Fatalf("add = %+v, %v", dv, err)
	}
	dv, err = s.RenumberSection(ctx, domain.RenumberInput{SessionID: sid, From: 2, To: 5})
	if err != nil || dv.Sections[1].Year != 5 {
		t.Fatalf("renumber = %+v, %v", dv, err)
	}
	dv, err = s.CopyRates(ctx, domain.CopyRatesInput{SessionID: sid, Source: 1, Target: 5})
	if err != nil || !dv.Sections[1].Rates[3].Rate.Equal(d("9")) {
		t.Fatalf("copy = %+v, %v", dv, err)
	}
	dv, err = s.RemoveSection(ctx, domain.DraftYearInput{SessionID: sid, Year: 1})
	if err != nil || len(dv.Sections) != 1 {
		t.Fatalf("remove = %+v, %v", dv, err)
	}
	if err := s.DiscardDraft(ctx, domain.SessionInput{SessionID: sid}); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := s.DraftView(ctx, domain.SessionInput{SessionID: sid}); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("view after discard err = %v", err)
	}
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	st := newSpy()
	s := New(st, nil, Options{})

	c, err := s.Create(ctx, domain.CreateInput{ProductID: "p1", PremiumTerm: "10yr", Role: 4, Year: 2, Rate: d("1.5")})
	if err != nil || c.RoleName != matrix.RoleLeader1.String() {
		t.Fatalf("create = %+v, %v", c, err)
	}
	if _, err := s.Create(ctx, domain.CreateInput{ProductID: "p1", PremiumTerm: " ", Role: 4, Year: 2, Rate: d("1")}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("blank term err = %v", err)
	}
	if _, err := s.Update(ctx, domain.UpdateInput{ID: c.ID, Rate: d("2")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ := s.List(ctx, domain.ListInput{ProductID: "p1"})
	if len(list) != 1 || !list[0].Rate.Equal(d("2")) {
		t.Fatalf("list = %+v", list)
	}
	if err := s.Delete(ctx, domain.DeleteInput{ID: c.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, domain.DeleteInput{ID: c.ID}); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestSweep_EvictsIdle(t *testing.T) {
	ctx := context.Background()
	s := New(newSpy(), nil, Options{SessionTTL: time.Minute})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	mv, _ := s.OpenSession(ctx, domain.OpenSessionInput{ProductID: "p1"})
	if n := s.Sweep(base.Add(30 * time.Second)); n != 0 {
		t.Fatalf("evicted fresh session")
	}
	if n := s.Sweep(base.Add(2 * time.Minute)); n != 1 {
		t.Fatalf("evicted = %d", n)
	}
	if _, err := s.Session(mv.SessionID); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(newSpy(), nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != context.Canceled {
		t.Fatalf("err = %v", err)
	}
}

func TestNewTermLabelsAreCleaned(t *testing.T) {
	ctx := context.Background()
	s := New(newSpy(), nil, Options{})

	c, err := s.Create(ctx, domain.CreateInput{ProductID: "p1", PremiumTerm: "  Whole\u200b   Life ", Role: 3, Year: 1, Rate: d("2")})
	if err != nil || c.PremiumTerm != "Whole Life" {
		t.Fatalf("create = %+v, %v", c, err)
	}

	mv, _ := s.OpenSession(ctx, domain.OpenSessionInput{ProductID: "p1"})
	dv, err := s.StartDraft(ctx, domain.TermInput{SessionID: mv.SessionID, PremiumTerm: "\uff11\uff10yr"})
	if err != nil || dv.PremiumTerm != "10yr" {
		t.Fatalf("draft = %+v, %v", dv, err)
	}
}
