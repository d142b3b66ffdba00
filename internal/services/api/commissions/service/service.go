// Package service contains commission and matrix session workflows
package service

import (
	"context"
	"sync"
	"time"

	"rategrid/internal/core/matrix"
	"rategrid/internal/core/termlabel"
	perr "rategrid/internal/platform/errors"
	"rategrid/internal/platform/logger"
	ptime "rategrid/internal/platform/time"
	"rategrid/internal/services/api/commissions/domain"
	"rategrid/internal/services/api/commissions/repo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultBulkConcurrency = 8
	defaultSessionTTL      = 2 * time.Hour
	defaultHistoryLimit    = 50
)

// Service defines the service contract for commissions
type Service interface{ domain.ServicePort }

// Options tunes session behaviour
type Options struct {
	// BulkConcurrency caps in-flight creates of one bulk commit
	BulkConcurrency int
	// SessionTTL evicts sessions idle for longer than this
	SessionTTL time.Duration
}

// Svc implements the Service interface
type Svc struct {
	store domain.Store
	audit domain.AuditPort
	opt   Options

	mu       sync.Mutex
	sessions map[string]*Session

	now   func() time.Time
	newID func() string
}

// New creates a new commissions service
// a nil audit port falls back to logging events
func New(st domain.Store, audit domain.AuditPort, opt Options) *Svc {
	if st == nil {
		panic("commissions.Service requires a non nil Store")
	}
	if audit == nil {
		audit = repo.LogAudit{}
	}
	if opt.BulkConcurrency <= 0 {
		opt.BulkConcurrency = defaultBulkConcurrency
	}
	if opt.SessionTTL <= 0 {
		opt.SessionTTL = defaultSessionTTL
	}
	return &Svc{
		store:    st,
		audit:    audit,
		opt:      opt,
		sessions: map[string]*Session{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func toCommission(r matrix.Record) domain.Commission {
	return domain.Commission{
		ID:          r.ID,
		ProductID:   r.ProductID,
		PremiumTerm: r.PremiumTerm,
		Role:        int(r.Role),
		RoleName:    r.Role.String(),
		Year:        r.Year,
		Rate:        r.Rate,
	}
}

// List returns every commission record of a product
func (s *Svc) List(ctx context.Context, in domain.ListInput) ([]domain.Commission, error) {
	recs, err := s.store.List(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Commission, 0, len(recs))
	for _, r := range recs {
		out = append(out, toCommission(r))
	}
	return out, nil
}

// Create persists one commission record
func (s *Svc) Create(ctx context.Context, in domain.CreateInput) (domain.Commission, error) {
	nr := matrix.NewRecord{
		ProductID:   in.ProductID,
		PremiumTerm: termlabel.Clean(in.PremiumTerm),
		Role:        matrix.Role(in.Role),
		Year:        in.Year,
		Rate:        in.Rate,
	}
	if err := checkNew(nr); err != nil {
		return domain.Commission{}, err
	}
	rec, err := s.store.Create(ctx, nr)
	if err != nil {
		return domain.Commission{}, err
	}
	return toCommission(rec), nil
}

// Update replaces the rate of one record
func (s *Svc) Update(ctx context.Context, in domain.UpdateInput) (domain.Commission, error) {
	if err := matrix.CheckRate(in.Rate); err != nil {
		return domain.Commission{}, err
	}
	rec, err := s.store.Update(ctx, in.ID, in.Rate)
	if err != nil {
		return domain.Commission{}, err
	}
	return toCommission(rec), nil
}

// Delete removes one record
func (s *Svc) Delete(ctx context.Context, in domain.DeleteInput) error {
	return s.store.Delete(ctx, in.ID)
}

// History lists recent audit events of a product, newest first
func (s *Svc) History(ctx context.Context, in domain.HistoryInput) ([]domain.AuditEvent, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	evs, err := s.audit.Recent(ctx, in.ProductID, limit)
	if err != nil {
		return nil, err
	}
	if evs == nil {
		evs = []domain.AuditEvent{}
	}
	return evs, nil
}

// Open creates a session for productID and loads its records
func (s *Svc) Open(ctx context.Context, productID string) (*Session, error) {
	sess := newSession(s.newID(), productID, s.store, s.audit, s.opt.BulkConcurrency, s.now)
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	logger.C(ctx).Info().Str("session_id", sess.ID).Str("product_id", productID).Int("open_sessions", n).
		Msg("matrix session opened")
	return sess, nil
}

// Session returns an open session by id
func (s *Svc) Session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, perr.WithField(perr.NotFoundf("session %q not found", id), "session_id")
	}
	return sess, nil
}

// OpenSession opens a session and returns its first view
func (s *Svc) OpenSession(ctx context.Context, in domain.OpenSessionInput) (domain.MatrixView, error) {
	sess, err := s.Open(ctx, in.ProductID)
	if err != nil {
		return domain.MatrixView{}, err
	}
	return renderView(sess), nil
}

// View renders the current state of a session
func (s *Svc) View(_ context.Context, in domain.SessionInput) (domain.MatrixView, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.MatrixView{}, err
	}
	return renderView(sess), nil
}

// Refresh refetches a session's records, keeping pending edits
func (s *Svc) Refresh(ctx context.Context, in domain.SessionInput) (domain.MatrixView, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.MatrixView{}, err
	}
	if err := sess.Refresh(ctx); err != nil {
		return domain.MatrixView{}, err
	}
	return renderView(sess), nil
}

// CloseSession forgets a session and its pending edits
func (s *Svc) CloseSession(ctx context.Context, in domain.SessionInput) error {
	s.mu.Lock()
	_, ok := s.sessions[in.SessionID]
	delete(s.sessions, in.SessionID)
	s.mu.Unlock()
	if !ok {
		return perr.WithField(perr.NotFoundf("session %q not found", in.SessionID), "session_id")
	}
	logger.C(ctx).Info().Str("session_id", in.SessionID).Msg("matrix session closed")
	return nil
}

// BeginEdit switches a session into edit mode
func (s *Svc) BeginEdit(_ context.Context, in domain.SessionInput) (domain.MatrixView, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.MatrixView{}, err
	}
	if err := sess.BeginEdit(); err != nil {
		return domain.MatrixView{}, err
	}
	return renderView(sess), nil
}

// Cancel drops pending edits and leaves edit mode
func (s *Svc) Cancel(_ context.Context, in domain.SessionInput) (domain.MatrixView, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.MatrixView{}, err
	}
	sess.Cancel()
	return renderView(sess), nil
}

// SetCell writes one rate into the edit buffer
func (s *Svc) SetCell(_ context.Context, in domain.SetCellInput) (domain.MatrixView, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.MatrixView{}, err
	}
	if err := sess.SetCell(in.PremiumTerm, in.Year, matrix.Role(in.Role), in.Rate); err != nil {
		return domain.MatrixView{}, err
	}
	return renderView(sess), nil
}

// AddYear stages the next free year of a premium term
func (s *Svc) AddYear(_ context.Context, in domain.TermInput) (domain.YearAdded, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.YearAdded{}, err
	}
	y, err := sess.AddYear(in.PremiumTerm)
	if err != nil {
		return domain.YearAdded{}, err
	}
	return domain.YearAdded{Year: y, View: renderView(sess)}, nil
}

// RemoveYear deletes one (term, year) cell
func (s *Svc) RemoveYear(ctx context.Context, in domain.YearInput) (domain.CascadeOutput, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.CascadeOutput{}, err
	}
	sum, err := sess.RemoveYear(ctx, in.PremiumTerm, in.Year)
	if err != nil && !sum.Refreshed && sum.Deleted+sum.Failed == 0 {
		return domain.CascadeOutput{}, err
	}
	return domain.CascadeOutput{Summary: sum, View: renderView(sess)}, err
}

// RemoveTerm deletes a whole premium term
func (s *Svc) RemoveTerm(ctx context.Context, in domain.TermInput) (domain.CascadeOutput, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.CascadeOutput{}, err
	}
	sum, err := sess.RemoveTerm(ctx, in.PremiumTerm)
	if err != nil && !sum.Refreshed && sum.Deleted+sum.Failed == 0 {
		return domain.CascadeOutput{}, err
	}
	return domain.CascadeOutput{Summary: sum, View: renderView(sess)}, err
}

// Save reconciles the session's pending changes
func (s *Svc) Save(ctx context.Context, in domain.SessionInput) (domain.SaveOutput, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.SaveOutput{}, err
	}
	sum, err := sess.Save(ctx)
	if err != nil && perr.IsCode(err, perr.ErrorCodeConflict) {
		return domain.SaveOutput{}, err
	}
	return domain.SaveOutput{Summary: sum, View: renderView(sess)}, err
}

// StartDraft opens a bulk draft for a premium term
func (s *Svc) StartDraft(_ context.Context, in domain.TermInput) (domain.DraftView, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.DraftView{}, err
	}
	if err := sess.StartDraft(in.PremiumTerm); err != nil {
		return domain.DraftView{}, err
	}
	return renderDraft(sess)
}

// DraftView renders the open draft
func (s *Svc) DraftView(_ context.Context, in domain.SessionInput) (domain.DraftView, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.DraftView{}, err
	}
	return renderDraft(sess)
}

func (s *Svc) editDraft(id string, fn func(d *matrix.Draft) error) (domain.DraftView, error) {
	sess, err := s.Session(id)
	if err != nil {
		return domain.DraftView{}, err
	}
	if err := sess.WithDraft(fn); err != nil {
		return domain.DraftView{}, err
	}
	return renderDraft(sess)
}

// AddSection appends a year section to the draft
func (s *Svc) AddSection(_ context.Context, in domain.SessionInput) (domain.DraftView, error) {
	return s.editDraft(in.SessionID, func(d *matrix.Draft) error {
		_, err := d.AddSection()
		return err
	})
}

// RemoveSection drops a year section from the draft
func (s *Svc) RemoveSection(_ context.Context, in domain.DraftYearInput) (domain.DraftView, error) {
	return s.editDraft(in.SessionID, func(d *matrix.Draft) error { return d.RemoveSection(in.Year) })
}

// RenumberSection moves a draft section to another year
func (s *Svc) RenumberSection(_ context.Context, in domain.RenumberInput) (domain.DraftView, error) {
	return s.editDraft(in.SessionID, func(d *matrix.Draft) error { return d.Renumber(in.From, in.To) })
}

// CopyRates clones one section's rates onto another
func (s *Svc) CopyRates(_ context.Context, in domain.CopyRatesInput) (domain.DraftView, error) {
	return s.editDraft(in.SessionID, func(d *matrix.Draft) error { return d.CopyRates(in.Source, in.Target) })
}

// SetDraftRate writes one rate inside a draft section
func (s *Svc) SetDraftRate(_ context.Context, in domain.DraftRateInput) (domain.DraftView, error) {
	return s.editDraft(in.SessionID, func(d *matrix.Draft) error {
		return d.SetRate(in.Year, matrix.Role(in.Role), in.Rate)
	})
}

// DiscardDraft drops the open draft
func (s *Svc) DiscardDraft(_ context.Context, in domain.SessionInput) error {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return err
	}
	sess.DiscardDraft()
	return nil
}

// CommitDraft creates every draft cell in parallel
// without an include_zero answer a draft holding zero rates is rejected untouched
func (s *Svc) CommitDraft(ctx context.Context, in domain.CommitInput) (domain.CommitOutput, error) {
	sess, err := s.Session(in.SessionID)
	if err != nil {
		return domain.CommitOutput{}, err
	}
	prompt := func(_ context.Context, zero int) (bool, error) {
		if in.IncludeZero == nil {
			return false, perr.WithField(
				perr.Conflictf("draft holds %d zero-rate cells; set include_zero to keep or omit them", zero),
				"include_zero")
		}
		return *in.IncludeZero, nil
	}
	sum, err := sess.CommitDraft(ctx, prompt)
	if err != nil && sum.Requested == 0 && !sum.Refreshed {
		return domain.CommitOutput{}, err
	}
	return domain.CommitOutput{Summary: sum, View: renderView(sess)}, err
}

// Sweep closes sessions idle for longer than the configured ttl and returns how many were closed
func (s *Svc) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.idle(now, s.opt.SessionTTL) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run evicts idle sessions until ctx is done
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("commissions-janitor")
	every := min(s.opt.SessionTTL/4, time.Minute)
	if every <= 0 {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if n := s.Sweep(s.now()); n > 0 {
				log.Info().Int("evicted", n).Msg("idle matrix sessions closed")
			}
		}
	}
}

//
// rendering
//

func rateCells(rates map[matrix.Role]decimal.Decimal, ids map[matrix.Role]string, pending []matrix.Role) []domain.RateCell {
	out := make([]domain.RateCell, 0, len(matrix.Roles))
	for _, r := range matrix.Roles {
		c := domain.RateCell{Role: int(r), RoleName: r.String(), RecordID: ids[r]}
		if v, ok := rates[r]; ok {
			c.Rate = &v
		}
		for _, p := range pending {
			if p == r {
				c.Pending = true
				break
			}
		}
		out = append(out, c)
	}
	return out
}

func draftView(sn snapshot) domain.DraftView {
	dv := domain.DraftView{PremiumTerm: sn.term, ZeroCells: sn.zero, Sections: make([]domain.DraftSection, 0, len(sn.sections))}
	for _, sec := range sn.sections {
		dv.Sections = append(dv.Sections, domain.DraftSection{Year: sec.Year, Rates: rateCells(sec.Rates, nil, nil)})
	}
	return dv
}

func renderDraft(sess *Session) (domain.DraftView, error) {
	sn := sess.snapshot()
	if !sn.hasDraft {
		return domain.DraftView{}, perr.NotFoundf("session %s has no bulk draft", sess.ID)
	}
	return draftView(sn), nil
}

func renderView(sess *Session) domain.MatrixView {
	sn := sess.snapshot()
	mv := domain.MatrixView{
		SessionID: sess.ID,
		ProductID: sess.ProductID,
		Editing:   sn.editing,
		Saving:    sn.saving,
		Pending:   sn.view.Pending,
		LoadedAt:  ptime.Ptr(sn.loadedAt),
		Terms:     make([]domain.TermBlock, 0, len(sn.view.Terms)),
	}
	for _, tv := range sn.view.Terms {
		tb := domain.TermBlock{PremiumTerm: tv.Term, Phantom: tv.Phantom, Years: make([]domain.YearRow, 0, len(tv.Years))}
		for _, vc := range tv.Years {
			tb.Years = append(tb.Years, domain.YearRow{
				Year:  vc.Year,
				State: vc.State.String(),
				Rates: rateCells(vc.Rates, vc.IDs, vc.Pending),
			})
		}
		mv.Terms = append(mv.Terms, tb)
	}
	if sn.hasDraft {
		dv := draftView(sn)
		mv.Draft = &dv
	}
	return mv
}
