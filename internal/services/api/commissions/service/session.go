package service

import (
	"context"
	"sync"
	"time"

	"rategrid/internal/core/matrix"
	"rategrid/internal/core/termlabel"
	perr "rategrid/internal/platform/errors"
	"rategrid/internal/platform/logger"
	pnet "rategrid/internal/platform/net"
	"rategrid/internal/services/api/commissions/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Session owns the sheet and bulk draft of one product matrix
// methods are safe for concurrent use; the lock is never held across store calls
type Session struct {
	ID        string
	ProductID string

	store     domain.Store
	audit     domain.AuditPort
	bulkLimit int
	now       func() time.Time

	mu    sync.Mutex
	sheet *matrix.Sheet
	draft *matrix.Draft

	editing  bool
	// saving is set while a save, bulk commit or delete cascade talks to the store
	saving   bool
	touched  time.Time
	loadedAt time.Time // last successful fetch
}

func newSession(id, productID string, st domain.Store, audit domain.AuditPort, bulkLimit int, now func() time.Time) *Session {
	if bulkLimit <= 0 {
		bulkLimit = defaultBulkConcurrency
	}
	return &Session{
		ID:        id,
		ProductID: productID,
		store:     st,
		audit:     audit,
		bulkLimit: bulkLimit,
		now:       now,
		sheet:     matrix.NewSheet(),
		touched:   now(),
	}
}

func (s *Session) log(ctx context.Context) zerolog.Logger {
	return logger.C(ctx).With().
		Str("component", "commissions").
		Str("session_id", s.ID).
		Str("product_id", s.ProductID).
		Logger()
}

// fetchErr keeps coded errors and marks everything else as unavailable
func fetchErr(err error, productID string) error {
	if perr.CodeOf(err) != perr.ErrorCodeUnknown {
		return err
	}
	return perr.Wrapf(err, perr.ErrorCodeUnavailable, "refetch commissions for %s", productID)
}

func (s *Session) logLoad(ctx context.Context, st matrix.LoadStats) {
	log := s.log(ctx)
	for _, r := range st.Dropped {
		log.Warn().Str("record_id", r.ID).Str("premium_term", r.PremiumTerm).Int("year", r.Year).
			Msg("dropped commission with out of range year")
	}
	for _, r := range st.Duplicates {
		log.Warn().Str("record_id", r.ID).Str("premium_term", r.PremiumTerm).Int("year", r.Year).
			Str("role", r.Role.String()).Msg("duplicate commission for slot")
	}
	log.Debug().Int("loaded", st.Loaded).Msg("matrix loaded")
}

// Load fetches the product records and rebuilds the buffer, discarding pending edits and leaving edit mode
func (s *Session) Load(ctx context.Context) error {
	recs, err := s.store.List(ctx, s.ProductID)
	if err != nil {
		return fetchErr(err, s.ProductID)
	}
	s.mu.Lock()
	st := s.sheet.Reset(recs)
	s.loadedAt = s.now()
	s.editing = false
	s.touched = s.now()
	s.mu.Unlock()
	s.logLoad(ctx, st)
	return nil
}

// Refresh refetches the records and replays pending edits on top
func (s *Session) Refresh(ctx context.Context) error {
	recs, err := s.store.List(ctx, s.ProductID)
	if err != nil {
		return fetchErr(err, s.ProductID)
	}
	s.mu.Lock()
	st := s.sheet.Rebase(recs)
	s.loadedAt = s.now()
	s.touched = s.now()
	s.mu.Unlock()
	s.logLoad(ctx, st)
	return nil
}

// BeginEdit enters edit mode
func (s *Session) BeginEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	if s.saving {
		return perr.Conflictf("save in progress")
	}
	s.editing = true
	return nil
}

// Cancel discards pending edits, rebuilds the buffer from the last fetched snapshot and leaves edit mode
// requests of an in-flight save are not aborted
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	s.sheet.Revert()
	s.editing = false
}

// mutable reports whether buffer edits are allowed; caller holds mu
func (s *Session) mutable() error {
	if s.saving {
		return perr.Conflictf("save in progress")
	}
	if !s.editing {
		return perr.Conflictf("session %s is not in edit mode", s.ID)
	}
	return nil
}

// SetCell writes one rate and stages the change
func (s *Session) SetCell(term string, year int, role matrix.Role, rate decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	if err := s.mutable(); err != nil {
		return err
	}
	return s.sheet.SetCell(term, year, role, rate)
}

// AddYear stages the next free year of term and returns it
func (s *Session) AddYear(term string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	if err := s.mutable(); err != nil {
		return 0, err
	}
	return s.sheet.AddYear(term)
}

// Get returns the buffered role->rate map for a cell
func (s *Session) Get(term string, year int) map[matrix.Role]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.Get(term, year)
}

// Pending returns the number of staged changes
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.Ledger().Len()
}

// Editing reports whether the session is in edit mode
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// begin claims the store for one batch; caller holds mu
func (s *Session) begin() error {
	if s.saving {
		return perr.Conflictf("save in progress")
	}
	s.saving = true
	return nil
}

func failure(op matrix.Op, err error) domain.ItemFailure {
	return domain.ItemFailure{
		Op:          op.Kind.String(),
		RecordID:    op.ID,
		PremiumTerm: op.Slot.Term,
		Year:        op.Slot.Year,
		Role:        int(op.Slot.Role),
		Error:       err.Error(),
	}
}

// Save reconciles the pending changes against the store
// requests run one at a time in (term, year, role) order; afterwards the buffer is rebuilt from a fresh
// fetch, the ledger is cleared and edit mode ends whatever the per-item outcome
func (s *Session) Save(ctx context.Context) (domain.SaveSummary, error) {
	s.mu.Lock()
	s.touched = s.now()
	if s.saving {
		s.mu.Unlock()
		return domain.SaveSummary{}, perr.Conflictf("save already in progress")
	}
	ops := s.sheet.PlanSave()
	if len(ops) == 0 {
		s.sheet.Revert()
		s.editing = false
		s.mu.Unlock()
		return domain.SaveSummary{}, nil
	}
	s.saving = true
	s.mu.Unlock()

	log := s.log(ctx)
	var sum domain.SaveSummary
	for _, op := range ops {
		var err error
		switch op.Kind {
		case matrix.OpUpdate:
			_, err = s.store.Update(ctx, op.ID, op.Rate)
		default:
			_, err = s.store.Create(ctx, op.NewRecord(s.ProductID))
		}
		if err != nil {
			sum.Failed++
			sum.Failures = append(sum.Failures, failure(op, err))
			log.Warn().Err(err).Str("op", op.Kind.String()).Str("premium_term", op.Slot.Term).
				Int("year", op.Slot.Year).Str("role", op.Slot.Role.String()).Msg("commission save item failed")
			continue
		}
		sum.Succeeded++
	}

	recs, ferr := s.store.List(ctx, s.ProductID)

	s.mu.Lock()
	if ferr == nil {
		s.sheet.Reset(recs)
		s.loadedAt = s.now()
		sum.Refreshed = true
	} else {
		s.sheet.Revert()
	}
	s.editing = false
	s.saving = false
	s.mu.Unlock()

	log.Info().Int("succeeded", sum.Succeeded).Int("failed", sum.Failed).Bool("refreshed", sum.Refreshed).
		Msg("commission save finished")
	s.record(ctx, domain.AuditEvent{Action: domain.ActionSave, Succeeded: sum.Succeeded, Failed: sum.Failed, Refreshed: sum.Refreshed})

	if ferr != nil {
		return sum, fetchErr(ferr, s.ProductID)
	}
	return sum, nil
}

// RemoveYear deletes every persisted record of (term, year), then purges the cell and its pending changes
// a failed delete neither stops the cascade nor the purge
func (s *Session) RemoveYear(ctx context.Context, term string, year int) (domain.CascadeSummary, error) {
	if err := matrix.CheckYear(year); err != nil {
		return domain.CascadeSummary{}, err
	}
	s.mu.Lock()
	s.touched = s.now()
	ops := s.sheet.PlanRemoveYear(term, year)
	if len(ops) == 0 {
		defer s.mu.Unlock()
		if s.saving {
			return domain.CascadeSummary{}, perr.Conflictf("save in progress")
		}
		s.sheet.PurgeCell(term, year)
		return domain.CascadeSummary{LocalOnly: true}, nil
	}
	if err := s.begin(); err != nil {
		s.mu.Unlock()
		return domain.CascadeSummary{}, err
	}
	s.sheet.MarkDeletePending(term, year)
	s.mu.Unlock()

	sum, ferr := s.cascade(ctx, ops, func() { s.sheet.PurgeCell(term, year) })
	s.record(ctx, domain.AuditEvent{Action: domain.ActionRemoveYear, PremiumTerm: term, Year: year,
		Succeeded: sum.Deleted, Failed: sum.Failed, Refreshed: sum.Refreshed})
	return sum, ferr
}

// RemoveTerm drops a premium term
// a phantom term is purged locally without any store call; otherwise every persisted record of the term
// is deleted before the local purge
func (s *Session) RemoveTerm(ctx context.Context, term string) (domain.CascadeSummary, error) {
	s.mu.Lock()
	s.touched = s.now()
	if s.saving {
		s.mu.Unlock()
		return domain.CascadeSummary{}, perr.Conflictf("save in progress")
	}
	if s.sheet.IsPhantom(term) {
		s.sheet.PurgeTerm(term)
		s.mu.Unlock()
		return domain.CascadeSummary{LocalOnly: true}, nil
	}
	ops := s.sheet.PlanRemoveTerm(term)
	s.saving = true
	s.sheet.MarkTermDeletePending(term)
	s.mu.Unlock()

	sum, ferr := s.cascade(ctx, ops, func() { s.sheet.PurgeTerm(term) })
	s.record(ctx, domain.AuditEvent{Action: domain.ActionRemoveTerm, PremiumTerm: term,
		Succeeded: sum.Deleted, Failed: sum.Failed, Refreshed: sum.Refreshed})
	return sum, ferr
}

// cascade runs deletes sequentially, then purges and rebases on a fresh fetch
// without a fetch the deleted records are dropped from the snapshot so their slots read as free
func (s *Session) cascade(ctx context.Context, ops []matrix.Op, purge func()) (domain.CascadeSummary, error) {
	log := s.log(ctx)
	var sum domain.CascadeSummary
	var deleted []string
	for _, op := range ops {
		if err := s.store.Delete(ctx, op.ID); err != nil {
			sum.Failed++
			sum.Failures = append(sum.Failures, failure(op, err))
			log.Warn().Err(err).Str("record_id", op.ID).Str("premium_term", op.Slot.Term).
				Int("year", op.Slot.Year).Msg("commission delete failed")
			continue
		}
		deleted = append(deleted, op.ID)
		sum.Deleted++
	}

	recs, ferr := s.store.List(ctx, s.ProductID)

	s.mu.Lock()
	purge()
	if ferr == nil {
		s.sheet.Rebase(recs)
		s.loadedAt = s.now()
		sum.Refreshed = true
	} else {
		s.sheet.Forget(deleted)
	}
	s.saving = false
	s.mu.Unlock()

	log.Info().Int("deleted", sum.Deleted).Int("failed", sum.Failed).Msg("commission delete cascade finished")
	if ferr != nil {
		return sum, fetchErr(ferr, s.ProductID)
	}
	return sum, nil
}

func (s *Session) record(ctx context.Context, ev domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	ev.At = s.now()
	ev.SessionID = s.ID
	ev.ProductID = s.ProductID
	ev.Actor = pnet.Principal(ctx)
	if err := s.audit.Record(ctx, ev); err != nil {
		l := s.log(ctx)
		l.Warn().Err(err).Str("action", ev.Action).Msg("audit record failed")
	}
}

//
// bulk entry draft
//

// StartDraft opens a new bulk draft for term, replacing any open draft
func (s *Session) StartDraft(term string) error {
	d := matrix.NewDraft(termlabel.Clean(term))
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	s.draft = d
	return nil
}

// UseDraft installs a prebuilt draft
func (s *Session) UseDraft(d *matrix.Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	s.draft = d
	return nil
}

// DiscardDraft drops the open draft
func (s *Session) DiscardDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	s.draft = nil
}

// WithDraft runs fn against the open draft under the session lock
func (s *Session) WithDraft(fn func(d *matrix.Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	if s.draft == nil {
		return perr.NotFoundf("session %s has no bulk draft", s.ID)
	}
	return fn(s.draft)
}

// CommitDraft expands the draft into creates and issues them in parallel, bounded by the bulk limit
// prompt is asked once when the draft holds zero-rate cells; the committed draft is dropped afterwards,
// a draft started while the creates ran is kept
func (s *Session) CommitDraft(ctx context.Context, prompt domain.ZeroPrompt) (domain.CommitSummary, error) {
	s.mu.Lock()
	s.touched = s.now()
	if s.saving {
		s.mu.Unlock()
		return domain.CommitSummary{}, perr.Conflictf("save in progress")
	}
	d := s.draft
	if d == nil {
		s.mu.Unlock()
		return domain.CommitSummary{}, perr.NotFoundf("session %s has no bulk draft", s.ID)
	}
	if err := d.Validate(); err != nil {
		s.mu.Unlock()
		return domain.CommitSummary{}, err
	}
	zero := d.ZeroCount()
	s.mu.Unlock()

	include := true
	if zero > 0 {
		if prompt == nil {
			return domain.CommitSummary{}, perr.InvalidArgf("draft holds %d zero-rate cells and no zero-rate decision was given", zero)
		}
		ok, err := prompt(ctx, zero)
		if err != nil {
			return domain.CommitSummary{}, err
		}
		include = ok
	}

	s.mu.Lock()
	if s.draft != d {
		s.mu.Unlock()
		return domain.CommitSummary{}, perr.Conflictf("bulk draft changed during commit")
	}
	if err := s.begin(); err != nil {
		s.mu.Unlock()
		return domain.CommitSummary{}, err
	}
	recs := d.Expand(s.ProductID, include)
	s.mu.Unlock()

	sum := domain.CommitSummary{
		PremiumTerm:  d.Term,
		Requested:    len(recs),
		ZeroCells:    zero,
		IncludedZero: zero > 0 && include,
	}

	errs := make([]error, len(recs))
	var g errgroup.Group
	g.SetLimit(s.bulkLimit)
	for i, nr := range recs {
		g.Go(func() error {
			_, errs[i] = s.store.Create(ctx, nr)
			return nil
		})
	}
	_ = g.Wait()

	log := s.log(ctx)
	for i, err := range errs {
		if err == nil {
			sum.Succeeded++
			continue
		}
		nr := recs[i]
		sum.Failed++
		sum.Failures = append(sum.Failures, domain.ItemFailure{
			Op:          matrix.OpCreate.String(),
			PremiumTerm: nr.PremiumTerm,
			Year:        nr.Year,
			Role:        int(nr.Role),
			Error:       err.Error(),
		})
		log.Warn().Err(err).Str("premium_term", nr.PremiumTerm).Int("year", nr.Year).
			Str("role", nr.Role.String()).Msg("bulk create failed")
	}

	var ferr error
	var fresh []matrix.Record
	if len(recs) > 0 {
		fresh, ferr = s.store.List(ctx, s.ProductID)
	}

	s.mu.Lock()
	if len(recs) > 0 && ferr == nil {
		s.sheet.Rebase(fresh)
		s.loadedAt = s.now()
		sum.Refreshed = true
	}
	if s.draft == d {
		s.draft = nil
	}
	s.saving = false
	s.mu.Unlock()

	log.Info().Str("premium_term", d.Term).Int("requested", sum.Requested).Int("succeeded", sum.Succeeded).
		Int("failed", sum.Failed).Bool("included_zero", sum.IncludedZero).Msg("bulk commit finished")
	s.record(ctx, domain.AuditEvent{Action: domain.ActionCommit, PremiumTerm: d.Term,
		Succeeded: sum.Succeeded, Failed: sum.Failed, Refreshed: sum.Refreshed})

	if ferr != nil {
		return sum, fetchErr(ferr, s.ProductID)
	}
	return sum, nil
}

// idle reports whether the session was untouched for longer than ttl and is not talking to the store
func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.saving && now.Sub(s.touched) > ttl
}

// snapshot is a consistent read of the session taken under one lock
type snapshot struct {
	view     matrix.View
	editing  bool
	saving   bool
	loadedAt time.Time
	hasDraft bool
	term     string
	sections []matrix.Section
	zero     int
}

func (s *Session) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn := snapshot{view: s.sheet.View(), editing: s.editing, saving: s.saving, loadedAt: s.loadedAt}
	if s.draft != nil {
		sn.hasDraft = true
		sn.term = s.draft.Term
		sn.sections = s.draft.Sections()
		sn.zero = s.draft.ZeroCount()
	}
	return sn
}
