// Package http provides http transport for commissions and matrix sessions
package http

import (
	stdhttp "net/http"

	"rategrid/internal/modkit/httpkit"
	"rategrid/internal/services/api/commissions/domain"
)

// Register mounts commissions endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.ListInput](r, "/list", h.list)
	httpkit.PostJSON[domain.CreateInput](r, "/create", h.create)
	httpkit.PostJSON[domain.UpdateInput](r, "/update", h.update)
	httpkit.PostJSON[domain.DeleteInput](r, "/delete", h.delete)
	httpkit.PostJSON[domain.HistoryInput](r, "/history", h.history)

	r.Route("/sessions", func(sr httpkit.Router) {
		httpkit.PostJSON[domain.OpenSessionInput](sr, "/open", h.open)
		httpkit.PostJSON[domain.SessionInput](sr, "/view", h.view)
		httpkit.PostJSON[domain.SessionInput](sr, "/refresh", h.refresh)
		httpkit.PostJSON[domain.SessionInput](sr, "/close", h.close)

		httpkit.PostJSON[domain.SessionInput](sr, "/edit/begin", h.beginEdit)
		httpkit.PostJSON[domain.SessionInput](sr, "/edit/cancel", h.cancel)
		httpkit.PostJSON[domain.SetCellInput](sr, "/cell/set", h.setCell)
		httpkit.PostJSON[domain.TermInput](sr, "/year/add", h.addYear)
		httpkit.PostJSON[domain.YearInput](sr, "/year/remove", h.removeYear)
		httpkit.PostJSON[domain.TermInput](sr, "/term/remove", h.removeTerm)
		httpkit.PostJSON[domain.SessionInput](sr, "/save", h.save)

		httpkit.PostJSON[domain.TermInput](sr, "/draft/start", h.startDraft)
		httpkit.PostJSON[domain.SessionInput](sr, "/draft/view", h.draftView)
		httpkit.PostJSON[domain.SessionInput](sr, "/draft/section/add", h.addSection)
		httpkit.PostJSON[domain.DraftYearInput](sr, "/draft/section/remove", h.removeSection)
		httpkit.PostJSON[domain.RenumberInput](sr, "/draft/section/renumber", h.renumberSection)
		httpkit.PostJSON[domain.CopyRatesInput](sr, "/draft/section/copy", h.copyRates)
		httpkit.PostJSON[domain.DraftRateInput](sr, "/draft/rate/set", h.setDraftRate)
		httpkit.PostJSON[domain.SessionInput](sr, "/draft/discard", h.discardDraft)
		httpkit.PostJSON[domain.CommitInput](sr, "/draft/commit", h.commitDraft)
	})
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /commissions/list Commissions commissionsList
// @Summary List commission records of a product
// @Tags Commissions
// @Accept json
// @Produce json
// @Param payload body domain.ListInput true "Product"
// @Success 200 {array} domain.Commission "ok"
// @Router /commissions/list [post]
func (h *handlers) list(r *stdhttp.Request, in domain.ListInput) (any, error) {
	return h.svc.List(r.Context(), in)
}

// @Summary Create a commission record
// @Tags Commissions
// @Accept json
// @Produce json
// @Param payload body domain.CreateInput true "Record"
// @Success 201 {object} domain.Commission "created"
// @Router /commissions/create [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	out, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// @Summary Replace the rate of a commission record
// @Tags Commissions
// @Accept json
// @Produce json
// @Param payload body domain.UpdateInput true "Rate"
// @Success 200 {object} domain.Commission "ok"
// @Router /commissions/update [post]
func (h *handlers) update(r *stdhttp.Request, in domain.UpdateInput) (any, error) {
	return h.svc.Update(r.Context(), in)
}

// @Summary Delete a commission record
// @Tags Commissions
// @Accept json
// @Param payload body domain.DeleteInput true "Record id"
// @Success 204 "deleted"
// @Router /commissions/delete [post]
func (h *handlers) delete(r *stdhttp.Request, in domain.DeleteInput) (any, error) {
	if err := h.svc.Delete(r.Context(), in); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Recent save, commit and delete summaries of a product
// @Tags Commissions
// @Accept json
// @Produce json
// @Param payload body domain.HistoryInput true "Product"
// @Success 200 {array} domain.AuditEvent "ok"
// @Router /commissions/history [post]
func (h *handlers) history(r *stdhttp.Request, in domain.HistoryInput) (any, error) {
	return h.svc.History(r.Context(), in)
}

// @Summary Open a matrix edit session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body domain.OpenSessionInput true "Product"
// @Success 201 {object} domain.MatrixView "opened"
// @Router /commissions/sessions/open [post]
func (h *handlers) open(r *stdhttp.Request, in domain.OpenSessionInput) (any, error) {
	out, err := h.svc.OpenSession(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// @Summary Render the matrix of a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body domain.SessionInput true "Session"
// @Success 200 {object} domain.MatrixView "ok"
// @Router /commissions/sessions/view [post]
func (h *handlers) view(r *stdhttp.Request, in domain.SessionInput) (any, error) {
	return h.svc.View(r.Context(), in)
}

// @Summary Refetch records and replay pending edits
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body domain.SessionInput true "Session"
// @Success 200 {object} domain.MatrixView "ok"
// @Router /commissions/sessions/refresh [post]
func (h *handlers) refresh(r *stdhttp.Request, in domain.SessionInput) (any, error) {
	return h.svc.Refresh(r.Context(), in)
}

// @Summary Close a session, dropping pending edits
// @Tags Sessions
// @Accept json
// @Param payload body domain.SessionInput true "Session"
// @Success 204 "closed"
// @Router /commissions/sessions/close [post]
func (h *handlers) close(r *stdhttp.Request, in domain.SessionInput) (any, error) {
	if err := h.svc.CloseSession(r.Context(), in); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Enter edit mode
// @Tags Sessions
// @Router /commissions/sessions/edit/begin [post]
func (h *handlers) beginEdit(r *stdhttp.Request, in domain.SessionInput) (any, error) {
	return h.svc.BeginEdit(r.Context(), in)
}

// @Summary Discard pending edits and leave edit mode
// @Tags Sessions
// @Router /commissions/sessions/edit/cancel [post]
func (h *handlers) cancel(r *stdhttp.Request, in domain.SessionInput) (any, error) {
	return h.svc.Cancel(r.Context(), in)
}

// @Summary Write one rate into the edit buffer
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body domain.SetCellInput true "Cell"
// @Success 200 {object} domain.MatrixView "ok"
// @Router /commissions/sessions/cell/set [post]
func (h *handlers) setCell(r *stdhttp.Request, in domain.SetCellInput) (any, error) {
	return h.svc.SetCell(r.Context(), in)
}

// @Summary Add the next free year to a premium term
// @Tags Sessions
// @Success 200 {object} domain.YearAdded "ok"
// @Router /commissions/sessions/year/add [post]
func (h *handlers) addYear(r *stdhttp.Request, in domain.TermInput) (any, error) {
	return h.svc.AddYear(r.Context(), in)
}

// @Summary Delete a year of a premium term
// @Tags Sessions
// @Success 200 {object} domain.CascadeOutput "ok"
// @Router /commissions/sessions/year/remove [post]
func (h *handlers) removeYear(r *stdhttp.Request, in domain.YearInput) (any, error) {
	return h.svc.RemoveYear(r.Context(), in)
}

// @Summary Delete a whole premium term
// @Tags Sessions
// @Success 200 {object} domain.CascadeOutput "ok"
// @Router /commissions/sessions/term/remove [post]
func (h *handlers) removeTerm(r *stdhttp.Request, in domain.TermInput) (any, error) {
	return h.svc.RemoveTerm(r.Context(), in)
}

// swagger:route POST /commissions/sessions/save Sessions sessionsSave
// @Summary Reconcile pending edits against the store
// @Description Requests run one at a time. Per-item failures are reported in the summary; the ledger is cleared either way.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body domain.SessionInput true "Session"
// @Success 200 {object} domain.SaveOutput "ok"
// @Failure 409 {object} httpkit.Envelope "save in progress"
// @Router /commissions/sessions/save [post]
func (h *handlers) save(r *stdhttp.Request, in domain.SessionInput) (any, error) {
	return h.svc.Save(r.Context(), in)
}

// @Summary Start a bulk entry draft for a premium term
// @Tags Drafts
// @Success 200 {object} domain.DraftView "ok"
// @Router /commissions/sessions/draft/start [post]
func (h *handlers) startDraft(r *stdhttp.Request, in domain.TermInput) (any, error) {
	return h.svc.StartDraft(r.Context(), in)
}

// @Summary Render the bulk entry draft
// @Tags Drafts
// @Router /commissions/sessions/draft/view [post]
func (h *handlers) draftView(r *stdhttp.Request, in domain.SessionInput) (any, error) {
	return h.svc.DraftView(r.Context(), in)
}

// @Summary Append a year section
// @Tags Drafts
// @Router /commissions/sessions/draft/section/add [post]
func (h *handlers) addSection(r *stdhttp.Request, in domain.SessionInput) (any, error) {
	return h.svc.AddSection(r.Context(), in)
}

// @Summary Remove a year section
// @Tags Drafts
// @Router /commissions/sessions/draft/section/remove [post]
func (h *handlers) removeSection(r *stdhttp.Request, in domain.DraftYearInput) (any, error) {
	return h.svc.RemoveSection(r.Context(), in)
}

// @Summary Move a section to another year
// @Tags Drafts
// @Router /commissions/sessions/draft/section/renumber [post]
func (h *handlers) renumberSection(r *stdhttp.Request, in domain.RenumberInput) (any, error) {
	return h.svc.RenumberSection(r.Context(), in)
}

// @Summary Copy the rates of one section onto another
// @Tags Drafts
// @Router /commissions/sessions/draft/section/copy [post]
func (h *handlers) copyRates(r *stdhttp.Request, in domain.CopyRatesInput) (any, error) {
	return h.svc.CopyRates(r.Context(), in)
}

// @Summary Write one rate inside a section
// @Tags Drafts
// @Router /commissions/sessions/draft/rate/set [post]
func (h *handlers) setDraftRate(r *stdhttp.Request, in domain.DraftRateInput) (any, error) {
	return h.svc.SetDraftRate(r.Context(), in)
}

// @Summary Drop the bulk entry draft
// @Tags Drafts
// @Success 204 "discarded"
// @Router /commissions/sessions/draft/discard [post]
func (h *handlers) discardDraft(r *stdhttp.Request, in domain.SessionInput) (any, error) {
	if err := h.svc.DiscardDraft(r.Context(), in); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route POST /commissions/sessions/draft/commit Drafts draftsCommit
// @Summary Create every draft cell in parallel
// @Description When the draft holds zero rates, include_zero decides whether they are sent. Omitting it returns 409.
// @Tags Drafts
// @Accept json
// @Produce json
// @Param payload body domain.CommitInput true "Commit"
// @Success 200 {object} domain.CommitOutput "ok"
// @Failure 409 {object} httpkit.Envelope "zero-rate decision required"
// @Router /commissions/sessions/draft/commit [post]
func (h *handlers) commitDraft(r *stdhttp.Request, in domain.CommitInput) (any, error) {
	return h.svc.CommitDraft(r.Context(), in)
}
