package domain

import "context"

// ServicePort defines the service contract for commissions and matrix sessions
type ServicePort interface {
	List(ctx context.Context, in ListInput) ([]Commission, error)
	Create(ctx context.Context, in CreateInput) (Commission, error)
	Update(ctx context.Context, in UpdateInput) (Commission, error)
	Delete(ctx context.Context, in DeleteInput) error
	History(ctx context.Context, in HistoryInput) ([]AuditEvent, error)

	OpenSession(ctx context.Context, in OpenSessionInput) (MatrixView, error)
	View(ctx context.Context, in SessionInput) (MatrixView, error)
	Refresh(ctx context.Context, in SessionInput) (MatrixView, error)
	CloseSession(ctx context.Context, in SessionInput) error

	BeginEdit(ctx context.Context, in SessionInput) (MatrixView, error)
	Cancel(ctx context.Context, in SessionInput) (MatrixView, error)
	SetCell(ctx context.Context, in SetCellInput) (MatrixView, error)
	AddYear(ctx context.Context, in TermInput) (YearAdded, error)
	RemoveYear(ctx context.Context, in YearInput) (CascadeOutput, error)
	RemoveTerm(ctx context.Context, in TermInput) (CascadeOutput, error)
	Save(ctx context.Context, in SessionInput) (SaveOutput, error)

	StartDraft(ctx context.Context, in TermInput) (DraftView, error)
	DraftView(ctx context.Context, in SessionInput) (DraftView, error)
	AddSection(ctx context.Context, in SessionInput) (DraftView, error)
	RemoveSection(ctx context.Context, in DraftYearInput) (DraftView, error)
	RenumberSection(ctx context.Context, in RenumberInput) (DraftView, error)
	CopyRates(ctx context.Context, in CopyRatesInput) (DraftView, error)
	SetDraftRate(ctx context.Context, in DraftRateInput) (DraftView, error)
	DiscardDraft(ctx context.Context, in SessionInput) error
	CommitDraft(ctx context.Context, in CommitInput) (CommitOutput, error)
}

// JanitorPort evicts idle edit sessions until ctx is done
type JanitorPort interface {
	Run(ctx context.Context) error
}

// SchemaPort creates the tables the module writes to
type SchemaPort interface {
	EnsureSchema(ctx context.Context) error
}
