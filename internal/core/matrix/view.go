package matrix

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ViewCell is one rendered (term, year) row
type ViewCell struct {
	Year    int
	State   CellState
	Rates   map[Role]decimal.Decimal
	IDs     map[Role]string
	Pending []Role
}

// TermView groups the rows of one premium term
type TermView struct {
	Term    string
	Phantom bool
	Years   []ViewCell
}

// View is a read-only projection of a sheet for display
type View struct {
	Terms   []TermView
	Pending int
}

// View projects the buffer: terms in locale-neutral collation order, years ascending
func (s *Sheet) View() View {
	terms := s.buf.Terms()
	collate.New(language.Und).SortStrings(terms)

	v := View{Terms: make([]TermView, 0, len(terms)), Pending: s.ledger.Len()}
	for _, term := range terms {
		years := s.buf.Years(term)
		sort.Ints(years)
		tv := TermView{Term: term, Phantom: s.IsPhantom(term), Years: make([]ViewCell, 0, len(years))}
		for _, y := range years {
			k := CellKey{Term: term, Year: y}
			c, _ := s.buf.Cell(k)
			vc := ViewCell{
				Year:  y,
				State: c.State,
				Rates: cloneRates(c.Rates),
				IDs:   make(map[Role]string, len(c.IDs)),
			}
			for r, id := range c.IDs {
				vc.IDs[r] = id
			}
			for _, r := range Roles {
				if _, ok := s.ledger.Get(k.Slot(r)); ok {
					vc.Pending = append(vc.Pending, r)
				}
			}
			tv.Years = append(tv.Years, vc)
		}
		v.Terms = append(v.Terms, tv)
	}
	return v
}
