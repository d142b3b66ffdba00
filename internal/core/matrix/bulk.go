package matrix

import (
	"sort"
	"strings"

	perr "rategrid/internal/platform/errors"

	"github.com/shopspring/decimal"
)

// Section is one year of a bulk draft with a rate per role
type Section struct {
	Year  int
	Rates map[Role]decimal.Decimal
}

func zeroRates() map[Role]decimal.Decimal {
	m := make(map[Role]decimal.Decimal, len(Roles))
	for _, r := range Roles {
		m[r] = decimal.Zero
	}
	return m
}

func cloneRates(in map[Role]decimal.Decimal) map[Role]decimal.Decimal {
	out := make(map[Role]decimal.Decimal, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Draft seeds a brand-new premium term across many years at once
// sections are kept sorted by year and there is always at least one
type Draft struct {
	Term     string
	sections []Section
}

// NewDraft returns a draft for term holding year 1 with every role at 0
func NewDraft(term string) *Draft {
	return &Draft{Term: term, sections: []Section{{Year: MinYear, Rates: zeroRates()}}}
}

// Sections returns a deep copy of the draft sections in year order
func (d *Draft) Sections() []Section {
	out := make([]Section, len(d.sections))
	for i, s := range d.sections {
		out[i] = Section{Year: s.Year, Rates: cloneRates(s.Rates)}
	}
	return out
}

// Years returns the section years in ascending order
func (d *Draft) Years() []int {
	out := make([]int, len(d.sections))
	for i, s := range d.sections {
		out[i] = s.Year
	}
	return out
}

func (d *Draft) find(year int) int {
	for i, s := range d.sections {
		if s.Year == year {
			return i
		}
	}
	return -1
}

func (d *Draft) sort() {
	sort.Slice(d.sections, func(i, j int) bool { return d.sections[i].Year < d.sections[j].Year })
}

// AddSection appends the smallest year unused within this draft
func (d *Draft) AddSection() (int, error) {
	used := make(map[int]bool, len(d.sections))
	for _, s := range d.sections {
		used[s.Year] = true
	}
	year, ok := NextFreeYear(used)
	if !ok {
		return 0, perr.InvalidArgf("draft already holds %d years", MaxYear)
	}
	d.sections = append(d.sections, Section{Year: year, Rates: zeroRates()})
	d.sort()
	return year, nil
}

// RemoveSection drops a year; the last remaining section cannot be removed
func (d *Draft) RemoveSection(year int) error {
	i := d.find(year)
	if i < 0 {
		return perr.NotFoundf("draft has no year %d", year)
	}
	if len(d.sections) == 1 {
		return perr.InvalidArgf("draft needs at least one year")
	}
	d.sections = append(d.sections[:i], d.sections[i+1:]...)
	return nil
}

// Renumber moves a section to a new year and re-sorts
func (d *Draft) Renumber(oldYear, newYear int) error {
	i := d.find(oldYear)
	if i < 0 {
		return perr.NotFoundf("draft has no year %d", oldYear)
	}
	if err := CheckYear(newYear); err != nil {
		return err
	}
	if oldYear == newYear {
		return nil
	}
	if d.find(newYear) >= 0 {
		return perr.WithField(perr.Conflictf("draft already has year %d", newYear), "year")
	}
	d.sections[i].Year = newYear
	d.sort()
	return nil
}

// CopyRates replaces the rates of target with a verbatim copy of source
func (d *Draft) CopyRates(sourceYear, targetYear int) error {
	si, ti := d.find(sourceYear), d.find(targetYear)
	if si < 0 {
		return perr.NotFoundf("draft has no year %d", sourceYear)
	}
	if ti < 0 {
		return perr.NotFoundf("draft has no year %d", targetYear)
	}
	d.sections[ti].Rates = cloneRates(d.sections[si].Rates)
	return nil
}

// SetRate writes one role rate inside a section
func (d *Draft) SetRate(year int, role Role, rate decimal.Decimal) error {
	i := d.find(year)
	if i < 0 {
		return perr.NotFoundf("draft has no year %d", year)
	}
	if err := CheckRole(role); err != nil {
		return err
	}
	if err := CheckRate(rate); err != nil {
		return err
	}
	d.sections[i].Rates[role] = rate
	return nil
}

// ZeroCount returns how many (year, role) cells would be created with rate 0
func (d *Draft) ZeroCount() int {
	n := 0
	for _, s := range d.sections {
		for _, r := range Roles {
			if v, ok := s.Rates[r]; ok && v.IsZero() {
				n++
			}
		}
	}
	return n
}

// Validate checks the draft can be committed
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Term) == "" {
		return perr.WithField(perr.InvalidArgf("premium term is required"), "premium_term")
	}
	return nil
}

// Expand returns one create payload per (year, role), in year then role order
// zero-rate cells are kept only when includeZero is set
func (d *Draft) Expand(productID string, includeZero bool) []NewRecord {
	out := make([]NewRecord, 0, len(d.sections)*len(Roles))
	for _, s := range d.sections {
		for _, r := range Roles {
			v, ok := s.Rates[r]
			if !ok || (v.IsZero() && !includeZero) {
				continue
			}
			out = append(out, NewRecord{
				ProductID:   productID,
				PremiumTerm: d.Term,
				Role:        r,
				Year:        s.Year,
				Rate:        v,
			})
		}
	}
	return out
}

// DraftFrom builds a draft from explicit sections, as loaded from a file
// years must be unique and in range; missing roles default to 0
func DraftFrom(term string, sections []Section) (*Draft, error) {
	if len(sections) == 0 {
		return nil, perr.InvalidArgf("draft needs at least one year")
	}
	if len(sections) > MaxYear {
		return nil, perr.InvalidArgf("draft holds %d years, at most %d allowed", len(sections), MaxYear)
	}
	d := &Draft{Term: term}
	seen := map[int]bool{}
	for _, s := range sections {
		if err := CheckYear(s.Year); err != nil {
			return nil, err
		}
		if seen[s.Year] {
			return nil, perr.WithField(perr.Conflictf("draft already has year %d", s.Year), "year")
		}
		seen[s.Year] = true
		rates := zeroRates()
		for r, v := range s.Rates {
			if err := CheckRole(r); err != nil {
				return nil, err
			}
			if err := CheckRate(v); err != nil {
				return nil, err
			}
			rates[r] = v
		}
		d.sections = append(d.sections, Section{Year: s.Year, Rates: rates})
	}
	d.sort()
	return d, d.Validate()
}
