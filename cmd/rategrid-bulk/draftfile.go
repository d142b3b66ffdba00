package main

import (
	"encoding/json"
	"io"

	"rategrid/internal/core/matrix"
	"rategrid/internal/core/termlabel"
	perr "rategrid/internal/platform/errors"

	"github.com/shopspring/decimal"
)

// draftFile is the on-disk bulk draft
//
//	{"premium_term":"10yr","sections":[{"year":1,"rates":{"ADVISOR":"5","LEADER_1":"2.5"}}]}
type draftFile struct {
	PremiumTerm string `json:"premium_term"`
	Sections    []struct {
		Year  int                        `json:"year"`
		Rates map[string]decimal.Decimal `json:"rates"`
	} `json:"sections"`
}

func readDraft(r io.Reader) (*matrix.Draft, error) {
	var f draftFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, perr.JSONErrf("invalid draft file: %v", err)
	}
	sections := make([]matrix.Section, 0, len(f.Sections))
	for _, s := range f.Sections {
		sec := matrix.Section{Year: s.Year, Rates: make(map[matrix.Role]decimal.Decimal, len(s.Rates))}
		for name, rate := range s.Rates {
			role, err := matrix.ParseRole(name)
			if err != nil {
				return nil, perr.WithField(err, "rates")
			}
			sec.Rates[role] = rate
		}
		sections = append(sections, sec)
	}
	return matrix.DraftFrom(termlabel.Clean(f.PremiumTerm), sections)
}
