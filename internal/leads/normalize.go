// Package leads turns mapped CSV rows into lead candidates.
package leads

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"OutreachLab/internal/csvparser"
	"OutreachLab/internal/mapping"
	"OutreachLab/internal/models"
)

var ErrNoValidLeads = errors.New("no valid leads found after processing, check the data and the column mapping")

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type SkipReason string

const (
	ReasonMalformed    SkipReason = "malformed_row"
	ReasonInvalidEmail SkipReason = "invalid_email"
	ReasonNoFirstName  SkipReason = "missing_first_name"
)

// Skipped is a data row that did not become a lead. Row is the 1-based
// position among the data rows.
type Skipped struct {
	Row    int        `json:"row"`
	Reason SkipReason `json:"reason"`
	Value  string     `json:"value,omitempty"`
}

type Result struct {
	Leads   []models.Lead
	Skipped []Skipped
}

func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Normalize validates rows against a confirmed mapping. Rows without a
// well-formed email or a first name are dropped; duplicates are kept.
// It returns the mapping's *mapping.ValidationError when required fields
// are unmapped, and ErrNoValidLeads when nothing survives.
func Normalize(rows []csvparser.Row, m mapping.Mapping) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}

	var res Result

	for i, row := range rows {
		n := i + 1

		if row == nil {
			res.Skipped = append(res.Skipped, Skipped{Row: n, Reason: ReasonMalformed})
			continue
		}

		raw := resolve(row, m, mapping.Email)
		email := addressOf(raw)
		if email == "" || !ValidEmail(email) {
			res.Skipped = append(res.Skipped, Skipped{Row: n, Reason: ReasonInvalidEmail, Value: raw})
			continue
		}

		firstName := resolve(row, m, mapping.FirstName)
		if firstName == "" {
			res.Skipped = append(res.Skipped, Skipped{Row: n, Reason: ReasonNoFirstName})
			continue
		}

		res.Leads = append(res.Leads, models.Lead{
			Email:       email,
			FirstName:   firstName,
			LastName:    resolve(row, m, mapping.LastName),
			Company:     resolve(row, m, mapping.Company),
			Title:       resolve(row, m, mapping.Title),
			Industry:    resolve(row, m, mapping.Industry),
			CompanySize: resolve(row, m, mapping.CompanySize),
			Notes:       resolve(row, m, mapping.Notes),
			Status:      models.StatusNew,
		})
	}

	if len(res.Leads) == 0 {
		return res, ErrNoValidLeads
	}

	return res, nil
}

// addressOf unwraps a "Name <address>" cell to the bare address. Anything
// else is returned unchanged.
func addressOf(v string) string {
	if !strings.ContainsRune(v, '<') {
		return v
	}
	a, err := mail.ParseAddress(v)
	if err != nil {
		return v
	}
	return a.Address
}

func resolve(row csvparser.Row, m mapping.Mapping, f mapping.Field) string {
	header, ok := m[f]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[header])
}
