package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OutreachLab/internal/csvparser"
	"OutreachLab/internal/mapping"
	"OutreachLab/internal/models"
)

var basicMapping = mapping.Mapping{
	mapping.Email:     "Email",
	mapping.FirstName: "First",
	mapping.Company:   "Org",
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a.b+c@sub.example.co"))
	assert.True(t, ValidEmail("x_y%z-1@d.io"))

	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("a@b"))
	assert.False(t, ValidEmail("a@b.c"))
	assert.False(t, ValidEmail("John <john@example.com>"))
	assert.False(t, ValidEmail(""))
}

func TestNormalize(t *testing.T) {
	rows := []csvparser.Row{
		{"Email": " a.b+c@sub.example.co ", "First": " Ann ", "Org": " Acme ", "Extra": "x"},
		{"Email": "not-an-email", "First": "Bob", "Org": "Beta"},
		{"Email": "carl@example.com", "First": "  ", "Org": "Gamma"},
		{"Email": "dana@example.com", "First": "Dana", "Org": ""},
	}

	res, err := Normalize(rows, basicMapping)
	require.NoError(t, err)

	require.Len(t, res.Leads, 2)
	assert.Equal(t, models.Lead{
		Email:     "a.b+c@sub.example.co",
		FirstName: "Ann",
		Company:   "Acme",
		Status:    models.StatusNew,
	}, res.Leads[0])
	assert.Equal(t, "dana@example.com", res.Leads[1].Email)
	assert.Empty(t, res.Leads[1].LastName)

	assert.Equal(t, []Skipped{
		{Row: 2, Reason: ReasonInvalidEmail, Value: "not-an-email"},
		{Row: 3, Reason: ReasonNoFirstName},
	}, res.Skipped)
}

func TestNormalize_DisplayNameAddress(t *testing.T) {
	rows := []csvparser.Row{
		{"Email": "Ann Lee <ann@acme.io>", "First": "Ann"},
		{"Email": "Bob <not-an-email>", "First": "Bob"},
	}

	res, err := Normalize(rows, basicMapping)
	require.NoError(t, err)

	require.Len(t, res.Leads, 1)
	assert.Equal(t, "ann@acme.io", res.Leads[0].Email)
	assert.Equal(t, []Skipped{
		{Row: 2, Reason: ReasonInvalidEmail, Value: "Bob <not-an-email>"},
	}, res.Skipped)
}

func TestNormalize_AllOptionalFields(t *testing.T) {
	m := mapping.Mapping{
		mapping.Email: "e", mapping.FirstName: "f", mapping.LastName: "l",
		mapping.Company: "c", mapping.Title: "t", mapping.Industry: "i",
		mapping.CompanySize: "s", mapping.Notes: "n",
	}
	rows := []csvparser.Row{{
		"e": "x@y.io", "f": "X", "l": "Y", "c": "C", "t": "CTO", "i": "SaaS", "s": "11-50", "n": "met at expo",
	}}

	res, err := Normalize(rows, m)
	require.NoError(t, err)
	require.Len(t, res.Leads, 1)

	l := res.Leads[0]
	assert.Equal(t, "Y", l.LastName)
	assert.Equal(t, "CTO", l.Title)
	assert.Equal(t, "SaaS", l.Industry)
	assert.Equal(t, "11-50", l.CompanySize)
	assert.Equal(t, "met at expo", l.Notes)
}

func TestNormalize_DuplicatesKept(t *testing.T) {
	rows := []csvparser.Row{
		{"Email": "same@example.com", "First": "A"},
		{"Email": "same@example.com", "First": "B"},
	}

	res, err := Normalize(rows, basicMapping)
	require.NoError(t, err)
	assert.Len(t, res.Leads, 2)
}

func TestNormalize_MalformedRow(t *testing.T) {
	rows := []csvparser.Row{nil, {"Email": "ok@example.com", "First": "Ok"}}

	res, err := Normalize(rows, basicMapping)
	require.NoError(t, err)
	assert.Len(t, res.Leads, 1)
	assert.Equal(t, []Skipped{{Row: 1, Reason: ReasonMalformed}}, res.Skipped)
}

func TestNormalize_NoValidLeads(t *testing.T) {
	rows := []csvparser.Row{{"Email": "bad", "First": "A"}}

	res, err := Normalize(rows, basicMapping)
	assert.ErrorIs(t, err, ErrNoValidLeads)
	assert.Empty(t, res.Leads)
	assert.Len(t, res.Skipped, 1)
}

func TestNormalize_UnconfirmedMapping(t *testing.T) {
	rows := []csvparser.Row{{"Email": "ok@example.com", "First": "Ok"}}

	res, err := Normalize(rows, mapping.Mapping{mapping.Email: "Email"})

	var verr *mapping.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []mapping.Field{mapping.FirstName}, verr.Missing)
	assert.Empty(t, res.Leads)
}
