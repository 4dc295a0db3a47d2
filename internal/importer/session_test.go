package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OutreachLab/internal/csvparser"
	"OutreachLab/internal/leads"
	"OutreachLab/internal/mapping"
)

func parse(t *testing.T, text string) *csvparser.Table {
	t.Helper()
	table, err := csvparser.Parse(text)
	require.NoError(t, err)
	return table
}

func TestSessions_FlowAndOwnership(t *testing.T) {
	store := NewSessions(time.Hour)

	sess := store.Create("u1", "leads.csv", parse(t, "Mail,First Name\nann@example.com,Ann\nbad,Bob"))
	assert.Equal(t, mapping.Mapping{mapping.FirstName: "First Name"}, sess.Mapper.Mapping())

	_, err := store.Get("u2", sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = store.Update("u1", sess.ID, func(s *Session) error {
		_, err := s.Confirm()
		return err
	})
	var verr *mapping.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = sess.Candidates()
	assert.ErrorIs(t, err, ErrNotConfirmed)

	err = store.Update("u1", sess.ID, func(s *Session) error {
		if err := s.Mapper.Assign(mapping.Email, "Mail"); err != nil {
			return err
		}
		_, err := s.Confirm()
		return err
	})
	require.NoError(t, err)

	candidates, err := sess.Candidates()
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ann@example.com", candidates[0].Email)
	assert.Len(t, sess.Result.Skipped, 1)

	assert.ErrorIs(t, store.Delete("u2", sess.ID), ErrSessionNotFound)
	require.NoError(t, store.Delete("u1", sess.ID))
	_, err = store.Get("u1", sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_ConfirmNoValidLeads(t *testing.T) {
	store := NewSessions(time.Hour)
	sess := store.Create("u1", "", parse(t, "email,first_name\nnope,Ann"))

	res, err := sess.Confirm()
	assert.ErrorIs(t, err, leads.ErrNoValidLeads)
	require.NotNil(t, res)
	assert.Len(t, res.Skipped, 1)

	_, err = sess.Candidates()
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestSessions_Expire(t *testing.T) {
	store := NewSessions(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := store.Create("u1", "", parse(t, "email,first_name\na@b.io,A"))

	now = now.Add(2 * time.Minute)
	_, err := store.Get("u1", sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_Editable(t *testing.T) {
	store := NewSessions(time.Hour)
	sess := store.Create("u1", "leads.csv", parse(t, "email,first_name\nann@example.com,Ann"))
	require.NoError(t, sess.Editable())

	sess.JobID = "job-1"
	assert.ErrorIs(t, sess.Editable(), ErrCommitted)

	sess.Failure = errors.New("import batch 1/1: connection reset")
	err := sess.Editable()
	assert.ErrorIs(t, err, ErrImportFailed)
	assert.Contains(t, err.Error(), "connection reset")
}
