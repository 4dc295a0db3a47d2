package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"OutreachLab/internal/csvparser"
	"OutreachLab/internal/importer"
	"OutreachLab/internal/leads"
	"OutreachLab/internal/mapping"
	"OutreachLab/internal/metrics"
	"OutreachLab/internal/models"
	"OutreachLab/internal/worker"
)

const (
	previewRows  = 5
	previewLeads = 10
)

type importView struct {
	ID       string                 `json:"id"`
	FileName string                 `json:"file_name"`
	Headers  []string               `json:"headers"`
	Mapping  mapping.Mapping        `json:"mapping"`
	Fields   []mapping.FieldSpec    `json:"fields"`
	RowCount int                    `json:"row_count"`
	Skipped  []csvparser.SkippedRow `json:"skipped_rows"`
	Preview  []csvparser.Row        `json:"preview"`
	JobID    string                 `json:"job_id,omitempty"`
}

func viewOf(s *importer.Session) importView {
	rows := s.Table.Rows
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	return importView{
		ID:       s.ID,
		FileName: s.FileName,
		Headers:  s.Mapper.Headers(),
		Mapping:  s.Mapper.Mapping(),
		Fields:   mapping.Fields,
		RowCount: len(s.Table.Rows),
		Skipped:  s.Table.Skipped,
		Preview:  rows,
		JobID:    s.JobID,
	}
}

type validationView struct {
	Valid   int             `json:"valid"`
	Skipped []leads.Skipped `json:"skipped"`
	Preview []models.Lead   `json:"preview"`
}

// readUpload accepts either a multipart form with a "file" part or the raw
// CSV as the request body.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (string, string, error) {
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return "", "", errors.Join(errBadRequest, err)
		}
		defer f.Close()

		b, err := io.ReadAll(f)
		if err != nil {
			return "", "", errors.Join(errBadRequest, err)
		}
		return string(b), hdr.Filename, nil
	}

	b, err := io.ReadAll(r.Body)
	if err != nil {
		return "", "", errors.Join(errBadRequest, err)
	}
	name := r.URL.Query().Get("file_name")
	if name == "" {
		name = "upload.csv"
	}
	return string(b), name, nil
}

func (h *Handler) CreateImport(w http.ResponseWriter, r *http.Request) {
	text, name, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	table, err := csvparser.Parse(text)
	if table != nil {
		for _, s := range table.Skipped {
			h.Log.Warn("csv row skipped",
				zap.String("file", name),
				zap.Int("line", s.Line),
				zap.Int("expected", s.Expected),
				zap.Int("got", s.Got),
			)
		}
		metrics.RowsSkipped.WithLabelValues("column_mismatch").Add(float64(len(table.Skipped)))
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sess := h.Sessions.Create(userID(r), name, table)

	h.Log.Info("import started",
		zap.String("import_id", sess.ID),
		zap.String("file", name),
		zap.Int("rows", len(table.Rows)),
	)

	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (h *Handler) GetImport(w http.ResponseWriter, r *http.Request) {
	var view importView
	err := h.Sessions.Update(userID(r), pathID(r), func(s *importer.Session) error {
		view = viewOf(s)
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateMapping takes {"field": "column"} pairs. An empty column or
// "ignore" unmaps the field.
func (h *Handler) UpdateMapping(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	changes := make(map[mapping.Field]string, len(body))
	for f, col := range body {
		changes[mapping.Field(f)] = col
	}

	var view importView
	err := h.Sessions.Update(userID(r), pathID(r), func(s *importer.Session) error {
		if err := s.Editable(); err != nil {
			return err
		}
		if err := s.Mapper.AssignAll(changes); err != nil {
			return errors.Join(errBadRequest, err)
		}
		s.Result = nil
		view = viewOf(s)
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ConfirmImport(w http.ResponseWriter, r *http.Request) {
	var res *leads.Result
	err := h.Sessions.Update(userID(r), pathID(r), func(s *importer.Session) error {
		if err := s.Editable(); err != nil {
			return err
		}
		var err error
		res, err = s.Confirm()
		return err
	})

	if res != nil {
		for _, s := range res.Skipped {
			metrics.RowsSkipped.WithLabelValues(string(s.Reason)).Inc()
		}
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	preview := res.Leads
	if len(preview) > previewLeads {
		preview = preview[:previewLeads]
	}

	writeJSON(w, http.StatusOK, validationView{
		Valid:   len(res.Leads),
		Skipped: res.Skipped,
		Preview: preview,
	})
}

// CommitImport starts the batch insert of the validated leads as a
// background job. A failed job leaves the session marked failed; a
// successful one removes it.
func (h *Handler) CommitImport(w http.ResponseWriter, r *http.Request) {
	uid, id := userID(r), pathID(r)

	var job worker.Job
	err := h.Sessions.Update(uid, id, func(s *importer.Session) error {
		if err := s.Editable(); err != nil {
			return err
		}
		candidates, err := s.Candidates()
		if err != nil {
			return err
		}

		job = worker.NewJob(worker.KindImport, uid, func(ctx context.Context, progress func(float64)) (int, error) {
			n, err := h.Importer.Import(ctx, candidates, progress)
			if err != nil {
				_ = h.Sessions.Update(uid, id, func(s *importer.Session) error {
					s.Failure = err
					return nil
				})
				return n, err
			}
			_ = h.Sessions.Delete(uid, id)
			return n, nil
		})
		s.JobID = job.ID
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.enqueue(job); err != nil {
		_ = h.Sessions.Update(uid, id, func(s *importer.Session) error {
			s.JobID = ""
			return nil
		})
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

func (h *Handler) CancelImport(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Delete(userID(r), pathID(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SampleCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sample_leads.csv"`)
	_, _ = io.Copy(w, strings.NewReader(csvparser.SampleTemplate))
}
