package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/internal/lock"
	"github.com/Aman-CERP/ftmodel/internal/telemetry"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
	"github.com/Aman-CERP/ftmodel/pkg/record"
)

// healthTimeout bounds the backend ping behind /health.
const healthTimeout = 2 * time.Second

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type fieldInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed"`
}

type modelInfo struct {
	Name       string      `json:"name"`
	Prefix     string      `json:"prefix"`
	Index      string      `json:"index"`
	PrimaryKey string      `json:"primary_key"`
	Timestamps bool        `json:"timestamps"`
	Fields     []fieldInfo `json:"fields"`
}

func describe(m *record.Model) modelInfo {
	info := modelInfo{
		Name:       m.Name(),
		Prefix:     m.Prefix(),
		Index:      m.IndexName(),
		PrimaryKey: m.PrimaryKey(),
		Timestamps: m.Timestamps(),
		Fields:     []fieldInfo{},
	}
	for _, f := range m.FieldSchema().Fields() {
		info.Fields = append(info.Fields, fieldInfo{Name: f.Name, Type: string(f.Type), Indexed: f.Indexed})
	}
	return info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	raw, err := s.exec.Do(ctx, "PING")
	if err != nil {
		WriteJSONError(w, err)
		return
	}
	reply, _ := backend.AsString(raw)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "backend": reply})
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	models := s.registry.Models()
	out := make([]modelInfo, 0, len(models))
	for _, m := range models {
		out = append(out, describe(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	repo, err := s.repository(mux.Vars(r)["model"])
	if err != nil {
		WriteJSONError(w, err)
		return
	}

	params := r.URL.Query()
	size, err := perPage(params, s.perPage, s.maxPage)
	if err != nil {
		WriteJSONError(w, err)
		return
	}
	q := repo.Query()
	if err := buildQuery(q, repo.Model(), params); err != nil {
		WriteJSONError(w, err)
		return
	}

	page, err := repo.Paginate(r.Context(), q, size, NewRequestContext(r))
	if err != nil {
		WriteJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	_, rec, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	repo, err := s.repository(mux.Vars(r)["model"])
	if err != nil {
		WriteJSONError(w, err)
		return
	}
	attrs, err := decodeAttrs(w, r, repo.Model())
	if err != nil {
		WriteJSONError(w, err)
		return
	}

	rec, err := repo.Create(r.Context(), attrs)
	if err != nil {
		WriteJSONError(w, err)
		return
	}
	s.logger.Debug("record created", "model", repo.Model().Name(), "id", rec.ID())
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	repo, rec, ok := s.load(w, r)
	if !ok {
		return
	}
	attrs, err := decodeAttrs(w, r, repo.Model())
	if err != nil {
		WriteJSONError(w, err)
		return
	}
	if err := repo.Update(r.Context(), rec, attrs); err != nil {
		WriteJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	repo, rec, ok := s.load(w, r)
	if !ok {
		return
	}
	if err := repo.Delete(r.Context(), rec); err != nil {
		WriteJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecreateIndex(w http.ResponseWriter, r *http.Request) {
	repo, err := s.repository(mux.Vars(r)["model"])
	if err != nil {
		WriteJSONError(w, err)
		return
	}

	index := repo.Model().IndexName()
	fl := lock.ForIndex(s.lockDir, index)
	acquired, err := fl.TryLock()
	if err != nil {
		WriteJSONError(w, err)
		return
	}
	if !acquired {
		WriteJSONError(w, errors.Newf(errors.ErrCodeLockFailed, "index %s is being rebuilt", index).
			WithDetail("lock", fl.Path()))
		return
	}
	defer func() { _ = fl.Unlock() }()

	if err := repo.RecreateIndex(r.Context()); err != nil {
		WriteJSONError(w, err)
		return
	}
	s.logger.Info("index recreated", "model", repo.Model().Name(), "index", index)
	writeJSON(w, http.StatusOK, map[string]string{"index": index, "status": "created"})
}

func (s *Server) handleQueryMetrics(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		writeJSON(w, http.StatusOK, &telemetry.QueryMetricsSnapshot{})
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// load resolves the {model} and {id} route variables to a stored record.
// It writes the error response itself and reports false on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*record.Repository, *record.Record, bool) {
	vars := mux.Vars(r)
	repo, err := s.repository(vars["model"])
	if err != nil {
		WriteJSONError(w, err)
		return nil, nil, false
	}
	id, err := record.ParseID(vars["id"])
	if err != nil {
		WriteJSONError(w, err)
		return nil, nil, false
	}
	rec, err := repo.FindByID(r.Context(), id)
	if err != nil {
		WriteJSONError(w, err)
		return nil, nil, false
	}
	if rec == nil {
		WriteJSONError(w, errors.Newf(errors.ErrCodeNotFound, "%s %d not found", repo.Model().Name(), id).
			WithDetail("key", repo.Model().KeyFor(id)))
		return nil, nil, false
	}
	return repo, rec, true
}

// decodeAttrs reads a JSON object body. Numbers stay exact and the primary key
// cannot be set by the client. An oversized body also closes the connection.
func decodeAttrs(w http.ResponseWriter, r *http.Request, m *record.Model) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			// Wrapped writers hide the server's own close-after-reply hook.
			w.Header().Set("Connection", "close")
			return nil, errors.Newf(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body must be a JSON object", err)
	}
	if _, ok := attrs[m.PrimaryKey()]; ok {
		return nil, errors.Newf(errors.ErrCodeInvalidInput, "%s is assigned by the server", m.PrimaryKey()).
			WithDetail("field", m.PrimaryKey())
	}
	return attrs, nil
}
