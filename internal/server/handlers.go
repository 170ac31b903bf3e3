package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/minigrep/internal/models"
	"github.com/hyperjump/minigrep/internal/search"
	"github.com/hyperjump/minigrep/internal/storage"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 1000
)

var errOutsideRoot = errors.New("path is outside the document root")

// searchRequest is the body of POST /api/v1/search. Unset fields take the
// configured search defaults.
type searchRequest struct {
	Query           string `json:"query"`
	Path            string `json:"path"`
	Mode            string `json:"mode"`
	Pattern         string `json:"pattern"`
	ShowLineNumbers *bool  `json:"show_line_numbers"`
	MaxResults      *int   `json:"max_results"`
	Stats           *bool  `json:"stats"`
	TopWords        *int   `json:"top_words"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	path, err := s.resolvePath(req.Path)
	if err != nil {
		s.respondError(w, http.StatusForbidden, err.Error())
		return
	}
	cfg, opts, err := s.buildSearch(&req, path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request",
		zap.String("query", cfg.Query),
		zap.String("path", cfg.DocumentPath),
		zap.String("mode", cfg.Mode.String()),
	)
	response, err := s.engine.Search(r.Context(), cfg, opts)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("search failed", zap.Error(err))
		}
		s.respondError(w, status, search.Describe(err))
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) buildSearch(req *searchRequest, path string) (*models.Config, search.SearchOptions, error) {
	defaults := s.config.Search
	cfg, err := s.config.SearchFor(req.Query, path)
	if err != nil {
		return nil, search.SearchOptions{}, err
	}
	if req.Mode != "" {
		kind, err := models.ParseModeKind(req.Mode)
		if err != nil {
			return nil, search.SearchOptions{}, err
		}
		cfg.Mode = models.SearchMode{Kind: kind}
	}
	if cfg.Mode.Kind == models.ModePrefixWildcard && req.Pattern != "" {
		cfg.Mode.Pattern = req.Pattern
	}
	if req.ShowLineNumbers != nil {
		cfg.ShowLineNumbers = *req.ShowLineNumbers
	}
	if req.MaxResults != nil {
		cfg.MaxResults = models.IntPtr(*req.MaxResults)
	}
	opts := search.SearchOptions{
		Stats:    defaults.Stats,
		TopWords: defaults.TopWords,
		Record:   s.history != nil,
	}
	if req.Stats != nil {
		opts.Stats = *req.Stats
	}
	if req.TopWords != nil {
		opts.TopWords = *req.TopWords
	}
	return cfg, opts, nil
}

// resolvePath maps a request path onto the document root when one is configured.
// Relative paths are joined to the root. A path that leaves the root, either lexically
// or through a symlink, is rejected; the returned path has symlinks resolved.
func (s *Server) resolvePath(path string) (string, error) {
	root := s.config.Server.DocumentRoot
	if root == "" || path == "" {
		return path, nil
	}
	root = filepath.Clean(root)
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)
	if !within(root, path) {
		return "", errOutsideRoot
	}

	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Reported as not found by the engine.
			return path, nil
		}
		return "", err
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		realRoot = root
	}
	if !within(realRoot, realPath) {
		return "", errOutsideRoot
	}
	return realPath, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func statusFor(err error) int {
	switch search.KindOf(err) {
	case search.KindConfigInvalid:
		return http.StatusBadRequest
	case search.KindDocumentNotFound:
		return http.StatusNotFound
	case search.KindDocumentUnreadable:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	ctx := r.Context()
	runs, err := s.history.ListRuns(ctx, limit)
	if err != nil {
		s.logger.Error("history: list runs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.history.CountRuns(ctx)
	if err != nil {
		s.logger.Error("history: count runs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*models.RunRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs, "total": total})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"runs":          int64(0),
		"database_path": "",
	}
	if s.history != nil {
		count, err := s.history.CountRuns(r.Context())
		if err != nil {
			s.logger.Error("status: count runs failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["runs"] = count
		dbPath := s.config.Storage.DatabasePath
		resp["database_path"] = dbPath
		if diskBytes, err := storage.DiskUsageBytes(dbPath); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
