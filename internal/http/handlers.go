package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/report"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleAnalytics serves the analytics summary; /api/chart_data is an alias.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	summary, err := s.reports.Analytics(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	summary, err := s.reports.Dashboard(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	cats, err := s.ledger.Categories(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	n, err := ParseNewTransaction(NewRequestBodyParser(r), user, s.now())
	if err != nil {
		writeServiceError(w, r, log.OpParse, err)
		return
	}
	id, err := s.ledger.AddTransaction(r.Context(), n)
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/api/transactions/"+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// handleChart draws the spending chart for the current window, or answers 204
// when there is no spending.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	png, err := s.reports.Chart(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, log.OpRender, err)
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", report.FormatPNG.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	_, _ = w.Write(png)
}

func (s *Server) handleChartRefresh(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	queued, err := s.reports.RequestChart(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, log.OpRender, err)
		return
	}
	if queued {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rendered"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	format, err := report.ParseFormat(r.PathValue("format"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	days, err := parseDays(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	art, err := s.reports.Export(r.Context(), user, format, days)
	if err != nil {
		writeServiceError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Body)))
	_, _ = w.Write(art.Body)
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	days, err := parseDays(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := s.reports.ExportToSheets(r.Context(), user, days)
	if err != nil {
		writeServiceError(w, r, log.OpExport, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"rows": rows})
}
