package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/reelcut/reelcut-engine/internal/export"
)

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if strings.ToLower(req.Format) != "edl" {
			WriteError(w, http.StatusBadRequest, "format must be edl", "BAD_REQUEST")
			return
		}
		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		snap, err := cfg.Timelines.Snapshot(chi.URLParam(r, "id"))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		name := export.SafeName(req.Name, 120)
		if name == "" {
			name = export.SafeName(snap.Name, 120)
		}
		if name == "" {
			name = "reelcut_export"
		}

		// Unresolvable refs export with no media path comment; the NLE
		// importing the EDL flags those events for relinking.
		resolve := func(ref string) (string, bool) {
			file, err := cfg.Media.Get(r.Context(), ref)
			if err != nil || file == nil {
				return "", false
			}
			return file.Path, true
		}

		entries := export.Cutlist(snap, resolve)
		if len(entries) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "timeline has no exportable clips", "EMPTY_EXPORT")
			return
		}

		edl := export.GenerateEDL(snap, resolve)
		outputPath := filepath.Join(req.OutputDir, name+".edl")
		if err := os.WriteFile(outputPath, []byte(edl), 0o644); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, ExportResponse{
			Status:     "ok",
			Format:     "edl",
			OutputPath: outputPath,
			EventCount: len(entries),
		})
	}
}
