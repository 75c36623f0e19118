package handler

import (
	"bytes"
	"log/slog"
	"mime"
	"net/http"

	"github.com/sakif/devhost/internal/tree"
)

// StructureHandler serves the sample project tree.
type StructureHandler struct {
	project tree.Node
	logger  *slog.Logger
}

func NewStructureHandler(project tree.Node, logger *slog.Logger) *StructureHandler {
	return &StructureHandler{project: project, logger: logger}
}

// HandleText handles GET /api/structure
func (h *StructureHandler) HandleText(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(tree.RenderText(h.project)))
}

// HandleZip handles GET /api/structure.zip. The archive is built in memory
// first so a failure can still produce an error status.
func (h *StructureHandler) HandleZip(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := tree.WriteZip(&buf, h.project); err != nil {
		h.logger.Error("failed to build project zip", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": tree.ArchiveName}))
	_, _ = buf.WriteTo(w)
}
