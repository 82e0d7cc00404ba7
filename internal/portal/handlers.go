package portal

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/billedapp/expense-portal/internal/bill"
	"github.com/billedapp/expense-portal/internal/dom"
)

// maxUploadSize bounds receipt uploads (phone photos included).
const maxUploadSize = int64(10 << 20) // 10MB

// previewModalWidth is the rendered width the proof modal markup is
// generated against.
const previewModalWidth = 800

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// handleIndex serves the placeholder view-layer page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleCurrentUser returns the logged-in user's identity.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.user); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListBills returns the display-ready bill collection.
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	pipeline := bill.NewListPipeline(dom.NewDocument(), s.navigate, s.store)
	bills, err := pipeline.RetrieveBills(r.Context())
	if err != nil {
		slog.Error("Error listing bills", "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(bills); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleReceiptPreview renders the proof modal markup for one bill's
// receipt, the markup the eye trigger reveals on the list page.
func (s *Server) handleReceiptPreview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		jsonError(w, "Bill ID required", http.StatusBadRequest)
		return
	}

	doc := dom.NewDocument()
	modal := dom.NewElement()
	modal.SetWidth(previewModalWidth)
	doc.SetElement(bill.TestIDModalFile, modal)

	pipeline := bill.NewListPipeline(doc, s.navigate, s.store)
	if _, err := pipeline.RetrieveBills(r.Context()); err != nil {
		slog.Error("Error listing bills for preview", "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	trigger := dom.NewElement()
	trigger.SetAttr(bill.AttrBillID, id)
	pipeline.OpenReceiptPreview(trigger)

	if modal.HTML() == "" {
		jsonError(w, "Receipt not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(modal.HTML()))
}

// handleUploadFile handles the receipt file chosen on the new-bill form.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		case ".gif":
			contentType = "image/gif"
		default:
			contentType = "application/octet-stream"
		}
	}

	s.mu.Lock()
	err = s.newBill.HandleChangeFile(r.Context(), header.Filename, data, contentType)
	upload := s.newBill.Upload()
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, bill.ErrInvalidFileFormat) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(upload); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// submitFields are the form fields carried from the posted new-bill form
// into the document the pipeline reads.
var submitFields = []string{
	bill.TestIDExpenseType,
	bill.TestIDExpenseName,
	bill.TestIDAmount,
	bill.TestIDDatepicker,
	bill.TestIDVAT,
	bill.TestIDPct,
	bill.TestIDCommentary,
}

// handleSubmitBill handles the completed new-bill form.
func (s *Server) handleSubmitBill(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	for _, field := range submitFields {
		s.doc.SetValue(field, r.FormValue(field))
	}
	err := s.newBill.HandleSubmit(r.Context())
	route := s.route
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, bill.ErrNoUpload) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", route)
	w.WriteHeader(http.StatusSeeOther)
	if err := json.NewEncoder(w).Encode(map[string]string{"route": route}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
