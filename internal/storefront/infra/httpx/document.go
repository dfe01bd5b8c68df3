package httpx

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/document"
)

// responseSurface is the print surface of a request that asked for a
// separate window with ?surface=popup.
type responseSurface struct {
	w     http.ResponseWriter
	popup bool
}

func (s responseSurface) Open(context.Context) (io.WriteCloser, error) {
	if !s.popup {
		return nil, document.ErrSurfaceUnavailable
	}
	s.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return nopCloser{s.w}, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

type htmlWriter struct{ w http.ResponseWriter }

func (h htmlWriter) Write(p []byte) (int, error) {
	if h.w.Header().Get("Content-Type") == "" {
		h.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	return h.w.Write(p)
}

func (h *Handler) document(w http.ResponseWriter, r *http.Request) (document.Document, bool) {
	s := h.sessions.FromRequest(w, r)
	order := s.Wizard.Document()
	if order == nil {
		writeError(w, http.StatusNotFound, "no_document", "no order waiting for acknowledgement")
		return document.Document{}, false
	}
	return document.FromOrder(order, h.docOpts...), true
}

// ViewDocument renders the receipt or invoice of the order just placed.
func (h *Handler) ViewDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.document(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.RenderView(w, doc); err != nil {
		h.logger.ErrorContext(r.Context(), "document render failed", "order_id", doc.OrderID, "error", err)
	}
}

// PrintDocument prints through the popup surface when requested and falls
// back to printing the current view.
func (h *Handler) PrintDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.document(w, r)
	if !ok {
		return
	}
	printer := document.Chain(
		document.NewPopupPrinter(responseSurface{w: w, popup: r.URL.Query().Get("surface") == "popup"}, h.renderer),
		document.NewInlinePrinter(htmlWriter{w}, h.renderer),
	)
	if err := printer.Print(r.Context(), doc); err != nil {
		h.logger.ErrorContext(r.Context(), "document print failed", "order_id", doc.OrderID, "error", err)
	}
}

// CloseDocument acknowledges the document, which empties the cart. Form
// posts from the document page are redirected home.
func (h *Handler) CloseDocument(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	s.Lock()
	err := s.Wizard.AcknowledgeDocument()
	s.Unlock()
	if err != nil {
		writeErr(w, err)
		return
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, mapCheckout(s.Wizard.State()))
}
