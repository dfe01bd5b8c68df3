package document

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrSurfaceUnavailable is returned by a Printer whose print surface cannot
// be created. Chain moves on to the next printer when it sees it.
var ErrSurfaceUnavailable = errors.New("document: print surface unavailable")

type Printer interface {
	Print(ctx context.Context, doc Document) error
}

// SurfaceOpener creates a secondary surface (a new window, a spool file) the
// printable document is written to.
type SurfaceOpener interface {
	Open(ctx context.Context) (io.WriteCloser, error)
}

// PopupPrinter writes the standalone printable document to a fresh surface.
type PopupPrinter struct {
	opener   SurfaceOpener
	renderer *Renderer
}

func NewPopupPrinter(opener SurfaceOpener, renderer *Renderer) *PopupPrinter {
	return &PopupPrinter{opener: opener, renderer: renderer}
}

func (p *PopupPrinter) Print(ctx context.Context, doc Document) error {
	surface, err := p.opener.Open(ctx)
	if err != nil {
		return fmt.Errorf("document: open print surface: %w", err)
	}
	if err := p.renderer.RenderPrintable(surface, doc); err != nil {
		_ = surface.Close()
		return err
	}
	return surface.Close()
}

// InlinePrinter prints the current view in place.
type InlinePrinter struct {
	w        io.Writer
	renderer *Renderer
}

func NewInlinePrinter(w io.Writer, renderer *Renderer) *InlinePrinter {
	return &InlinePrinter{w: w, renderer: renderer}
}

func (p *InlinePrinter) Print(_ context.Context, doc Document) error {
	return p.renderer.renderViewAndPrint(p.w, doc)
}

type chain []Printer

// Chain returns a Printer that tries printers in order and stops at the
// first one whose surface is available.
func Chain(printers ...Printer) Printer {
	return chain(printers)
}

func (c chain) Print(ctx context.Context, doc Document) error {
	for _, p := range c {
		err := p.Print(ctx, doc)
		if errors.Is(err, ErrSurfaceUnavailable) {
			continue
		}
		return err
	}
	return ErrSurfaceUnavailable
}
