package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrEmptyDocument is returned when rendering produced no bytes.
	ErrEmptyDocument = errors.New("pdfdoc: generated document is empty")
	// ErrInvalidDocument is returned when the rendered bytes fail validation.
	ErrInvalidDocument = errors.New("pdfdoc: generated document is invalid")
)

// GenerationError hides the cause from clients. The cause is logged where
// the error is created.
type GenerationError struct {
	Document string
	Err      error
}

func (e *GenerationError) Error() string {
	return "failed to generate document"
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func init() {
	// pdfcpu must not create a config directory on the server.
	api.DisableConfigDir()
}

// Meta is written into the PDF info dictionary.
type Meta struct {
	Title     string
	Author    string
	Subject   string
	CreatedAt time.Time
}

// Render replays the layout onto US Letter pages and returns the PDF bytes.
// The result is validated, so a nil error always comes with a well-formed,
// non-empty document of l.PageCount() pages.
func Render(l *Layout, meta Meta) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("broker-crm", true)
	if meta.Title != "" {
		pdf.SetTitle(meta.Title, true)
	}
	if meta.Author != "" {
		pdf.SetAuthor(meta.Author, true)
	}
	if meta.Subject != "" {
		pdf.SetSubject(meta.Subject, true)
	}
	if !meta.CreatedAt.IsZero() {
		pdf.SetCreationDate(meta.CreatedAt)
		pdf.SetModificationDate(meta.CreatedAt)
	}

	// Core fonts are cp1252; translate from UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range l.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			switch op.Kind {
			case OpText:
				applyStyle(pdf, op.Style)
				pdf.Text(op.X, PageHeight-op.Y, tr(op.Text))
			case OpLine:
				pdf.SetDrawColor(op.Style.Color.R, op.Style.Color.G, op.Style.Color.B)
				pdf.SetLineWidth(op.Width)
				pdf.Line(op.X, PageHeight-op.Y, op.X2, PageHeight-op.Y2)
			}
		}
	}
	if pdf.Err() {
		return nil, fmt.Errorf("pdfdoc: render: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdfdoc: output: %w", err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyDocument
	}

	out := buf.Bytes()
	if err := Validate(out, l.PageCount()); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks that b is a readable PDF with wantPages pages. A wantPages
// of zero skips the page count check.
func Validate(b []byte, wantPages int) error {
	if len(b) == 0 {
		return ErrEmptyDocument
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(b), conf); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if wantPages == 0 {
		return nil
	}
	n, err := api.PageCount(bytes.NewReader(b), conf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if n != wantPages {
		return fmt.Errorf("%w: %d pages, want %d", ErrInvalidDocument, n, wantPages)
	}
	return nil
}

func applyStyle(pdf *fpdf.Fpdf, s Style) {
	font := s.Font
	if font == "" {
		font = "Helvetica"
	}
	style := ""
	if s.Bold {
		style = "B"
	}
	size := s.Size
	if size == 0 {
		size = BodyStyle.Size
	}
	pdf.SetFont(font, style, size)
	pdf.SetTextColor(s.Color.R, s.Color.G, s.Color.B)
}
