// Package reporting renders already-computed statistics as PDF documents made
// of titled tables.
package reporting

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Table is one section of a report.
type Table struct {
	Title   string
	Headers []string
	// Widths in millimetres, one per column. Empty means equal widths.
	Widths []float64
	Rows   [][]string
	// Empty replaces the default "Veri yok" line when Rows is empty.
	Empty string
}

// Document is a full report.
type Document struct {
	Title       string
	Subtitle    string
	Tables      []Table
	GeneratedAt time.Time
}

const (
	pageWidth   = 210.0
	margin      = 15.0
	rowHeight   = 7.0
	headerFill  = 220
	contentWide = pageWidth - 2*margin
)

//go:embed fonts/*.ttf
var fontFS embed.FS

// unicodeFaces are the DejaVu faces shipped with fpdf, keyed by style.
var unicodeFaces = []struct{ style, file string }{
	{"", "fonts/DejaVuSansCondensed.ttf"},
	{"B", "fonts/DejaVuSansCondensed-Bold.ttf"},
	{"I", "fonts/DejaVuSansCondensed-Oblique.ttf"},
}

const (
	unicodeFamily  = "DejaVu"
	fallbackFamily = "Helvetica"
)

// face is the font family a document is drawn with and the text mapping that
// family needs.
type face struct {
	family string
	text   func(string) string
}

func identity(s string) string { return s }

// loadFace registers the embedded UTF-8 fonts on pdf. When any of them fails
// to load the core Helvetica font is used and text is folded to Latin-1.
func loadFace(pdf *fpdf.Fpdf) face {
	for _, f := range unicodeFaces {
		b, err := fontFS.ReadFile(f.file)
		if err != nil {
			return fallbackFace(pdf)
		}
		pdf.AddUTF8FontFromBytes(unicodeFamily, f.style, b)
	}
	if pdf.Error() != nil {
		return fallbackFace(pdf)
	}
	return face{family: unicodeFamily, text: identity}
}

func fallbackFace(pdf *fpdf.Fpdf) face {
	pdf.ClearError()
	return face{family: fallbackFamily, text: Fold}
}

var turkishDotless = strings.NewReplacer("ı", "i")

// Fold maps text onto the Latin-1 subset the core PDF fonts can draw by
// removing combining marks ("ş" becomes "s", "İ" becomes "I"). Render only
// uses it when the embedded UTF-8 fonts cannot be loaded.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, turkishDotless.Replace(s))
	if err != nil {
		return s
	}
	return out
}

// Render writes doc as a PDF to w.
func Render(doc Document, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	return render(pdf, loadFace(pdf), doc, w)
}

func render(pdf *fpdf.Fpdf, fc face, doc Document, w io.Writer) error {
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("clinic-server", false)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fc.family, "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Sayfa %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fc.family, "B", 16)
	pdf.CellFormat(0, 10, fc.text(doc.Title), "", 1, "C", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont(fc.family, "", 11)
		pdf.CellFormat(0, 8, fc.text(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, t := range doc.Tables {
		writeTable(pdf, fc, t)
		pdf.Ln(6)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func columnWidths(t Table) []float64 {
	if len(t.Widths) == len(t.Headers) {
		return t.Widths
	}
	n := len(t.Headers)
	if n == 0 {
		return nil
	}
	ws := make([]float64, n)
	for i := range ws {
		ws[i] = contentWide / float64(n)
	}
	return ws
}

func writeTable(pdf *fpdf.Fpdf, fc face, t Table) {
	if t.Title != "" {
		pdf.SetFont(fc.family, "B", 12)
		pdf.CellFormat(0, 8, fc.text(t.Title), "", 1, "L", false, 0, "")
	}
	widths := columnWidths(t)

	pdf.SetFont(fc.family, "B", 10)
	pdf.SetFillColor(headerFill, headerFill, headerFill)
	for i, h := range t.Headers {
		pdf.CellFormat(widths[i], rowHeight, fc.text(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fc.family, "", 10)
	if len(t.Rows) == 0 {
		msg := "Veri yok"
		if t.Empty != "" {
			msg = t.Empty
		}
		pdf.CellFormat(sum(widths), rowHeight, fc.text(msg), "1", 1, "C", false, 0, "")
		return
	}
	for _, row := range t.Rows {
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = fc.text(row[i])
			}
			pdf.CellFormat(widths[i], rowHeight, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// Attachment renders doc and sends it as a PDF download.
func Attachment(c echo.Context, filename string, doc Document) error {
	var buf bytes.Buffer
	if err := Render(doc, &buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
