package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10  // Margin in mm
	pdfLineHeight = 5   // Line height in mm
	pdfFontSize   = 9
	pdfTabWidth   = 4 // Number of spaces for a tab
)

// sectionCollector keeps rendered sections for outputs that need the whole document.
type sectionCollector struct {
	sections []OutputSection
}

func (c *sectionCollector) Add(s OutputSection) {
	c.sections = append(c.sections, s)
}

// generatePDF renders the header, sections and summary with syntax-highlighted content.
func generatePDF(header ReportHeader, sections []OutputSection, summary Summary, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}
	width := float64(pdfPageWidth - 2*pdfMargin)

	pdf.SetFont("Helvetica", "B", pdfFontSize+4)
	pdf.MultiCell(width, pdfLineHeight+2, "Repository Summary: "+header.RepoName, "", "L", false)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	branch := header.Branch
	if branch == "" {
		branch = "(default)"
	}
	pdf.MultiCell(width, pdfLineHeight, fmt.Sprintf("URL: %s\nBranch: %s\nCreated: %s", header.SourceURL, branch, header.Destination), "", "L", false)
	pdf.Ln(pdfLineHeight)

	for _, section := range sections {
		pdf.SetFont("Helvetica", "B", pdfFontSize+1)
		pdf.SetTextColor(0, 0, 0)
		switch section.Kind {
		case ContentSection:
			pdf.MultiCell(width, pdfLineHeight, "File: "+section.Heading, "", "L", false)
			pdf.Line(pdfMargin, pdf.GetY(), pdfPageWidth-pdfMargin, pdf.GetY())
			pdf.Ln(pdfLineHeight / 2)
			if err := writeHighlightedCode(pdf, style, section); err != nil {
				pdf.SetFont("Courier", "", pdfFontSize)
				pdf.SetTextColor(0, 0, 0)
				pdf.MultiCell(width, pdfLineHeight, section.Body, "", "L", false)
			}
		case AssetListing:
			pdf.MultiCell(width, pdfLineHeight, "Assets in: "+section.Heading, "", "L", false)
			pdf.SetFont("Courier", "", pdfFontSize)
			pdf.MultiCell(width, pdfLineHeight, strings.Join(section.Assets, "\n"), "", "L", false)
		}
		pdf.Ln(pdfLineHeight)
	}

	pdf.SetFont("Helvetica", "B", pdfFontSize+1)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(width, pdfLineHeight, "--- Summary ---", "", "L", false)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	summaryString := fmt.Sprintf("Code files: %d\nAsset files: %d", summary.Textual, summary.Asset)
	if summary.TotalTokens > 0 {
		summaryString += fmt.Sprintf("\nTotal tokens: %d", summary.TotalTokens)
	}
	pdf.MultiCell(width, pdfLineHeight, summaryString, "", "L", false)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", outputPath, err)
	}
	return nil
}

// writeHighlightedCode writes a content section token by token using the style's colours.
func writeHighlightedCode(pdf *gofpdf.Fpdf, style *chroma.Style, section OutputSection) error {
	lexer := lexers.Get(section.Language)
	if lexer == nil {
		lexer = lexers.Match(section.Heading)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, section.Body)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	pdf.SetFont("Courier", "", pdfFontSize)
	for token := iterator(); token != chroma.EOF; token = iterator() {
		entry := style.Get(token.Type)
		styleStr := ""
		if entry.Bold == chroma.Yes {
			styleStr += "B"
		}
		if entry.Italic == chroma.Yes {
			styleStr += "I"
		}
		pdf.SetFontStyle(styleStr)

		if entry.Colour.IsSet() {
			pdf.SetTextColor(int(entry.Colour.Red()), int(entry.Colour.Green()), int(entry.Colour.Blue()))
		} else {
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Write(pdfLineHeight, strings.ReplaceAll(token.Value, "\t", strings.Repeat(" ", pdfTabWidth)))
	}
	pdf.Ln(-1)
	return nil
}
