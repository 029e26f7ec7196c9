// Package docpipe decodes uploaded contract documents into plain Unicode
// text. The analysis core consumes decoded text only; everything about
// binary formats and encodings ends here.
//
// Supported formats:
//   - .txt  — plain text (utf-8, with cp1251 and cp866 fallbacks)
//   - .docx — Microsoft Word (archive/zip → word/document.xml)
//   - .pdf  — PDF content-stream text extraction (pdfcpu)
package docpipe

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a declared document format.
type Format string

const (
	FormatText Format = "txt"
	FormatDocx Format = "docx"
	FormatPDF  Format = "pdf"
)

// Detect returns the document format based on the file extension.
func Detect(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return FormatText, nil
	case ".docx":
		return FormatDocx, nil
	case ".pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported file format: %s", filename)
}

// Decode converts raw document bytes of the declared format into text.
func Decode(data []byte, format Format) (string, error) {
	switch format {
	case FormatText:
		return decodeText(data)
	case FormatDocx:
		return decodeDocx(data)
	case FormatPDF:
		return decodePDF(data)
	}
	return "", fmt.Errorf("unsupported format: %s", format)
}
