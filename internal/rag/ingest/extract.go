package ingest

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/adevara/docqa/internal/domain/commonModels"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/pkg/logger_i"
)

var logger = logger_i.NewLogger("Text Extraction")

// DetectDocType infers the content type from the document name. Anything
// without a recognized binary extension is treated as plain text.
func DetectDocType(docName string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docName))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".rtf", ".odt":
		return commonModels.DOCX
	default:
		return commonModels.TEXT
	}
}

// Extract converts raw document bytes into plain text. It is pure: no
// side effects beyond logging.
func Extract(data []byte, contentType commonModels.DocType) (string, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(data)
	case commonModels.DOCX:
		return extractDocxRtf(data)
	default:
		return extractPlainText(data)
	}
}

// extractPDF concatenates the text of every page in page order. A page with
// no extractable text contributes an empty string, not an error; only a
// malformed document structure fails the extraction.
func extractPDF(data []byte) (string, error) {
	f, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logger.Error("failed opening of pdf document")
		return "", faults.Wrap(faults.Extraction, "failed to open pdf", err)
	}

	var text strings.Builder
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			logger.Error("Error parsing page content", "page #", i, "Error", err)
			continue
		}
		text.WriteString(content)
	}
	return text.String(), nil
}

func extractDocxRtf(data []byte) (string, error) {
	text, err := cat.FromBytes(data)
	if err != nil {
		logger.Error("Error extracting content from doc")
		return "", faults.Wrap(faults.Extraction, "failed to extract document", err)
	}
	return text, nil
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", faults.New(faults.Extraction, "document is not valid UTF-8 text")
	}
	return string(data), nil
}

// protectExtract guards against pathological pages that hang the parser.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		logger.Error("pageExtract", "timeout")
		return "", errors.New("timeout")
	}
}
