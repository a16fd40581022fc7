package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"

	"github.com/jonathan/candidate-screener/internal/types"
)

// MaxFileSize is the default per-file upload limit (10 MiB).
const MaxFileSize int64 = 10 << 20

// Extractor turns one uploaded file into plain text.
type Extractor interface {
	Extract(ctx context.Context, fileName string, r io.Reader) (string, error)
}

type format int

const (
	formatText format = iota
	formatHTML
	formatDocument
)

var formats = map[string]format{
	".txt":  formatText,
	".md":   formatText,
	".html": formatHTML,
	".htm":  formatHTML,
	".pdf":  formatDocument,
	".doc":  formatDocument,
	".docx": formatDocument,
	".rtf":  formatDocument,
	".odt":  formatDocument,
}

// SupportedExtensions lists the file extensions FileExtractor accepts.
func SupportedExtensions() []string {
	out := make([]string, 0, len(formats))
	for ext := range formats {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IsSupported reports whether fileName has a supported extension.
func IsSupported(fileName string) bool {
	_, ok := formats[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// FileExtractor picks a converter by file extension: plain text is read as
// is, HTML goes through goquery and office/PDF formats through docconv.
type FileExtractor struct {
	// MaxBytes caps the file size; zero means MaxFileSize.
	MaxBytes int64
}

// NewFileExtractor returns a FileExtractor with the given limit.
func NewFileExtractor(maxBytes int64) *FileExtractor {
	return &FileExtractor{MaxBytes: maxBytes}
}

func (e *FileExtractor) limit() int64 {
	if e == nil || e.MaxBytes <= 0 {
		return MaxFileSize
	}
	return e.MaxBytes
}

// Extract reads r and returns its cleaned text. Errors are *ExtractionError
// wrapping ErrUnsupportedFileType, ErrFileTooLarge or the converter's error.
func (e *FileExtractor) Extract(ctx context.Context, fileName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	kind, ok := formats[ext]
	if !ok {
		return "", &ExtractionError{FileName: fileName, Message: fmt.Sprintf("extension %q", ext), Cause: ErrUnsupportedFileType}
	}

	data, err := readLimited(r, e.limit())
	if err != nil {
		return "", &ExtractionError{FileName: fileName, Message: "failed to read file", Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var text string
	switch kind {
	case formatText:
		text = string(data)
		if !utf8.Valid(data) {
			text = strings.ToValidUTF8(text, " ")
		}
	case formatHTML:
		text, err = HTMLText(bytes.NewReader(data))
		if err != nil {
			return "", &ExtractionError{FileName: fileName, Message: "failed to parse HTML", Cause: err}
		}
	case formatDocument:
		res, err := docconv.Convert(bytes.NewReader(data), docconv.MimeTypeByExtension(fileName), true)
		if err != nil {
			return "", &ExtractionError{FileName: fileName, Message: "failed to parse document", Cause: err}
		}
		text = res.Body
	}

	text = CleanText(text)
	if text == "" {
		return "", &ExtractionError{FileName: fileName, Message: "no text found in file"}
	}
	return text, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, limit)
	}
	return data, nil
}

// Upload is one file handed to BuildDocument.
type Upload struct {
	FileName string
	Size     int64
	Body     io.Reader
	// Contact values supplied by the caller take precedence over parsed ones.
	Contact types.Contact
}

// BuildDocument extracts text from an upload and prepares a CandidateDocument.
// Extraction failures are recorded on the document rather than returned so a
// batch can carry on.
func BuildDocument(ctx context.Context, ex Extractor, up Upload) types.CandidateDocument {
	doc := types.CandidateDocument{
		SourceFileName:      up.FileName,
		SourceFileSizeBytes: up.Size,
	}

	text, err := ex.Extract(ctx, up.FileName, up.Body)
	if err != nil {
		doc.ExtractionErr = err
		doc.Contact = mergeContact(types.Contact{}, up.Contact, up.FileName)
		return doc
	}

	doc.ExtractedText = text
	doc.Contact = mergeContact(ParseContact(text), up.Contact, up.FileName)
	return doc
}

func mergeContact(parsed, supplied types.Contact, fileName string) types.Contact {
	out := parsed
	if s := strings.TrimSpace(supplied.Name); s != "" {
		out.Name = s
	}
	if s := strings.TrimSpace(supplied.Email); s != "" {
		out.Email = s
	}
	if s := strings.TrimSpace(supplied.Phone); s != "" {
		out.Phone = s
	}
	if s := strings.TrimSpace(supplied.Experience); s != "" {
		out.Experience = s
	}
	if out.Name == "" {
		out.Name = NameFromFileName(fileName)
	}
	return out
}

// NameFromFileName derives a display name from a file name:
// "jane_doe-resume.pdf" becomes "jane doe resume".
func NameFromFileName(fileName string) string {
	base := filepath.Base(fileName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || r == '.' {
			return ' '
		}
		return r
	}, stem)
	return strings.Join(strings.Fields(stem), " ")
}
