package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileType is the source format of an uploaded dataset.
type FileType string

const (
	FileTypeCSV   FileType = "csv"
	FileTypeExcel FileType = "excel"
)

// FileTypeForExtension maps a filename extension (with or without the
// leading dot) to a file type.
func FileTypeForExtension(ext string) (FileType, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "csv", "txt", "tsv":
		return FileTypeCSV, nil
	case "xlsx", "xls":
		return FileTypeExcel, nil
	default:
		return "", ErrValidation("unsupported file extension %q: expected csv, txt, tsv, xlsx, or xls", ext)
	}
}

// NewDatasetID returns a fresh dataset identifier.
func NewDatasetID() string {
	return "dataset_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Dataset is the metadata record for one uploaded file. RowCount and
// ColumnCount are nil until the file is first loaded.
type Dataset struct {
	ID               string     `json:"id"`
	OriginalFilename string     `json:"original_filename"`
	FileType         FileType   `json:"file_type"`
	Delimiter        string     `json:"delimiter,omitempty"`
	SizeBytes        int64      `json:"size_bytes"`
	ContentType      string     `json:"content_type"`
	StorageKey       string     `json:"-"`
	RowCount         *int64     `json:"row_count,omitempty"`
	ColumnCount      *int64     `json:"column_count,omitempty"`
	UploadedAt       time.Time  `json:"uploaded_at"`
	AnalyzedAt       *time.Time `json:"analyzed_at,omitempty"`
}

// ColumnSummary describes one column for the understanding endpoint.
type ColumnSummary struct {
	Name         string   `json:"name"`
	DataType     string   `json:"dataType"`
	Description  string   `json:"description"`
	SampleValues []string `json:"sampleValues"`
	MissingCount int      `json:"missingCount"`
	UniqueCount  int      `json:"uniqueCount"`
}

// DatasetUnderstanding is the profile returned for one dataset.
type DatasetUnderstanding struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	RowCount     int             `json:"rowCount"`
	ColumnCount  int             `json:"columnCount"`
	Observations []string        `json:"observations"`
	Columns      []ColumnSummary `json:"columns"`
}
