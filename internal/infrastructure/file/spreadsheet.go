package file

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrTooManyRows       = errors.New("file has too many rows")
	ErrMissingHeader     = errors.New("spreadsheet has no header row")
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ReadRows turns a batch file of any supported format into raw JSON rows.
func ReadRows(r io.Reader, format Format, maxRows int) ([]json.RawMessage, error) {
	switch format {
	case FormatJSON:
		return ReadJSONRows(r, maxRows)
	case FormatCSV:
		return ReadCSVRows(r, maxRows)
	case FormatXLSX:
		return ReadXLSXRows(r, maxRows)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// headerAliases maps normalized spreadsheet headers to row keys.
var headerAliases = map[string]string{
	"name":               "name",
	"nome":               "name",
	"razao social":       "name",
	"city":               "city",
	"cidade":             "city",
	"municipio":          "city",
	"state":              "state",
	"estado":             "state",
	"uf":                 "state",
	"document":           "document",
	"documento":          "document",
	"cpf":                "document",
	"cnpj":               "document",
	"cpf/cnpj":           "document",
	"cpf_cnpj":           "document",
	"action":             "action",
	"acao":               "action",
	"ownerid":            "ownerId",
	"owner_id":           "ownerId",
	"existingclientid":   "existingClientId",
	"existing_client_id": "existingClientId",
}

func headerKey(header string) string {
	normalized := domain.NormalizeText(header)
	if key, ok := headerAliases[normalized]; ok {
		return key
	}
	return strings.TrimSpace(header)
}

// ReadCSVRows reads a comma or semicolon separated file whose first line is the header.
func ReadCSVRows(r io.Reader, maxRows int) ([]json.RawMessage, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.Comma = sniffDelimiter(content)

	var records []sheetLine
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, sheetLine{number: line, cells: record})
	}
	return tableToRows(records, maxRows)
}

// ReadXLSXRows reads the first sheet of a workbook.
func ReadXLSXRows(r io.Reader, maxRows int) ([]json.RawMessage, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingHeader
	}

	cells, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	records := make([]sheetLine, 0, len(cells))
	for i, row := range cells {
		records = append(records, sheetLine{number: i + 1, cells: row})
	}
	return tableToRows(records, maxRows)
}

type sheetLine struct {
	number int
	cells  []string
}

// tableToRows keys every data line by the header and stamps its line number in the
// file as rowNumber. Blank lines are dropped.
func tableToRows(records []sheetLine, maxRows int) ([]json.RawMessage, error) {
	if len(records) == 0 || blank(records[0].cells) {
		return nil, ErrMissingHeader
	}

	header := make([]string, len(records[0].cells))
	for i, h := range records[0].cells {
		header[i] = headerKey(h)
	}

	rows := make([]json.RawMessage, 0, len(records)-1)
	for _, record := range records[1:] {
		if blank(record.cells) {
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, fmt.Errorf("%w: more than %d rows", ErrTooManyRows, maxRows)
		}

		row := make(map[string]any, len(header)+1)
		for col, key := range header {
			if key == "" || col >= len(record.cells) {
				continue
			}
			value := strings.TrimSpace(record.cells[col])
			if value == "" {
				continue
			}
			row[key] = value
		}
		row["rowNumber"] = record.number

		raw, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", record.number, err)
		}
		rows = append(rows, raw)
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func sniffDelimiter(content []byte) rune {
	firstLine := content
	if i := bytes.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		return ';'
	}
	return ','
}
