// Package extract reads one input into a Dataset. A Source pairs where the
// bytes come from (a datasource.Source) with how to decode them (a
// parser.Parser); Extract runs the two and tags any failure as an
// *etlerr.ExtractionError.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/datasource"
	"tabetl/internal/datasource/file"
	"tabetl/internal/datasource/httpds"
	"tabetl/internal/etlerr"
	"tabetl/internal/parser"
	pcsv "tabetl/internal/parser/csv"
	pjson "tabetl/internal/parser/json"
	"tabetl/internal/parser/xlsx"
)

// Kind names the family of a Source.
type Kind string

const (
	KindSpreadsheet Kind = "spreadsheet"
	KindAPI         Kind = "api"
)

// Source describes one input. It is immutable once built.
type Source struct {
	Kind   Kind
	Origin datasource.Source
	Parser parser.Parser
}

// String identifies the source without credentials.
func (s Source) String() string {
	if s.Origin == nil {
		return string(s.Kind) + ":<unset>"
	}
	return s.Origin.String()
}

// Spreadsheet returns a Source for a local workbook. Paths ending in .csv are
// read as delimited text; every other extension goes through the workbook
// reader, which rejects files that are not workbooks.
func Spreadsheet(path string) Source {
	var p parser.Parser = &xlsx.Parser{}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		p = pcsv.NewParser(pcsv.Options{})
	}
	return Source{Kind: KindSpreadsheet, Origin: file.NewLocal(path), Parser: p}
}

// FlatAPI returns a Source for an endpoint answering with an array of
// objects.
func FlatAPI(client *httpds.Client, url string, cfg config.FlatRecords, headers http.Header) Source {
	return Source{
		Kind:   KindAPI,
		Origin: httpds.NewSource(client, url, headers),
		Parser: pjson.FromFlatConfig(cfg),
	}
}

// RecordAPI returns a Source for an endpoint whose objects nest item records
// under a record path.
func RecordAPI(client *httpds.Client, url string, cfg config.RecordPath, headers http.Header) Source {
	return Source{
		Kind:   KindAPI,
		Origin: httpds.NewSource(client, url, headers),
		Parser: pjson.FromRecordConfig(cfg),
	}
}

// NewHTTPClient builds the API client from the http config section.
func NewHTTPClient(cfg config.HTTP) *httpds.Client {
	return httpds.NewClient(httpds.Config{
		Timeout:     cfg.Timeout.Std(),
		MaxRetries:  cfg.MaxRetries,
		BaseHeaders: Headers(cfg.Headers),
	})
}

// Headers converts configured headers into an http.Header.
func Headers(m map[string]string) http.Header {
	if len(m) == 0 {
		return nil
	}
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

// Extract reads and decodes src. On failure the returned dataset is nil and
// the error is an *etlerr.ExtractionError naming src.
func Extract(ctx context.Context, src Source) (*dataset.Dataset, error) {
	if src.Origin == nil || src.Parser == nil {
		return nil, &etlerr.ExtractionError{Source: src.String(), Err: fmt.Errorf("source is not configured")}
	}
	b, err := datasource.ReadAll(ctx, src.Origin)
	if err != nil {
		return nil, &etlerr.ExtractionError{Source: src.String(), Err: err}
	}
	ds, err := src.Parser.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, &etlerr.ExtractionError{Source: src.String(), Err: err}
	}
	return ds, nil
}
