// Package testutil builds synthetic archives for integration tests: data
// files together with the index files that describe them, served over HTTP
// with byte-range support.
package testutil

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Field describes one synthetic archive field. Payload becomes the field's
// bytes in the data file; the index line is derived from the remaining
// attributes.
type Field struct {
	Param   string
	Date    string // yyyymmdd
	Time    string // HHMM
	Step    string // lead hours, may be a "from-to" range
	Type    string // fc, cf, pf, an, ...
	Number  string // ensemble member, empty for non-ensemble fields
	Levtype string
	Level   string // levelist value, empty for surface fields
	Payload []byte
}

// Archive accumulates synthetic data files under a root directory.
type Archive struct {
	Root string
}

// NewArchive creates an archive rooted in a fresh temporary directory.
func NewArchive(t *testing.T) *Archive {
	t.Helper()
	return &Archive{Root: t.TempDir()}
}

// AddDataset writes one data file at relPath plus its index file. Fields are
// concatenated in order; offsets in the index follow from the payload sizes.
func (a *Archive) AddDataset(t *testing.T, relPath string, fields []Field) {
	t.Helper()

	dataPath := filepath.Join(a.Root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		t.Fatalf("creating dataset directory: %v", err)
	}

	var data bytes.Buffer
	var index strings.Builder
	offset := int64(0)
	for _, f := range fields {
		index.WriteString(indexLine(f, offset))
		data.Write(f.Payload)
		offset += int64(len(f.Payload))
	}

	if err := os.WriteFile(dataPath, data.Bytes(), 0o644); err != nil {
		t.Fatalf("writing data file: %v", err)
	}
	if err := os.WriteFile(dataPath+".index", []byte(index.String()), 0o644); err != nil {
		t.Fatalf("writing index file: %v", err)
	}
}

// Serve exposes the archive over HTTP. http.FileServer handles Range
// requests, which is what the client under test relies on.
func (a *Archive) Serve(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.FileServer(http.Dir(a.Root)))
	t.Cleanup(server.Close)
	return server
}

func indexLine(f Field, offset int64) string {
	var sb strings.Builder
	sb.WriteString("{")
	writeField(&sb, "date", f.Date)
	writeField(&sb, "time", f.Time)
	writeField(&sb, "step", f.Step)
	writeField(&sb, "param", f.Param)
	writeField(&sb, "type", f.Type)
	writeField(&sb, "number", f.Number)
	writeField(&sb, "levtype", f.Levtype)
	writeField(&sb, "levelist", f.Level)
	fmt.Fprintf(&sb, "\"_offset\": %d, \"_length\": %d}\n", offset, len(f.Payload))
	return sb.String()
}

func writeField(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "%q: %q, ", name, value)
}
