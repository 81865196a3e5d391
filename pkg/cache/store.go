// Package cache persists parsed index record sets on disk so repeated
// operations against an unchanged remote index need no network access.
//
// Entries are content-addressed by the index identifier's SHA-256 plus the
// cache format version, so concurrent writers of the same entry are
// idempotent and last-writer-wins needs no locking.
package cache

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	goversion "github.com/hashicorp/go-version"
	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/zstd"

	"github.com/openclimdata/subgrib/internal/logger"
	"github.com/openclimdata/subgrib/pkg/errors"
	"github.com/openclimdata/subgrib/pkg/fsutil"
	"github.com/openclimdata/subgrib/pkg/model"
)

// FormatVersion tags the on-disk entry layout. Bump the major on
// incompatible record changes; entries written by another major are refetched.
const FormatVersion = "1.0.0"

const indexSubdir = "indexes"

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// entryHeader is the first line of every cache entry.
type entryHeader struct {
	FormatVersion string `json:"format_version"`
	Identifier    string `json:"identifier"`
	Records       int    `json:"records"`
}

// Store reads and writes per-identifier record sets.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.ErrCacheDirectory
	}
	return &Store{dir: dir}, nil
}

// Dir returns the cache root directory.
func (s *Store) Dir() string { return s.dir }

// EntryPath returns the on-disk location for an identifier's record set.
func (s *Store) EntryPath(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	name := fmt.Sprintf("%s-%s.jsonl.zst", hex.EncodeToString(sum[:]), FormatVersion)
	return filepath.Join(s.dir, indexSubdir, name)
}

// Load returns the cached record set for identifier, or ok=false when no
// usable entry exists. Unreadable or incompatible entries are treated as
// a miss, not an error: the caller refetches and overwrites.
func (s *Store) Load(identifier string) (records []model.Record, ok bool) {
	path := s.EntryPath(identifier)
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer dec.Close()

	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		return nil, false
	}
	var header entryHeader
	if err := jsonCodec.Unmarshal(scanner.Bytes(), &header); err != nil {
		logger.Debug("discarding unreadable cache entry", logger.Fields{"path": path})
		return nil, false
	}
	if !compatibleVersion(header.FormatVersion) {
		logger.Debug("discarding cache entry with incompatible format version", logger.Fields{
			"path":    path,
			"version": header.FormatVersion,
		})
		return nil, false
	}

	records = make([]model.Record, 0, header.Records)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec model.Record
		if err := jsonCodec.Unmarshal(line, &rec); err != nil {
			return nil, false
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, false
	}
	return records, true
}

// Save persists a record set for identifier. The entry is written to a
// temporary file and renamed so readers never observe a partial entry.
func (s *Store) Save(identifier string, records []model.Record) error {
	path := s.EntryPath(identifier)
	if err := fsutil.EnsureDir(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "failed to create cache directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create cache temp file")
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to create cache encoder")
	}

	jw := jsonCodec.NewEncoder(enc)
	header := entryHeader{FormatVersion: FormatVersion, Identifier: identifier, Records: len(records)}
	if err := jw.Encode(header); err != nil {
		_ = enc.Close()
		_ = tmp.Close()
		return errors.Wrap(err, "failed to write cache header")
	}
	for i := range records {
		if err := jw.Encode(records[i]); err != nil {
			_ = enc.Close()
			_ = tmp.Close()
			return errors.Wrap(err, "failed to write cache record")
		}
	}

	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to flush cache entry")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close cache entry")
	}
	return fsutil.Move(tmpPath, path)
}

func compatibleVersion(v string) bool {
	entry, err := goversion.NewVersion(v)
	if err != nil {
		return false
	}
	supported := goversion.Must(goversion.NewVersion(FormatVersion))
	return entry.Segments()[0] == supported.Segments()[0]
}
