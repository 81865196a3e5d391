package download

import (
	"bufio"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/openclimdata/subgrib/pkg/errors"
	"github.com/openclimdata/subgrib/pkg/fsutil"
	"github.com/openclimdata/subgrib/pkg/model"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// SidecarSuffix is appended to an artifact path to name its sidecar.
const SidecarSuffix = ".meta"

// Sidecar is the metadata written next to every artifact: the exact record
// set the artifact was assembled from, in artifact byte order, plus the
// requested bounding box when one was given. Downstream tooling reads it
// instead of re-deriving an index from the binary artifact.
type Sidecar struct {
	// Area is carried for downstream extraction tools; nothing here
	// interprets it.
	Area    *model.Area
	Records []model.Record
}

// sidecarHeader is the first line of a sidecar file.
type sidecarHeader struct {
	Area    *model.Area `json:"area,omitempty"`
	Records int         `json:"records"`
}

// SidecarPath returns the sidecar location for an artifact.
func SidecarPath(artifact string) string {
	return artifact + SidecarSuffix
}

// WriteSidecar persists a sidecar: one JSON header line, then one JSON
// record per line.
func WriteSidecar(path string, sc Sidecar) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(err, "failed to create sidecar")
	}

	enc := jsonCodec.NewEncoder(f)
	if err := enc.Encode(sidecarHeader{Area: sc.Area, Records: len(sc.Records)}); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "failed to write sidecar header")
	}
	for i := range sc.Records {
		if err := enc.Encode(sc.Records[i]); err != nil {
			_ = f.Close()
			return errors.Wrap(err, "failed to write sidecar record")
		}
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to close sidecar")
	}
	return nil
}

// ReadSidecar loads a sidecar written by WriteSidecar.
func ReadSidecar(path string) (Sidecar, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sidecar{}, errors.Wrap(err, "failed to open sidecar")
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var sc Sidecar
	sawHeader := false
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !sawHeader {
			var header sidecarHeader
			if err := jsonCodec.Unmarshal(line, &header); err != nil {
				return Sidecar{}, errors.Wrap(err, "failed to parse sidecar header")
			}
			sc.Area = header.Area
			sawHeader = true
			continue
		}
		var rec model.Record
		if err := jsonCodec.Unmarshal(line, &rec); err != nil {
			return Sidecar{}, errors.Wrap(err, "failed to parse sidecar record")
		}
		sc.Records = append(sc.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return Sidecar{}, errors.Wrap(err, "failed to read sidecar")
	}
	if !sawHeader {
		return Sidecar{}, errors.Wrap(errors.ErrSidecar, "missing header line")
	}
	return sc, nil
}
