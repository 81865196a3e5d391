// Package inventory resolves remote index files into a unified record set
// and filters it against a selection request.
package inventory

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/openclimdata/subgrib/pkg/errors"
	"github.com/openclimdata/subgrib/pkg/model"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

const maxLineSize = 1024 * 1024

// flexString accepts both JSON strings and bare JSON numbers; index files
// from different dates are not consistent about quoting.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := jsonCodec.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(bytes.TrimSpace(b))
	return nil
}

// rawRecord is one index line as it appears on the wire. Index files are
// heterogeneous: surface files carry no level fields, control files may
// carry no number field. Absent fields stay empty rather than zero.
//
// The byte range fields arrive with a leading underscore; mapping them to
// Offset/Length is where that artifact is stripped.
type rawRecord struct {
	Date     flexString `json:"date"`
	Time     flexString `json:"time"`
	Step     flexString `json:"step"`
	Param    string     `json:"param"`
	Type     string     `json:"type"`
	Number   flexString `json:"number"`
	Levtype  string     `json:"levtype"`
	Levelist flexString `json:"levelist"`
	Offset   int64      `json:"_offset"`
	Length   int64      `json:"_length"`
}

// ParseIndex parses the newline-delimited body of one index file. Every
// record is attributed to dataPath, the data file the index describes.
func ParseIndex(body []byte, dataPath string) ([]model.Record, error) {
	var records []model.Record

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw rawRecord
		if err := jsonCodec.Unmarshal(line, &raw); err != nil {
			return nil, errors.Wrapf(err, "%s: bad index line %d", dataPath, lineNo)
		}

		rec, err := normalize(raw, dataPath)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: bad index line %d", dataPath, lineNo)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s: reading index", dataPath)
	}
	return records, nil
}

// normalize turns a raw index line into a Record: the initialization time is
// derived from the raw date and time fields, the step from the trailing
// integer of the step expression, the member defaults to 0 for control-run
// records, and the valid time is always recomputed.
func normalize(raw rawRecord, dataPath string) (model.Record, error) {
	init, err := parseInit(string(raw.Date), string(raw.Time))
	if err != nil {
		return model.Record{}, err
	}

	step, err := parseStep(string(raw.Step))
	if err != nil {
		return model.Record{}, err
	}

	number := model.NoMember
	switch {
	case raw.Number != "":
		number, err = strconv.Atoi(string(raw.Number))
		if err != nil {
			return model.Record{}, fmt.Errorf("invalid member number %q", raw.Number)
		}
	case raw.Type == "cf":
		// Control-run records carry no member field; the control run is
		// member 0.
		number = 0
	}

	rec := model.Record{
		Path:    dataPath,
		Offset:  raw.Offset,
		Length:  raw.Length,
		Param:   raw.Param,
		Init:    init,
		Step:    step,
		Number:  number,
		Type:    raw.Type,
		Level:   string(raw.Levelist),
		Levtype: raw.Levtype,
	}
	rec.ComputeValid()
	return rec, nil
}

func parseInit(date, timeOfDay string) (time.Time, error) {
	date = strings.ReplaceAll(date, "-", "")
	base, err := time.Parse("20060102", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}

	if timeOfDay == "" {
		return base, nil
	}
	// The time field is HHMM, written with or without leading zeros
	// ("0", "600", "1200").
	v, err := strconv.Atoi(timeOfDay)
	if err != nil || v < 0 || v > 2359 {
		return time.Time{}, fmt.Errorf("invalid time %q", timeOfDay)
	}
	return base.Add(time.Duration(v/100)*time.Hour + time.Duration(v%100)*time.Minute), nil
}

// parseStep extracts the trailing run of digits from a step expression.
// Both bare integers ("24") and range expressions ("24-48") occur; for a
// range the record describes the accumulation ending at the second bound.
func parseStep(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	end := len(s)
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, fmt.Errorf("invalid step %q", s)
	}
	return strconv.Atoi(s[start:end])
}
