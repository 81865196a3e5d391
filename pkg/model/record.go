package model

import "time"

// NoMember marks a record that carries no ensemble member field. It is kept
// distinct from 0, which is the control run.
const NoMember = -1

// Record describes one message inside a remote archive file. Records are
// immutable once parsed; Valid is always recomputed from Init and Step,
// never trusted from upstream.
type Record struct {
	// Path is the data-file identifier relative to the base URL.
	Path string `json:"path"`

	// Offset and Length delimit the message's byte range inside Path.
	Offset int64 `json:"offset"`
	Length int64 `json:"length"`

	// Param is the short parameter code.
	Param string `json:"param"`

	// Init is the initialization timestamp.
	Init time.Time `json:"init"`

	// Step is the lead time in hours.
	Step int `json:"step"`

	// Valid is Init + Step hours.
	Valid time.Time `json:"valid"`

	// Number is the ensemble member, 0 for the control run and NoMember
	// when the index carried no member field for a non-control record.
	Number int `json:"number"`

	// Type is the record's type tag from the index ("cf", "pf", ...).
	Type string `json:"type,omitempty"`

	// Level and Levtype identify the vertical level for pressure-level
	// data. Empty means the index carried no level fields.
	Level   string `json:"level,omitempty"`
	Levtype string `json:"levtype,omitempty"`
}

// ComputeValid recomputes Valid from Init and Step.
func (r *Record) ComputeValid() {
	r.Valid = r.Init.Add(time.Duration(r.Step) * time.Hour)
}
