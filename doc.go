package datskema

// Package datskema reads version-dependent binary game-data records whose
// layout is data, not code.
//
// - A Schema is an ordered, possibly version-conditional list of Entries; each
//   Entry pairs an access mode and a logical storage type with a Field
//   descriptor (number, string, enum, group, include, subdata, dispatch,
//   sentinel).
// - Read walks a Schema over a byte buffer and returns the populated Record
//   plus a Value tree that can be diffed without the Schema (Diff).
// - Digest fingerprints a Schema's shape so cached records can be invalidated.
// - Errors are Issues (JSON Pointer into the record, byte offset, code).
//
// Design policy:
// - Keep only public APIs in the root package; wire decoding lives in internal/wire.
// - Table export lives in table/, code generation in codegen/, the snapshot
//   cache in cache/ and the CLI under cmd/datskema.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  end, rec, val, err := datskema.Read(gamedata.EmpiresDat, buf, 0, datskema.ReadOpt{Version: v})
//  defs, row, err := table.Dump(rec, gamedata.EmpiresDat, v, "empiresdat")
//  sum, err := datskema.DigestHex(gamedata.EmpiresDat, v)
