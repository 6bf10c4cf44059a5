package datskema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Schema definition errors: fatal at startup.
	CodeSchemaDefinition = "schema_definition"
	CodeIncludeCycle     = "include_cycle"
	CodeUnknownWireType  = "unknown_wire_type"
	CodeInvalidStorage   = "invalid_storage"
	// Decode errors: fatal for the current read.
	CodeNegativeLength       = "negative_length"
	CodeLengthUnresolved     = "length_unresolved"
	CodeOverrun              = "overrun"
	CodeNonFinite            = "non_finite"
	CodeSizeMismatch         = "size_mismatch"
	CodeUnknownEnum          = "unknown_enum"
	CodeVerifyFailed         = "verify_failed"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeMaxDepth             = "max_depth"
	// Export errors: fatal for the current dump or export pass.
	CodeMissingType      = "missing_type"
	CodeOrderingConflict = "ordering_conflict"
	CodeColumnMismatch   = "column_mismatch"
	CodeNotDumpable      = "not_dumpable"
	CodeFormatError      = "format_error"
	// Value tree diffing.
	CodeInvalidType = "invalid_type"
)

var (
	schemaCodes = map[string]struct{}{CodeSchemaDefinition: {}, CodeIncludeCycle: {}, CodeUnknownWireType: {}, CodeInvalidStorage: {}}
	decodeCodes = map[string]struct{}{
		CodeNegativeLength: {}, CodeLengthUnresolved: {}, CodeOverrun: {}, CodeNonFinite: {}, CodeSizeMismatch: {},
		CodeUnknownEnum: {}, CodeVerifyFailed: {}, CodeDiscriminatorUnknown: {}, CodeMaxDepth: {},
	}
	exportCodes = map[string]struct{}{CodeMissingType: {}, CodeOrderingConflict: {}, CodeColumnMismatch: {}, CodeNotDumpable: {}, CodeFormatError: {}}
)

// Issue represents a single schema, decode or export failure.
type Issue struct {
	Path    string // JSON Pointer into the record (for example: /units/2/name).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, valid values, etc.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input buffer (-1 when unknown).
	// Params carries structured parameters (e.g., {"raw":2, "valid":"X, Y"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. overrun at /terrains/3 (offset 0x0000012c): need 4 bytes
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Offset >= 0 {
			fmt.Fprintf(b, " (offset %#08x)", it.Offset)
		}
		if it.Hint != "" {
			b.WriteString(": ")
			b.WriteString(it.Hint)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes of all issues to errors.Is/As.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// IsSchemaError reports whether err stems from an invalid schema definition.
func IsSchemaError(err error) bool { return hasCodeIn(err, schemaCodes) }

// IsDecodeError reports whether err stems from malformed input bytes.
func IsDecodeError(err error) bool { return hasCodeIn(err, decodeCodes) }

// IsExportError reports whether err stems from dumping or code generation.
func IsExportError(err error) bool { return hasCodeIn(err, exportCodes) }

func hasCodeIn(err error, codes map[string]struct{}) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if _, hit := codes[it.Code]; hit {
			return true
		}
	}
	return false
}
