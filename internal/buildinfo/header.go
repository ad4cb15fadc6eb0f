package buildinfo

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Macro names written to and read from the metadata header.
const (
	KeyMinor       = "BUILD_NUMBER_MINOR"
	KeyMajor       = "BUILD_NUMBER_MAJOR"
	KeyBreaking    = "BUILD_NUMBER_BREAKING"
	KeyVersion     = "BUILD_VERSION"
	KeyDate        = "BUILD_DATE"
	KeyTime        = "BUILD_TIME"
	KeyType        = "BUILD_TYPE"
	KeyDebug       = "BUILD_DEBUG"
	KeyGitHash     = "BUILD_GIT_HASH"
	KeyGitBranch   = "BUILD_GIT_BRANCH"
	KeyMachineName = "BUILD_MACHINE_NAME"
)

const defineDirective = "#define"

// Encode writes r as a header of preprocessor definitions.
func Encode(w io.Writer, r Record) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "#pragma once")
	fmt.Fprintf(bw, "%s %s %d\n", defineDirective, KeyMinor, r.Minor)
	fmt.Fprintf(bw, "%s %s %d\n", defineDirective, KeyMajor, r.Major)
	fmt.Fprintf(bw, "%s %s %d\n", defineDirective, KeyBreaking, r.Breaking)
	writeString(bw, KeyVersion, r.Version())
	writeString(bw, KeyDate, r.Date)
	writeString(bw, KeyTime, r.Time)
	writeString(bw, KeyType, string(r.Type))
	if r.IsDebug() {
		fmt.Fprintf(bw, "%s %s 1\n", defineDirective, KeyDebug)
	}
	writeString(bw, KeyGitHash, r.GitHash)
	writeString(bw, KeyGitBranch, r.GitBranch)
	writeString(bw, KeyMachineName, r.MachineName)

	return bw.Flush()
}

func writeString(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s %s\n", defineDirective, key, quoteC(value))
}

// Definitions reads every #define in the header, keyed by macro name.
// String values are returned unquoted. Lines that are not definitions
// are ignored; a later definition of the same macro wins.
func Definitions(r io.Reader) (map[string]Definition, error) {
	defs := make(map[string]Definition)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, defineDirective) {
			continue
		}

		rest := line[len(defineDirective):]
		if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		rest = strings.TrimSpace(rest)

		key, raw := rest, ""
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			key, raw = rest[:i], strings.TrimSpace(rest[i+1:])
		}
		if key == "" {
			continue
		}

		defs[key] = Definition{Line: lineNo, Raw: raw, Value: unquoteC(raw)}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata header: %w", err)
	}

	return defs, nil
}

// Definition is a single #define parsed from the header.
type Definition struct {
	Line  int
	Raw   string // Value as written, including quotes
	Value string // Value with surrounding quotes stripped and escapes undone
}

// Decode reads a record from a metadata header.
// empty is true when the header defines none of the build counters,
// which callers treat the same as a missing file. A header with major
// or breaking counters but no minor counter is a ParseError. Text
// fields that are absent are Unknown.
func Decode(r io.Reader) (rec Record, empty bool, err error) {
	defs, err := Definitions(r)
	if err != nil {
		return Record{}, false, err
	}

	rec = Initial()
	_, hasMinor := defs[KeyMinor]
	_, hasMajor := defs[KeyMajor]
	_, hasBreaking := defs[KeyBreaking]
	if !hasMinor && !hasMajor && !hasBreaking {
		return rec, true, nil
	}
	if !hasMinor {
		return Record{}, false, &ParseError{Key: KeyMinor, Err: ErrMissingCounter}
	}

	if rec.Minor, err = counter(defs, KeyMinor, rec.Minor); err != nil {
		return Record{}, false, err
	}
	if rec.Major, err = counter(defs, KeyMajor, rec.Major); err != nil {
		return Record{}, false, err
	}
	if rec.Breaking, err = counter(defs, KeyBreaking, rec.Breaking); err != nil {
		return Record{}, false, err
	}

	rec.Date = text(defs, KeyDate)
	rec.Time = text(defs, KeyTime)
	rec.Type = ParseBuildType(text(defs, KeyType))
	rec.GitHash = text(defs, KeyGitHash)
	rec.GitBranch = text(defs, KeyGitBranch)
	rec.MachineName = text(defs, KeyMachineName)

	return rec, false, nil
}

func counter(defs map[string]Definition, key string, fallback uint) (uint, error) {
	def, ok := defs[key]
	if !ok {
		return fallback, nil
	}
	n, err := strconv.ParseUint(def.Value, 10, 32)
	if err != nil {
		return 0, &ParseError{Line: def.Line, Key: key, Value: def.Raw, Err: err}
	}
	return uint(n), nil
}

func text(defs map[string]Definition, key string) string {
	def, ok := defs[key]
	if !ok || def.Value == "" {
		return Unknown
	}
	return def.Value
}

// quoteC renders s as a C string literal.
func quoteC(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// unquoteC strips the quotes of a C string literal. Values that are not
// quoted are returned as-is.
func unquoteC(raw string) string {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return strings.Trim(raw, `"`)
	}

	inner := raw[1 : len(raw)-1]
	if !strings.Contains(inner, `\`) {
		return inner
	}

	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' || i+1 == len(inner) {
			b.WriteByte(c)
			continue
		}
		i++
		switch inner[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(inner[i])
		}
	}
	return b.String()
}
