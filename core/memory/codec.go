package memory

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	keyColumn   = "KEY"
	valueColumn = "VALUE"
)

// decodeError marks table contents that could not be decoded or parsed.
// The store degrades such tables to empty instead of failing the run.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decoding memory table: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// readTableFile reads a two-column memory table file. The file may be in any
// of the legacy encodings older tooling produced (UTF-8 with or without BOM,
// UTF-16 either endianness, Windows-1250/1252, ISO-8859-1/2).
func readTableFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	text, err := decodeTableBytes(raw)
	if err != nil {
		return nil, &decodeError{err: err}
	}

	entries, err := parseTableCSV(text)
	if err != nil {
		return nil, &decodeError{err: err}
	}
	return entries, nil
}

// decodeTableBytes converts raw file bytes into a UTF-8 string.
func decodeTableBytes(raw []byte) (string, error) {
	// UTF-16 byte-order marks take precedence.
	if len(raw) >= 2 && (raw[0] == 0xFE && raw[1] == 0xFF || raw[0] == 0xFF && raw[1] == 0xFE) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return "", fmt.Errorf("utf-16: %w", err)
		}
		return string(out), nil
	}

	// UTF-8, with or without BOM.
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	// BOM-less UTF-16 files are full of NUL bytes; anything else is assumed
	// to be a single-byte legacy codepage, Windows-1250 first since the
	// historical tables are central-European.
	if bytes.IndexByte(raw, 0x00) >= 0 {
		endianness := unicode.LittleEndian
		if len(raw) >= 2 && raw[0] == 0x00 {
			endianness = unicode.BigEndian
		}
		dec := unicode.UTF16(endianness, unicode.IgnoreBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return "", fmt.Errorf("utf-16 without bom: %w", err)
		}
		return string(out), nil
	}

	for _, cm := range []*charmap.Charmap{
		charmap.Windows1250,
		charmap.Windows1252,
		charmap.ISO8859_2,
		charmap.ISO8859_1,
	} {
		out, _, err := transform.Bytes(cm.NewDecoder(), raw)
		if err == nil && utf8.Valid(out) {
			return string(out), nil
		}
	}
	return "", fmt.Errorf("no supported encoding matched")
}

func parseTableCSV(text string) (map[string]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	entries := make(map[string]string)
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("row has %d columns, want 2", len(record))
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(record[0]), keyColumn) {
				continue
			}
		}
		key := record[0]
		if key == "" {
			continue
		}
		// Keys are unique within a table; the first occurrence wins.
		if _, ok := entries[key]; !ok {
			entries[key] = record[1]
		}
	}
	return entries, nil
}

// writeTableFile persists a table in the canonical encoding (UTF-8). The
// previous version is first copied to a timestamped backup, then the new
// contents are written to a temporary file and atomically renamed into place.
func writeTableFile(path string, entries []Entry) error {
	if _, err := os.Stat(path); err == nil {
		backup := fmt.Sprintf("%s.%s.csv_old", path, time.Now().Format("2006-01-02_15-04-05"))
		if err := copyFile(path, backup); err != nil {
			return fmt.Errorf("backing up: %w", err)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{keyColumn, valueColumn}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Key, e.Value}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
