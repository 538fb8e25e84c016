// Package mgf provides a streaming reader for Mascot Generic Format (MGF)
// peak lists. Only the fields the scoring pipeline needs are parsed: peaks,
// precursor m/z, charge, and title.
package mgf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/specscore/specscore/pkg/core"
)

// Reader provides streaming access to MGF files.
type Reader struct {
	scanner     *bufio.Scanner
	lineNum     int
	currentSpec *core.Spectrum
	err         error
	sourceFile  string
}

// NewReader creates a new MGF reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next advances to the next spectrum. Returns false when no more spectra or
// on error.
func (r *Reader) Next() bool {
	r.currentSpec = nil

	spec, err := r.readSpectrum()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentSpec = spec
	return true
}

// Spectrum returns the current spectrum.
func (r *Reader) Spectrum() *core.Spectrum {
	return r.currentSpec
}

// Err returns any error encountered during reading.
func (r *Reader) Err() error {
	return r.err
}

// readSpectrum reads a single BEGIN IONS / END IONS block.
func (r *Reader) readSpectrum() (*core.Spectrum, error) {
	inBlock := false
	spec := &core.Spectrum{SourceFile: r.sourceFile}

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !inBlock {
			if line == "BEGIN IONS" {
				inBlock = true
			}
			// Header lines outside blocks (global parameters) are ignored.
			continue
		}

		if line == "END IONS" {
			if spec.PrecursorMZ <= 0 {
				return nil, fmt.Errorf("line %d: spectrum block missing PEPMASS", r.lineNum)
			}
			if !spec.IsSorted() {
				spec.Sort()
			}
			return spec, nil
		}

		if idx := strings.Index(line, "="); idx > 0 && !isPeakLine(line) {
			if err := r.parseParam(spec, line[:idx], line[idx+1:]); err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
			continue
		}

		mz, inten, err := parsePeak(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
		}
		spec.MZ = append(spec.MZ, mz)
		spec.Intensity = append(spec.Intensity, inten)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if inBlock {
		return nil, fmt.Errorf("line %d: unterminated spectrum block", r.lineNum)
	}

	return nil, io.EOF
}

// isPeakLine reports whether a line starts with a numeric field. Parameter
// lines start with a key, peak lines with an m/z value.
func isPeakLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(fields[0], 64)
	return err == nil
}

// parseParam handles one KEY=value line inside a block.
func (r *Reader) parseParam(spec *core.Spectrum, key, value string) error {
	switch strings.ToUpper(strings.TrimSpace(key)) {
	case "PEPMASS":
		// PEPMASS may carry "mz intensity"; only the m/z is meaningful.
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return fmt.Errorf("empty PEPMASS")
		}
		mz, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fmt.Errorf("invalid PEPMASS %q: %w", fields[0], err)
		}
		spec.PrecursorMZ = mz

	case "TITLE":
		spec.ID = strings.TrimSpace(value)

	case "CHARGE":
		charge, err := parseCharge(value)
		if err != nil {
			return err
		}
		spec.Charge = charge

		// RTINSECONDS, SCANS, and other parameters are not needed for scoring.
	}

	return nil
}

// parseCharge parses MGF charge notation such as "2+", "3-", or "2".
func parseCharge(value string) (int, error) {
	value = strings.TrimSpace(value)
	sign := 1
	if strings.HasSuffix(value, "+") {
		value = strings.TrimSuffix(value, "+")
	} else if strings.HasSuffix(value, "-") {
		sign = -1
		value = strings.TrimSuffix(value, "-")
	}
	charge, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid CHARGE %q: %w", value, err)
	}
	return sign * charge, nil
}

// parsePeak parses a peak line (format: "mz intensity [charge]").
func parsePeak(line string) (mz, inten float64, err error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("invalid peak format, expected at least 2 fields")
	}

	mz, err = strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid m/z value: %w", err)
	}
	inten, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid intensity value: %w", err)
	}
	return mz, inten, nil
}

// ReadCollection drains a reader into a collection.
func ReadCollection(r io.Reader) (*core.Collection, error) {
	reader := NewReader(r)
	col := &core.Collection{}
	for reader.Next() {
		col.Append(reader.Spectrum())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return col, nil
}

// ReadFile reads every spectrum of an MGF file into a collection.
func ReadFile(path string) (*core.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	reader := NewReader(f)
	reader.sourceFile = path
	col := &core.Collection{}
	for reader.Next() {
		col.Append(reader.Spectrum())
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return col, nil
}
