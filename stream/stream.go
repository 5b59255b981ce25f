// Package stream reads measurement vectors written one literal per line.
package stream

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/leoorshansky/KalmanFilterExample/literal"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Scanner reads measurements from a text stream.
// Blank lines and lines starting with # are skipped.
type Scanner struct {
	s    *bufio.Scanner
	z    *mat.VecDense
	line int
	err  error
}

// NewScanner returns new Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{s: bufio.NewScanner(r)}
}

// Scan advances to the next measurement. It returns false when the stream is
// exhausted or a line fails to parse; Err reports which.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	for s.s.Scan() {
		s.line++

		text := strings.TrimSpace(s.s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		a, err := literal.Parse(text)
		if err != nil {
			s.err = errors.Wrapf(err, "line %d", s.line)
			return false
		}
		s.z = a.Vector()

		return true
	}
	s.err = s.s.Err()

	return false
}

// Measurement returns the most recently scanned measurement.
func (s *Scanner) Measurement() mat.Vector {
	return s.z
}

// Line returns the line number of the most recently scanned measurement.
func (s *Scanner) Line() int {
	return s.line
}

// Err returns the first non-EOF error encountered by the Scanner.
func (s *Scanner) Err() error {
	return s.err
}

// Read returns all measurements in r.
func Read(r io.Reader) ([]mat.Vector, error) {
	var zs []mat.Vector

	s := NewScanner(r)
	for s.Scan() {
		zs = append(zs, s.Measurement())
	}

	if err := s.Err(); err != nil {
		return nil, err
	}

	return zs, nil
}

// ReadFile returns all measurements in the file at path.
func ReadFile(path string) ([]mat.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open data file")
	}
	defer f.Close()

	zs, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	return zs, nil
}
