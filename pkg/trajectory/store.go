package trajectory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// Header is written at the top of every recorded file.
var Header = []string{"Timestamp", "Steering", "RPM"}

// Store loads maneuvers by name.
type Store interface {
	Load(Maneuver) (Trajectory, error)
}

// DirStore keeps one CSV file per maneuver in a directory.
type DirStore struct {
	dir string
}

// NewDirStore returns a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Path returns where the maneuver's file lives.
func (s *DirStore) Path(m Maneuver) string {
	return filepath.Join(s.dir, m.FileName())
}

// Load reads the maneuver's file.
func (s *DirStore) Load(m Maneuver) (Trajectory, error) {
	f, err := os.Open(s.Path(m))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m, err)
	}
	return t, nil
}

// Create truncates the maneuver's file for recording, creating the
// directory if needed.
func (s *DirStore) Create(m Maneuver) (*os.File, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, err
	}
	return os.Create(s.Path(m))
}

// Parse reads a trajectory in CSV form.  The first row is a header
// and is skipped, as are rows with fewer than three fields.  A value
// that is not a finite number is an error, as is a file with no points.
func Parse(r io.Reader) (Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyTrajectory
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := Trajectory{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if len(row) < 3 {
			continue
		}

		line, _ := cr.FieldPos(0)
		var vals [3]float64
		for i := range vals {
			vals[i], err = strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			if math.IsNaN(vals[i]) || math.IsInf(vals[i], 0) {
				return nil, fmt.Errorf("%w: line %d: %q is not finite", ErrMalformed, line, row[i])
			}
		}
		out = append(out, Point{Time: vals[0], Steering: vals[1], Speed: vals[2]})
	}

	if len(out) == 0 {
		return nil, ErrEmptyTrajectory
	}
	return out, nil
}

// Write writes a trajectory in the form Parse reads.
func Write(w io.Writer, t Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range t {
		if err := cw.Write(formatPoint(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatPoint(p Point) []string {
	return []string{
		strconv.FormatFloat(p.Time, 'f', -1, 64),
		strconv.FormatFloat(p.Steering, 'f', -1, 64),
		strconv.FormatFloat(p.Speed, 'f', -1, 64),
	}
}
