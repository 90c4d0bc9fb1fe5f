package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrNoImages is returned by a DirSource with nothing to show.
var ErrNoImages = errors.New("no images found")

// DirSource plays back still images, in name order, looping at the
// end.  It stands in for the camera when working on the bench.
type DirSource struct {
	files []string
	next  int
}

// NewDirSource returns a source over the jpeg and png files in dir.
// A single image file may be given instead of a directory.
func NewDirSource(dir string) (*DirSource, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return &DirSource{files: []string{dir}}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoImages)
	}
	sort.Strings(files)
	return &DirSource{files: files}, nil
}

// Next loads the next image.
func (d *DirSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	return imaging.Open(f)
}
