package sources

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// imageExtensions are the file types the photos widget can render.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// PhotoIndex is the list of slideshow images delivered to the photos
// widget.
type PhotoIndex struct {
	Paths     []string  `json:"paths"`
	ScannedAt time.Time `json:"scannedAt"`
}

// PhotosSource walks a directory tree for image files. It implements
// Source. With shuffle enabled the index is reshuffled on every scan.
type PhotosSource struct {
	dir      string
	shuffle  bool
	interval time.Duration
	rng      *rand.Rand
}

// NewPhotosSource builds a photos index source rooted at dir.
func NewPhotosSource(dir string, shuffle bool, interval time.Duration) *PhotosSource {
	return &PhotosSource{
		dir:      dir,
		shuffle:  shuffle,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *PhotosSource) Name() string            { return "photos" }
func (p *PhotosSource) Interval() time.Duration { return p.interval }

// Fetch walks the photo directory and returns the current index. Unreadable
// subdirectories are skipped rather than failing the whole scan.
func (p *PhotosSource) Fetch(ctx context.Context) (interface{}, error) {
	var paths []string
	err := filepath.WalkDir(p.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != p.dir {
				return filepath.SkipDir
			}
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("photos: scan %s: %w", p.dir, err)
	}

	sort.Strings(paths)
	if p.shuffle {
		p.rng.Shuffle(len(paths), func(i, j int) {
			paths[i], paths[j] = paths[j], paths[i]
		})
	}
	return PhotoIndex{Paths: paths, ScannedAt: time.Now()}, nil
}
