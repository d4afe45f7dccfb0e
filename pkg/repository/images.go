package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/example/storefront/pkg/errs"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ImageStore keeps uploaded product images on an afero filesystem and hands
// out the URL each file is served under.
type ImageStore struct {
	fs        afero.Fs
	urlPrefix string
	now       func() time.Time
}

func NewImageStore(fs afero.Fs, urlPrefix string) *ImageStore {
	return &ImageStore{
		fs:        fs,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		now:       time.Now,
	}
}

// NewDiskImageStore stores images under dir on the local disk.
func NewDiskImageStore(dir, urlPrefix string) (*ImageStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return NewImageStore(afero.NewBasePathFs(osFs, dir), urlPrefix), nil
}

// Save writes r under a unique name derived from filename and returns its URL.
func (s *ImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return "", errs.Validationf("unsupported image type %q", ext)
	}
	base := unsafeNameChars.ReplaceAllString(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), "_")
	if base == "" {
		base = "image"
	}
	name := fmt.Sprintf("%d-%s%s", s.now().UnixNano(), base, ext)

	if err := afero.WriteReader(s.fs, "/"+name, r); err != nil {
		return "", errors.Wrap(err, "write image")
	}
	return s.urlPrefix + "/" + name, nil
}

// Remove deletes the file behind url. Unknown URLs are ignored.
func (s *ImageStore) Remove(url string) error {
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return nil
	}
	err := s.fs.Remove("/" + path.Base(url))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove image")
	}
	return nil
}

// FileSystem serves the stored images over HTTP.
func (s *ImageStore) FileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs)
}
