package catalogsvc

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
)

// PublicPrefix is the URL path uploaded images are served under.
const PublicPrefix = "/uploads/"

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Image is an uploaded product picture.
type Image struct {
	Filename string
	Content  io.Reader
}

// saveImage writes img under the uploads directory with a timestamp name and
// returns the stored name and its public path.
func (s *CatalogService) saveImage(img *Image) (name, public string, err error) {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if !slices.Contains(imageExtensions, ext) {
		return "", "", apperr.Invalid("image", "unsupported file type")
	}

	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create uploads dir: %w", err)
	}

	name = strconv.FormatInt(s.now().UnixNano(), 10) + ext
	f, err := os.OpenFile(filepath.Join(s.uploadsDir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, img.Content); err != nil {
		s.removeImage(name)
		return "", "", fmt.Errorf("failed to write image: %w", err)
	}

	return name, path.Join(PublicPrefix, name), nil
}

func (s *CatalogService) removeImage(name string) {
	if name == "" {
		return
	}
	err := os.Remove(filepath.Join(s.uploadsDir, filepath.Base(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("Failed to remove image", "filename", name, "error", err)
	}
}
