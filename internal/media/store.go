// Package media stores uploaded images as WebP files served under a public base URL.
package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"framez/internal/models"
	"framez/internal/observability"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultUploadDir       = "uploads"
	DefaultMaxUploadSizeMB = 10
	DefaultMaxEdge         = 1080
	WebPQuality            = 80
	// MaxPixels caps width*height of an accepted upload, checked before decoding.
	MaxPixels              = 40_000_000
)

// Config configures a Store.
type Config struct {
	UploadDir       string
	BaseURL         string
	MaxUploadSizeMB int
	MaxEdge         int
}

// Store writes processed images to disk.
type Store struct {
	uploadDir          string
	baseURL            string
	maxUploadSizeBytes int64
	maxEdge            int
}

// NewStore creates a Store, applying defaults for unset fields.
func NewStore(cfg Config) *Store {
	s := &Store{
		uploadDir:          cfg.UploadDir,
		baseURL:            strings.TrimRight(cfg.BaseURL, "/"),
		maxUploadSizeBytes: int64(cfg.MaxUploadSizeMB) * 1024 * 1024,
		maxEdge:            cfg.MaxEdge,
	}
	if s.uploadDir == "" {
		s.uploadDir = DefaultUploadDir
	}
	if s.maxUploadSizeBytes <= 0 {
		s.maxUploadSizeBytes = DefaultMaxUploadSizeMB * 1024 * 1024
	}
	if s.maxEdge <= 0 {
		s.maxEdge = DefaultMaxEdge
	}
	return s
}

// UploadDir is the directory files are written to.
func (s *Store) UploadDir() string {
	return s.uploadDir
}

// MaxUploadSizeBytes is the largest accepted upload.
func (s *Store) MaxUploadSizeBytes() int64 {
	return s.maxUploadSizeBytes
}

// SaveImage decodes content, scales it to fit the configured edge, encodes it
// as WebP and stores it under its content hash. It returns the public URL.
// Identical uploads by the same owner map to the same file.
func (s *Store) SaveImage(ctx context.Context, ownerID string, content []byte) (url string, err error) {
	_, span := observability.StartSpan(ctx, "media", "SaveImage")
	defer func() {
		span.End(err)
		outcome := "stored"
		if err != nil {
			outcome = "rejected"
		}
		observability.MediaUploadsTotal.WithLabelValues(outcome).Inc()
	}()

	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return "", models.NewValidationError("Invalid image type")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", models.NewValidationError("Image dimensions too large")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	encoded, err := encodeWebP(resizeToFit(decoded, s.maxEdge), WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	name := contentHash(ownerID, encoded) + ".webp"
	if err := writeBytesToFile(filepath.Join(s.uploadDir, name), encoded); err != nil {
		return "", models.NewInternalError(err)
	}
	return s.baseURL + "/" + name, nil
}

// resizeToFit scales src down so its longest edge is at most maxEdge.
func resizeToFit(src image.Image, maxEdge int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxEdge && h <= maxEdge) {
		return src
	}

	scale := float64(maxEdge) / float64(max(w, h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func contentHash(ownerID string, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s:", ownerID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
