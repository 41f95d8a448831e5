// Package assets loads and decodes the images referenced by template
// fields. Sources may be local files, data: URLs, or http(s) URLs; decoded
// images are cached per loader. GIF, JPEG, PNG, WebP and TIFF are
// supported.
package assets

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Loader resolves and decodes image sources. Safe for concurrent use.
type Loader struct {
	// BaseDir anchors relative file paths.
	BaseDir string

	client *http.Client

	mu    sync.RWMutex
	cache map[string]image.Image
}

// NewLoader creates a Loader rooted at baseDir for relative paths.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		BaseDir: baseDir,
		client:  &http.Client{},
		cache:   make(map[string]image.Image),
	}
}

// Image loads and decodes the image at src.
func (l *Loader) Image(src string) (image.Image, error) {
	l.mu.RLock()
	img, ok := l.cache[src]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}

	data, err := l.fetch(src)
	if err != nil {
		return nil, err
	}
	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("assets: decoding %s: %w", src, err)
	}

	l.mu.Lock()
	l.cache[src] = img
	l.mu.Unlock()
	return img, nil
}

func (l *Loader) fetch(src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return parseDataURL(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetchRemote(src)
	default:
		path := src
		if !filepath.IsAbs(path) && l.BaseDir != "" {
			path = filepath.Join(l.BaseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("assets: reading %s: %w", src, err)
		}
		return data, nil
	}
}

func (l *Loader) fetchRemote(src string) ([]byte, error) {
	resp, err := l.client.Get(src)
	if err != nil {
		return nil, fmt.Errorf("assets: fetching %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assets: fetching %s: %s", src, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("assets: fetching %s: %w", src, err)
	}
	return data, nil
}

// parseDataURL decodes an RFC 2397 data URL, e.g.
// data:image/png;base64,<base64>.
func parseDataURL(u string) ([]byte, error) {
	s := strings.TrimPrefix(u, "data:")
	meta, dataPart, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("assets: invalid data URL")
	}

	isBase64 := false
	for _, c := range strings.Split(meta, ";") {
		if strings.EqualFold(strings.TrimSpace(c), "base64") {
			isBase64 = true
		}
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(dataPart)
		if err != nil {
			return nil, fmt.Errorf("assets: invalid base64 data URL: %w", err)
		}
		return data, nil
	}
	if d, err := url.QueryUnescape(dataPart); err == nil {
		return []byte(d), nil
	}
	return []byte(dataPart), nil
}
