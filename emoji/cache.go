package emoji

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"
)

// DefaultBrand is the image set used when none is configured.
const DefaultBrand = "apple"

// Cache maps brand → glyph → base64-encoded image bytes.
type Cache struct {
	mu     sync.RWMutex
	brands map[string]map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{brands: map[string]map[string]string{}}
}

// LoadJSON reads a cache in the {"brand": {"glyph": "base64"}} layout.
func LoadJSON(r io.Reader) (*Cache, error) {
	var raw map[string]map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode emoji cache: %w", err)
	}
	c := NewCache()
	for brand, images := range raw {
		for glyph, data := range images {
			c.Put(brand, glyph, data)
		}
	}
	return c, nil
}

// LoadFile is LoadJSON on a file path.
func LoadFile(path string) (*Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open emoji cache %s: %w", path, err)
	}
	defer f.Close()
	return LoadJSON(f)
}

// Put stores one image.
func (c *Cache) Put(brand, glyph, b64 string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	images, ok := c.brands[brand]
	if !ok {
		images = map[string]string{}
		c.brands[brand] = images
	}
	images[glyph] = b64
}

// Merge copies every image of other into c; entries of other win.
func (c *Cache) Merge(other *Cache) {
	if other == nil || other == c {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	for brand, images := range other.brands {
		for glyph, data := range images {
			c.Put(brand, glyph, data)
		}
	}
}

// AddDir loads every image in dir whose base name is a dash-separated list of
// hex code points (1f600.png, 1f468-200d-1f469.png). Other files are ignored.
// It returns the number of images added.
func (c *Cache) AddDir(brand, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read emoji dir %s: %w", dir, err)
	}
	added := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		glyph, ok := glyphFromName(e.Name())
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return added, fmt.Errorf("read emoji %s: %w", e.Name(), err)
		}
		c.Put(brand, glyph, base64.StdEncoding.EncodeToString(data))
		added++
	}
	return added, nil
}

func glyphFromName(name string) (string, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		return "", false
	}
	var sb strings.Builder
	for _, part := range strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' }) {
		cp, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(part), "u+"), 16, 32)
		if err != nil || cp > 0x10FFFF {
			return "", false
		}
		sb.WriteRune(rune(cp))
	}
	return sb.String(), sb.Len() > 0
}

// ImagesFor returns a copy of the glyph → base64 mapping of brand.
func (c *Cache) ImagesFor(brand string) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.brands[brand]))
	for glyph, data := range c.brands[brand] {
		out[glyph] = data
	}
	return out
}

// Brands lists the brands in the cache.
func (c *Cache) Brands() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.brands))
	for b := range c.brands {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Index builds a Finder over every glyph of every brand.
func (c *Cache) Index() *Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var glyphs []string
	for _, images := range c.brands {
		for g := range images {
			glyphs = append(glyphs, g)
		}
	}
	sort.Strings(glyphs)
	return NewIndex(glyphs...)
}

// Decode turns a base64 string (optionally a data: URL) into an image.
// PNG, JPEG, GIF and WebP are supported.
func Decode(b64 string) (image.Image, error) {
	if i := strings.Index(b64, ";base64,"); strings.HasPrefix(b64, "data:") && i >= 0 {
		b64 = b64[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
