// Package artwork loads cover images from image files or from the artwork
// embedded in audiobook files.
package artwork

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/avif"
	"go.senan.xyz/taglib"
	_ "golang.org/x/image/webp"
)

var (
	ErrNoArtwork   = errors.New("no embedded artwork")
	ErrUnsupported = errors.New("unsupported artwork format")
)

const maxArtworkBytes = 64 << 20

type Kind string

const (
	KindImage   Kind = "image"
	KindAudio   Kind = "audio"
	KindUnknown Kind = "unknown"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".avif": {},
}

var audioExtensions = map[string]struct{}{
	".m4b":  {},
	".m4a":  {},
	".mp3":  {},
	".mp4":  {},
	".aac":  {},
	".flac": {},
	".ogg":  {},
	".opus": {},
	".wma":  {},
}

var genericStems = map[string]struct{}{
	"cover":   {},
	"folder":  {},
	"front":   {},
	"artwork": {},
	"album":   {},
}

type Artwork struct {
	Path     string
	Kind     Kind
	Title    string
	Hash     string
	MimeType string
	Data     []byte
	Image    image.Image
}

func (a Artwork) Size() int {
	return len(a.Data)
}

func KindOf(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	if _, ok := audioExtensions[ext]; ok {
		return KindAudio
	}
	return KindUnknown
}

func IsSupported(path string) bool {
	return KindOf(path) != KindUnknown
}

func Load(path string) (Artwork, error) {
	kind := KindOf(path)

	var data []byte
	var err error
	switch kind {
	case KindImage:
		data, err = readImageFile(path)
	case KindAudio:
		data, err = taglib.ReadImage(path)
		if err == nil && len(data) == 0 {
			err = ErrNoArtwork
		}
	default:
		return Artwork{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	if err != nil {
		return Artwork{}, fmt.Errorf("read artwork %s: %w", path, err)
	}

	decoded, err := Decode(data)
	if err != nil {
		return Artwork{}, fmt.Errorf("decode artwork %s: %w", path, err)
	}

	return Artwork{
		Path:     path,
		Kind:     kind,
		Title:    Title(path),
		Hash:     HashBytes(data),
		MimeType: mimeType(data),
		Data:     data,
		Image:    decoded,
	}, nil
}

func readImageFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("path is a directory")
	}
	if info.Size() > maxArtworkBytes {
		return nil, fmt.Errorf("artwork is larger than %d bytes", maxArtworkBytes)
	}
	return os.ReadFile(path)
}

// Decode sniffs the payload, so embedded covers without a file name decode too.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoArtwork
	}
	if isAVIF(data) {
		return avif.Decode(bytes.NewReader(data))
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, err
	}
	return decoded, nil
}

func mimeType(data []byte) string {
	if isAVIF(data) {
		return "image/avif"
	}
	return http.DetectContentType(data)
}

func isAVIF(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	brand := string(data[8:12])
	return brand == "avif" || brand == "avis"
}

// Title prefers album then title tags for audiobooks. Image files use their
// stem, or the parent directory for generic names like cover.jpg.
func Title(path string) string {
	if KindOf(path) == KindAudio {
		if tags, err := taglib.ReadTags(path); err == nil {
			if value := firstTagValue(tags, taglib.Album, taglib.Title); value != "" {
				return value
			}
		}
	}

	stem := fileStem(path)
	if IsGenericName(path) {
		if parent := filepath.Base(filepath.Dir(path)); parent != "." && parent != string(filepath.Separator) {
			return parent
		}
	}
	return stem
}

// IsGenericName reports whether the file name says nothing about the book,
// as with cover.jpg or folder.png.
func IsGenericName(path string) bool {
	_, generic := genericStems[strings.ToLower(fileStem(path))]
	return generic
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

func firstTagValue(tags map[string][]string, keys ...string) string {
	for _, key := range keys {
		for _, value := range tags[key] {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsValidHash reports whether value looks like a HashBytes result.
func IsValidHash(value string) bool {
	if len(value) != sha256.Size*2 {
		return false
	}

	for _, char := range value {
		if (char < '0' || char > '9') && (char < 'a' || char > 'f') && (char < 'A' || char > 'F') {
			return false
		}
	}

	return true
}
