package itembank

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"codeberg.org/snonux/bookletgen/internal"
)

// Resolver turns image references from the item bank into data URIs
type Resolver struct {
	root        string
	stripPrefix string
	log         zerolog.Logger
}

// NewResolver creates a resolver reading files below root. stripPrefix is
// removed once from the front of each reference before joining.
func NewResolver(root, stripPrefix string, log zerolog.Logger) *Resolver {
	return &Resolver{
		root:        root,
		stripPrefix: stripPrefix,
		log:         log.With().Str("component", "attachments").Logger(),
	}
}

// Resolve returns the data URI for ref, or nil when ref is empty or the
// file cannot be read. Read failures are logged and never returned.
func (r *Resolver) Resolve(ref string) *string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if internal.IsDataURI(ref) {
		return &ref
	}

	path := r.path(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		r.log.Warn().Err(err).Str("image", ref).Msg("cannot read image, leaving it empty")
		return nil
	}

	uri := fmt.Sprintf("data:%s;base64,%s", mediaType(path, data), base64.StdEncoding.EncodeToString(data))
	return &uri
}

func (r *Resolver) path(ref string) string {
	if r.stripPrefix != "" {
		ref = strings.Replace(ref, r.stripPrefix, "", 1)
	}
	if r.root == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(r.root, ref)
}

// mediaType derives the MIME type from the file extension and falls back
// to content sniffing for unknown extensions
func mediaType(path string, data []byte) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png", "gif", "webp", "bmp", "tiff":
		return "image/" + ext
	case "svg":
		return "image/svg+xml"
	}

	mt := mimetype.Detect(data)
	return strings.SplitN(mt.String(), ";", 2)[0]
}
