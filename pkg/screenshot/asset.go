package screenshot

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CapturedAsset holds the bytes of one capture. Created per directive
// evaluation, written once through an Emitter, never mutated.
type CapturedAsset struct {
	ImageBytes  []byte
	PDFBytes    []byte
	SourceURL   string
	Status      int
	Fingerprint string
}

// Fingerprint derives the identifier that names the emitted files. It covers
// exactly the fields that change the rendered pixels, and uses the target as
// written rather than the resolved URL so local-app ports and build
// directories don't invalidate previous captures. Headers and the init script
// stay out of the input: they typically carry per-build values such as
// authentication tokens that must not invalidate the cache.
func (o *ResolvedOptions) Fingerprint() string {
	input := strings.Join([]string{
		o.Target,
		string(o.Browser),
		strconv.Itoa(o.ViewportHeight),
		strconv.Itoa(o.ViewportWidth),
		string(o.ColorScheme),
		o.Context,
		o.Interactions,
		strconv.FormatBool(o.FullPage),
		strconv.Itoa(o.DeviceScaleFactor),
		o.Locale,
		o.Timezone,
		o.StatusCode,
	}, "_")
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}

// AssetRef points at emitted files, relative to the emitter's directory.
// ImageWidth is the intrinsic pixel width of the emitted image, 0 when it
// could not be determined.
type AssetRef struct {
	Image      string
	PDF        string // empty when no PDF was captured
	ImageWidth int
}

// Emitter writes captured assets into the build's static-asset directory
// under content-derived filenames.
type Emitter struct {
	dir string
}

// NewEmitter creates an emitter rooted at dir, creating the directory as
// needed.
func NewEmitter(dir string) (*Emitter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory %s: %w", dir, err)
	}
	return &Emitter{dir: dir}, nil
}

// Dir returns the emitter's asset directory.
func (e *Emitter) Dir() string { return e.dir }

// Has reports whether an image for the fingerprint was already emitted, which
// lets the caller skip the capture entirely.
func (e *Emitter) Has(fingerprint string) bool {
	_, err := os.Stat(filepath.Join(e.dir, fingerprint+".png"))
	return err == nil
}

// HasPDF reports whether a PDF for the fingerprint was already emitted.
func (e *Emitter) HasPDF(fingerprint string) bool {
	_, err := os.Stat(filepath.Join(e.dir, fingerprint+".pdf"))
	return err == nil
}

// Ref returns the reference an already-emitted fingerprint resolves to.
func (e *Emitter) Ref(fingerprint string, pdf bool) AssetRef {
	ref := AssetRef{Image: fingerprint + ".png"}
	if pdf {
		ref.PDF = fingerprint + ".pdf"
	}
	if f, err := os.Open(filepath.Join(e.dir, ref.Image)); err == nil {
		if cfg, err := png.DecodeConfig(f); err == nil {
			ref.ImageWidth = cfg.Width
		}
		f.Close()
	}
	return ref
}

// Write emits the asset's image (and PDF when present) and returns the
// relative reference. IO errors propagate unwrapped; they are fatal for the
// directive.
func (e *Emitter) Write(asset *CapturedAsset) (AssetRef, error) {
	ref := AssetRef{Image: asset.Fingerprint + ".png"}
	if cfg, err := png.DecodeConfig(bytes.NewReader(asset.ImageBytes)); err == nil {
		ref.ImageWidth = cfg.Width
	}
	if err := os.WriteFile(filepath.Join(e.dir, ref.Image), asset.ImageBytes, 0o644); err != nil {
		return AssetRef{}, fmt.Errorf("failed to write screenshot: %w", err)
	}
	if asset.PDFBytes != nil {
		ref.PDF = asset.Fingerprint + ".pdf"
		if err := os.WriteFile(filepath.Join(e.dir, ref.PDF), asset.PDFBytes, 0o644); err != nil {
			return AssetRef{}, fmt.Errorf("failed to write pdf: %w", err)
		}
	}
	return ref, nil
}
