package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"time"

	// Register decoders for every supported input format.
	_ "image/jpeg"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/lepinkainen/clearcut/rembg"
)

// Processor runs the per-image pipeline: read, validate, remove background,
// encode as transparent PNG, write.
type Processor struct {
	Remover      rembg.Remover
	MaxDimension int           // downscale outputs so the longest side fits; 0 keeps size
	SkipExisting bool          // leave already produced outputs alone
	Timeout      time.Duration // per-image limit around the inference call; 0 disables
}

// Process handles one image end to end. A nil error means the output file is
// fully written at task.OutputPath. On any error no output file is left
// behind: the encode goes to a temp file that is only renamed into place
// after a clean finish.
func (p *Processor) Process(ctx context.Context, task Task) error {
	if p.SkipExisting {
		if _, err := os.Stat(task.OutputPath); err == nil {
			return &TaskError{Stage: StageRead, Path: task.InputPath, Err: ErrOutputExists}
		}
	}

	data, err := os.ReadFile(task.InputPath)
	if err != nil {
		return &TaskError{Stage: StageRead, Path: task.InputPath, Err: err}
	}
	if len(data) == 0 {
		return &TaskError{Stage: StageRead, Path: task.InputPath, Err: errors.New("file is empty")}
	}

	// Cheap header check before spending inference time on garbage input
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return &TaskError{Stage: StageDecode, Path: task.InputPath, Err: err}
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	out, err := p.Remover.Remove(ctx, data)
	if err != nil {
		return &TaskError{Stage: StageRemove, Path: task.InputPath, Err: err}
	}
	if len(out) == 0 {
		return &TaskError{Stage: StageRemove, Path: task.InputPath, Err: errors.New("backend returned no data")}
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		return &TaskError{Stage: StageRemove, Path: task.InputPath, Err: fmt.Errorf("backend returned undecodable image: %w", err)}
	}

	nrgba := toNRGBA(img)
	if p.MaxDimension > 0 {
		scaled := resize.Thumbnail(uint(p.MaxDimension), uint(p.MaxDimension), nrgba, resize.Lanczos3)
		nrgba = toNRGBA(scaled)
	}

	if err := writeAtomic(task.OutputPath, nrgba); err != nil {
		return &TaskError{Stage: StageEncode, Path: task.OutputPath, Err: err}
	}

	return nil
}

// toNRGBA converts a decoded image into NRGBA so the alpha channel is
// preserved through PNG encoding
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// writeAtomic encodes img as PNG into a temp file next to the final path and
// renames it into place, so a failed encode never leaves a truncated output
func writeAtomic(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".clearcut-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := png.Encode(tmp, img); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}
