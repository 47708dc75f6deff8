package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// stubRemover returns fixed output bytes without touching any model
type stubRemover struct {
	output []byte
	err    error
}

func (s *stubRemover) Remove(_ context.Context, _ []byte) ([]byte, error) {
	return s.output, s.err
}

// blockingRemover waits for the context to expire, simulating a hung
// inference call
type blockingRemover struct{}

func (blockingRemover) Remove(ctx context.Context, _ []byte) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// encodeTestPNG builds a small image with a transparent top-left pixel
func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: 200, A: 255})
		}
	}
	img.SetNRGBA(0, 0, color.NRGBA{A: 0})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func writeTestInput(t *testing.T, dir, name string, data []byte) Task {
	t.Helper()

	inPath := filepath.Join(dir, name)
	if err := os.WriteFile(inPath, data, 0644); err != nil {
		t.Fatalf("Failed to write test input: %v", err)
	}
	return Task{
		InputPath:  inPath,
		OutputPath: filepath.Join(dir, OutputName(name)),
	}
}

func TestProcessor_Process_Success(t *testing.T) {
	testDir := t.TempDir()
	task := writeTestInput(t, testDir, "photo.png", encodeTestPNG(t, 8, 8))
	proc := &Processor{Remover: &stubRemover{output: encodeTestPNG(t, 8, 8)}}

	if err := proc.Process(context.Background(), task); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	f, err := os.Open(task.OutputPath)
	if err != nil {
		t.Fatalf("Output file missing: %v", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		t.Fatalf("Output is not a decodable image: %v", err)
	}
	if format != "png" {
		t.Errorf("Output format = %s, want png", format)
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("Output decoded as %T, want *image.NRGBA", img)
	}
	if nrgba.NRGBAAt(0, 0).A != 0 {
		t.Error("Expected a transparent pixel in the output alpha channel")
	}
}

func TestProcessor_Process_CorruptInput(t *testing.T) {
	testDir := t.TempDir()
	task := writeTestInput(t, testDir, "broken.png", []byte("this is not an image"))

	proc := &Processor{Remover: &stubRemover{output: encodeTestPNG(t, 8, 8)}}
	err := proc.Process(context.Background(), task)
	if err == nil {
		t.Fatal("Expected error for corrupt input")
	}

	var taskErr *TaskError
	if !errors.As(err, &taskErr) || taskErr.Stage != StageDecode {
		t.Errorf("Expected decode-stage TaskError, got %v", err)
	}

	if _, statErr := os.Stat(task.OutputPath); !os.IsNotExist(statErr) {
		t.Error("Failed task must not leave an output file behind")
	}
}

func TestProcessor_Process_EmptyInput(t *testing.T) {
	testDir := t.TempDir()
	task := writeTestInput(t, testDir, "empty.jpg", nil)

	proc := &Processor{Remover: &stubRemover{output: encodeTestPNG(t, 8, 8)}}
	err := proc.Process(context.Background(), task)

	var taskErr *TaskError
	if !errors.As(err, &taskErr) || taskErr.Stage != StageRead {
		t.Errorf("Expected read-stage TaskError for empty file, got %v", err)
	}
}

func TestProcessor_Process_RemoverFailure(t *testing.T) {
	testDir := t.TempDir()
	task := writeTestInput(t, testDir, "photo.png", encodeTestPNG(t, 8, 8))

	proc := &Processor{Remover: &stubRemover{err: errors.New("model exploded")}}
	err := proc.Process(context.Background(), task)
	if err == nil {
		t.Fatal("Expected error when the remover fails")
	}

	var taskErr *TaskError
	if !errors.As(err, &taskErr) || taskErr.Stage != StageRemove {
		t.Errorf("Expected remove-stage TaskError, got %v", err)
	}

	if _, statErr := os.Stat(task.OutputPath); !os.IsNotExist(statErr) {
		t.Error("Failed task must not leave an output file behind")
	}
}

func TestProcessor_Process_UndecodableRemoverOutput(t *testing.T) {
	testDir := t.TempDir()
	task := writeTestInput(t, testDir, "photo.png", encodeTestPNG(t, 8, 8))

	proc := &Processor{Remover: &stubRemover{output: []byte("garbage")}}
	err := proc.Process(context.Background(), task)

	var taskErr *TaskError
	if !errors.As(err, &taskErr) || taskErr.Stage != StageRemove {
		t.Errorf("Expected remove-stage TaskError for undecodable output, got %v", err)
	}
}

func TestProcessor_Process_SkipExisting(t *testing.T) {
	testDir := t.TempDir()
	task := writeTestInput(t, testDir, "photo.png", encodeTestPNG(t, 8, 8))

	prior := []byte("existing output")
	if err := os.WriteFile(task.OutputPath, prior, 0644); err != nil {
		t.Fatalf("Failed to create prior output: %v", err)
	}

	proc := &Processor{Remover: &stubRemover{output: encodeTestPNG(t, 8, 8)}, SkipExisting: true}
	err := proc.Process(context.Background(), task)
	if !errors.Is(err, ErrOutputExists) {
		t.Fatalf("Expected ErrOutputExists, got %v", err)
	}

	got, readErr := os.ReadFile(task.OutputPath)
	if readErr != nil || !bytes.Equal(got, prior) {
		t.Error("Skipped task must leave the prior output untouched")
	}
}

func TestProcessor_Process_OverwritesByDefault(t *testing.T) {
	testDir := t.TempDir()
	task := writeTestInput(t, testDir, "photo.png", encodeTestPNG(t, 8, 8))

	if err := os.WriteFile(task.OutputPath, []byte("stale"), 0644); err != nil {
		t.Fatalf("Failed to create prior output: %v", err)
	}

	proc := &Processor{Remover: &stubRemover{output: encodeTestPNG(t, 8, 8)}}
	if err := proc.Process(context.Background(), task); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	got, err := os.ReadFile(task.OutputPath)
	if err != nil {
		t.Fatalf("Output missing after overwrite: %v", err)
	}
	if bytes.Equal(got, []byte("stale")) {
		t.Error("Re-run should overwrite the prior output")
	}
}

func TestProcessor_Process_MaxDimension(t *testing.T) {
	testDir := t.TempDir()
	task := writeTestInput(t, testDir, "photo.png", encodeTestPNG(t, 8, 8))

	proc := &Processor{
		Remover:      &stubRemover{output: encodeTestPNG(t, 100, 40)},
		MaxDimension: 10,
	}
	if err := proc.Process(context.Background(), task); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	f, err := os.Open(task.OutputPath)
	if err != nil {
		t.Fatalf("Output file missing: %v", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("Failed to decode output config: %v", err)
	}
	if cfg.Width > 10 || cfg.Height > 10 {
		t.Errorf("Output %dx%d exceeds max dimension 10", cfg.Width, cfg.Height)
	}
}

func TestProcessor_Process_Timeout(t *testing.T) {
	testDir := t.TempDir()
	task := writeTestInput(t, testDir, "photo.png", encodeTestPNG(t, 8, 8))

	proc := &Processor{Remover: blockingRemover{}, Timeout: 10 * time.Millisecond}
	err := proc.Process(context.Background(), task)
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded in chain, got %v", err)
	}

	if _, statErr := os.Stat(task.OutputPath); !os.IsNotExist(statErr) {
		t.Error("Timed-out task must not leave an output file behind")
	}
}

func TestProcessor_Process_NoTempFilesAfterRun(t *testing.T) {
	testDir := t.TempDir()
	task := writeTestInput(t, testDir, "photo.png", encodeTestPNG(t, 8, 8))

	proc := &Processor{Remover: &stubRemover{output: encodeTestPNG(t, 8, 8)}}
	if err := proc.Process(context.Background(), task); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	entries, err := os.ReadDir(testDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Errorf("Temp file left behind: %s", entry.Name())
		}
	}
}
