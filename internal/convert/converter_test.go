package convert

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/tokenprinter/internal/docx"
	"github.com/MeKo-Tech/tokenprinter/internal/images"
	"github.com/MeKo-Tech/tokenprinter/internal/testutil"
)

type recordingProgress struct {
	mu        sync.Mutex
	total     int
	updates   [][2]int
	completed []Result
	failures  []error
}

func (r *recordingProgress) OnStart(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
}

func (r *recordingProgress) OnProgress(processed, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, [2]int{processed, total})
}

func (r *recordingProgress) OnComplete(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, res)
}

func (r *recordingProgress) OnError(_ int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
}

func newTestConverter(progress ProgressCallback, prefetch bool) *Converter {
	return New(Options{Progress: progress, Prefetch: prefetch})
}

func writeTokens(t *testing.T, dir string, n int) {
	t.Helper()
	for i := range n {
		testutil.SaveImage(t, testutil.CreateTokenImage(20+i, 30, testutil.TokenRed), filepath.Join(dir, fmt.Sprintf("token%02d.png", i)))
	}
}

func TestRun_TwoImagesOneRow(t *testing.T) {
	in := testutil.CreateTempDir(t)
	out := testutil.CreateTempDir(t)
	testutil.SaveImage(t, testutil.CreateTokenImage(100, 200, testutil.TokenRed), filepath.Join(in, "a.png"))
	testutil.WriteSolidImage(t, in, "b.jpg", 200, 100, testutil.TokenBlue)

	progress := &recordingProgress{}
	res := newTestConverter(progress, false).Run(Request{InputDir: in, OutputDir: out, Filename: "tokens"})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, filepath.Join(out, "tokens.docx"), res.OutputPath)

	s, err := docx.Inspect(res.OutputPath)
	require.NoError(t, err)
	require.Len(t, s.Blocks, 1)
	require.Len(t, s.Blocks[0].Pictures, 2)
	assert.Equal(t, docx.DefaultMargins(), s.Margins)

	// rotated a.png is 200x100, rotated b.jpg is 100x200
	byName := map[string]docx.Placement{}
	for _, p := range s.Blocks[0].Pictures {
		byName[p.Name] = p
		assert.Equal(t, int64(3168000), p.CX)
	}
	assert.Equal(t, int64(1584000), byName["a.png"].CY)
	assert.Equal(t, int64(6336000), byName["b.jpg"].CY)

	assert.Equal(t, 2, progress.total)
	assert.Equal(t, [][2]int{{2, 2}}, progress.updates)
	require.Len(t, progress.completed, 1)
	assert.Empty(t, progress.failures)
}

func TestRun_RecordsTitleAndCreator(t *testing.T) {
	in := testutil.CreateTempDir(t)
	writeTokens(t, in, 1)

	res := New(Options{Creator: "tokenprinter 9.9.9"}).Run(Request{InputDir: in, OutputDir: testutil.CreateTempDir(t), Filename: "tokens"})
	require.True(t, res.Success, res.Message)

	s, err := docx.Inspect(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "tokens", s.Title)
	assert.Equal(t, "tokenprinter 9.9.9", s.Creator)
}

// Each embedded JPEG must still hold its own picture when the document is
// saved, even though the encode buffers are pooled and reused across runs.
func TestRun_MediaMatchesSources(t *testing.T) {
	in := testutil.CreateTempDir(t)
	writeTokens(t, in, 7)

	for _, prefetch := range []bool{false, true, false} {
		res := newTestConverter(nil, prefetch).Run(Request{InputDir: in, OutputDir: testutil.CreateTempDir(t), Filename: "media"})
		require.True(t, res.Success, res.Message)

		s, err := docx.Inspect(res.OutputPath)
		require.NoError(t, err)
		for _, b := range s.Blocks {
			for _, p := range b.Pictures {
				var i int
				_, err := fmt.Sscanf(p.Name, "token%02d.png", &i)
				require.NoError(t, err)

				cfg, err := jpeg.DecodeConfig(bytes.NewReader(s.Media["word/"+p.Target]))
				require.NoError(t, err, p.Name)
				// writeTokens makes 20+i by 30; rotation swaps the sides
				assert.Equal(t, 30, cfg.Width, p.Name)
				assert.Equal(t, 20+i, cfg.Height, p.Name)
			}
		}
	}
}

func TestRun_OddCountLastRowSingle(t *testing.T) {
	in := testutil.CreateTempDir(t)
	out := testutil.CreateTempDir(t)
	writeTokens(t, in, 5)

	progress := &recordingProgress{}
	res := newTestConverter(progress, false).Run(Request{InputDir: in, OutputDir: out, Filename: "odd"})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 5, res.Count)

	s, err := docx.Inspect(res.OutputPath)
	require.NoError(t, err)
	require.Len(t, s.Blocks, 3)
	assert.Len(t, s.Blocks[0].Pictures, 2)
	assert.Len(t, s.Blocks[1].Pictures, 2)
	assert.Len(t, s.Blocks[2].Pictures, 1)

	assert.Equal(t, [][2]int{{2, 5}, {4, 5}, {5, 5}}, progress.updates)
}

func TestRun_PrefetchKeepsOrder(t *testing.T) {
	in := testutil.CreateTempDir(t)
	writeTokens(t, in, 9)
	files, err := images.Enumerate(in)
	require.NoError(t, err)

	sequential := &recordingProgress{}
	seqRes := newTestConverter(sequential, false).Run(Request{InputDir: in, OutputDir: testutil.CreateTempDir(t), Filename: "seq"})
	require.True(t, seqRes.Success, seqRes.Message)

	prefetched := &recordingProgress{}
	preRes := newTestConverter(prefetched, true).Run(Request{InputDir: in, OutputDir: testutil.CreateTempDir(t), Filename: "pre"})
	require.True(t, preRes.Success, preRes.Message)

	assert.Equal(t, sequential.updates, prefetched.updates)

	seqDoc, err := docx.Inspect(seqRes.OutputPath)
	require.NoError(t, err)
	preDoc, err := docx.Inspect(preRes.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, seqDoc.Blocks, preDoc.Blocks)

	var names []string
	for _, b := range preDoc.Blocks {
		for _, p := range b.Pictures {
			names = append(names, p.Name)
		}
	}
	want := make([]string, 0, len(files))
	for _, f := range files {
		want = append(want, filepath.Base(f))
	}
	assert.Equal(t, want, names, "pictures follow enumeration order")
}

func TestRun_ProgressMonotonic(t *testing.T) {
	in := testutil.CreateTempDir(t)
	writeTokens(t, in, 7)

	for _, prefetch := range []bool{false, true} {
		progress := &recordingProgress{}
		res := newTestConverter(progress, prefetch).Run(Request{InputDir: in, OutputDir: testutil.CreateTempDir(t), Filename: "p"})
		require.True(t, res.Success, res.Message)

		last := 0
		for _, u := range progress.updates {
			assert.Greater(t, u[0], last)
			assert.Equal(t, 7, u[1])
			last = u[0]
		}
		assert.Equal(t, 7, last)
	}
}

func TestRun_DecodeErrorWritesNothing(t *testing.T) {
	for _, prefetch := range []bool{false, true} {
		t.Run(fmt.Sprintf("prefetch=%v", prefetch), func(t *testing.T) {
			in := testutil.CreateTempDir(t)
			out := testutil.CreateTempDir(t)
			writeTokens(t, in, 4)
			testutil.WriteFile(t, filepath.Join(in, "bad.png"), []byte("garbage"))

			progress := &recordingProgress{}
			res := newTestConverter(progress, prefetch).Run(Request{InputDir: in, OutputDir: out, Filename: "broken"})

			require.False(t, res.Success)
			var de *images.DecodeError
			require.ErrorAs(t, res.Err, &de)
			assert.Contains(t, res.Message, "bad.png")
			assert.Empty(t, testutil.ListDir(t, out), "a failed run must not leave a document")
			require.Len(t, progress.failures, 1)
			assert.Empty(t, progress.completed)
			assert.False(t, IsUserError(res.Err))
		})
	}
}

func TestRun_EmptyFolder(t *testing.T) {
	in := testutil.CreateTempDir(t)
	testutil.WriteFile(t, filepath.Join(in, "readme.txt"), []byte("x"))
	out := testutil.CreateTempDir(t)

	res := newTestConverter(nil, false).Run(Request{InputDir: in, OutputDir: out, Filename: "x"})
	require.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrNoImages)
	assert.Equal(t, "No images found in selected folder", res.Message)
	assert.Empty(t, testutil.ListDir(t, out))
}

func TestRun_MissingInputFolder(t *testing.T) {
	res := newTestConverter(nil, false).Run(Request{
		InputDir:  filepath.Join(testutil.CreateTempDir(t), "nope"),
		OutputDir: testutil.CreateTempDir(t),
		Filename:  "x",
	})
	require.False(t, res.Success)
	var nf *images.NotFoundError
	assert.ErrorAs(t, res.Err, &nf)
	assert.True(t, IsUserError(res.Err))
}

func TestRun_UnwritableOutput(t *testing.T) {
	in := testutil.CreateTempDir(t)
	writeTokens(t, in, 2)

	res := newTestConverter(nil, false).Run(Request{
		InputDir:  in,
		OutputDir: filepath.Join(testutil.CreateTempDir(t), "missing"),
		Filename:  "x",
	})
	require.False(t, res.Success)
	var we *docx.WriteError
	require.ErrorAs(t, res.Err, &we)
	assert.False(t, IsUserError(res.Err))
}

func TestRun_OverwritesExistingDocument(t *testing.T) {
	in := testutil.CreateTempDir(t)
	out := testutil.CreateTempDir(t)
	writeTokens(t, in, 3)
	testutil.WriteFile(t, filepath.Join(out, "same.docx"), []byte("old"))

	res := newTestConverter(nil, false).Run(Request{InputDir: in, OutputDir: out, Filename: "same"})
	require.True(t, res.Success, res.Message)

	s, err := docx.Inspect(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, 3, s.PictureCount())
}

func TestRun_BlankFields(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"input", Request{InputDir: " ", OutputDir: "/o", Filename: "f"}, "Please select an input folder"},
		{"output", Request{InputDir: "/i", OutputDir: "", Filename: "f"}, "Please select an output folder"},
		{"filename", Request{InputDir: "/i", OutputDir: "/o", Filename: "\t"}, "Please enter a filename"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := &recordingProgress{}
			c := newTestConverter(progress, false)
			res := c.Run(tt.req)

			require.False(t, res.Success)
			assert.Equal(t, tt.want, res.Message)
			assert.True(t, IsUserError(res.Err))
			assert.Equal(t, StateFailed, c.State())
			assert.Empty(t, progress.updates)
		})
	}
}

func TestRun_OnlyOnce(t *testing.T) {
	in := testutil.CreateTempDir(t)
	writeTokens(t, in, 1)
	c := newTestConverter(nil, false)
	assert.Equal(t, StateIdle, c.State())

	req := Request{InputDir: in, OutputDir: testutil.CreateTempDir(t), Filename: "once"}
	require.True(t, c.Run(req).Success)
	assert.Equal(t, StateSucceeded, c.State())

	again := c.Run(req)
	require.False(t, again.Success)
	assert.ErrorIs(t, again.Err, ErrAlreadyRun)
	assert.Equal(t, StateSucceeded, c.State())
}

func TestOutputPath(t *testing.T) {
	p, err := OutputPath(Request{InputDir: "/in", OutputDir: "/out", Filename: "  tokens  "})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "tokens.docx"), p)

	// decomposed e + combining acute becomes a single code point
	p, err = OutputPath(Request{InputDir: "/in", OutputDir: "/out", Filename: "cafe\u0301"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "caf\u00e9.docx"), p)

	for _, bad := range []string{"a/b", `a\b`, ".", ".."} {
		_, err := OutputPath(Request{InputDir: "/in", OutputDir: "/out", Filename: bad})
		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid, bad)
		assert.Equal(t, FieldFilename, invalid.Field)
	}
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(ErrNoImages))
	assert.True(t, IsUserError(&InvalidInputError{Field: FieldInputDir}))
	assert.True(t, IsUserError(fmt.Errorf("wrapped: %w", &images.NotFoundError{Dir: "/x"})))
	assert.False(t, IsUserError(&images.DecodeError{Path: "a.png", Err: errors.New("bad")}))
	assert.False(t, IsUserError(&docx.WriteError{Path: "a.docx", Err: os.ErrPermission}))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestRequestWithDefaults(t *testing.T) {
	req := Request{InputDir: " ", Filename: "f"}.WithDefaults("/in", "/out")
	assert.Equal(t, Request{InputDir: "/in", OutputDir: "/out", Filename: "f"}, req)

	req = Request{InputDir: "/mine", OutputDir: "/theirs"}.WithDefaults("/in", "/out")
	assert.Equal(t, "/mine", req.InputDir)
	assert.Equal(t, "/theirs", req.OutputDir)
}
