package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/tokenprinter/internal/convert"
	"github.com/MeKo-Tech/tokenprinter/internal/settings"
	"github.com/MeKo-Tech/tokenprinter/internal/testutil"
)

// fakeRunner replays a fixed outcome through the progress callback.
type fakeRunner struct {
	opts     convert.Options
	res      convert.Result
	requests *[]convert.Request
}

func (f *fakeRunner) Run(req convert.Request) convert.Result {
	if f.requests != nil {
		*f.requests = append(*f.requests, req)
	}
	p := f.opts.Progress
	if p == nil {
		return f.res
	}
	if f.res.Success {
		p.OnStart(f.res.Count)
		p.OnProgress(f.res.Count, f.res.Count)
		p.OnComplete(f.res)
	} else {
		p.OnError(0, f.res.Err)
	}
	return f.res
}

type countingProgress struct {
	convert.NoOpProgressCallback
	started   int
	completed int
}

func (c *countingProgress) OnStart(int)               { c.started++ }
func (c *countingProgress) OnComplete(convert.Result) { c.completed++ }

func newFakeServer(res convert.Result, requests *[]convert.Request) *Server {
	s := NewServer(Config{CORSOrigin: "*"})
	s.newConverter = func(opts convert.Options) conversionRunner {
		return &fakeRunner{opts: opts, res: res, requests: requests}
	}
	return s
}

func newSettingsStore(t *testing.T) *settings.Store {
	t.Helper()
	return settings.NewStore(filepath.Join(testutil.CreateTempDir(t), settings.FileName))
}

// tokenFolder creates a folder with n small token images.
func tokenFolder(t *testing.T, n int) string {
	t.Helper()
	dir := testutil.CreateTempDir(t)
	for i := range n {
		testutil.SaveImage(t, testutil.CreateTokenImage(16, 24, testutil.TokenRed), filepath.Join(dir, "t"+string(rune('a'+i))+".png"))
	}
	return dir
}

// jsonRequest builds a request carrying body as application/json.
func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
