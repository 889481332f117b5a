package support

import (
	"net/http"
	"net/http/httptest"

	"github.com/MeKo-Tech/tokenprinter/internal/convert"
	"github.com/MeKo-Tech/tokenprinter/internal/docx"
	"github.com/MeKo-Tech/tokenprinter/internal/server"
	"github.com/MeKo-Tech/tokenprinter/internal/settings"
)

// HTTPTestServerWrapper wraps httptest.Server for integration tests.
type HTTPTestServerWrapper struct {
	Server     *httptest.Server
	TestServer *server.Server
}

// startTestHTTPServer runs the real server in-process on a random port.
func (testCtx *TestContext) startTestHTTPServer() error {
	if testCtx.HTTPTestServer != nil {
		return nil
	}

	srv := server.NewServer(server.Config{
		CORSOrigin: "*",
		Version:    "integration",
		Convert: convert.Options{
			JPEGQuality: 75,
			PageSize:    docx.Letter,
		},
		Settings: settings.NewStore(testCtx.SettingsFile),
	})

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	testCtx.HTTPTestServer = &HTTPTestServerWrapper{
		Server:     httptest.NewServer(mux),
		TestServer: srv,
	}
	return nil
}

// StopServer stops the in-process server if one is running.
func (testCtx *TestContext) StopServer() error {
	if testCtx.HTTPTestServer != nil {
		testCtx.HTTPTestServer.Server.Close()
		testCtx.HTTPTestServer = nil
	}
	return nil
}

// ServerURL returns the base URL of the running test server.
func (testCtx *TestContext) ServerURL() string {
	if testCtx.HTTPTestServer == nil {
		return ""
	}
	return testCtx.HTTPTestServer.Server.URL
}
