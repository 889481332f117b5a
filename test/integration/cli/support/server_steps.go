package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/tokenprinter/internal/server"
)

// theServerIsRunning starts the in-process server.
func (testCtx *TestContext) theServerIsRunning() error {
	return testCtx.startTestHTTPServer()
}

// iSendARequestTo sends a request with an optional JSON body.
func (testCtx *TestContext) iSendARequestTo(method, path string, body string) error {
	if testCtx.HTTPTestServer == nil {
		return errors.New("server is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(testCtx.substituteCommandVariables(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, testCtx.ServerURL()+path, reader)
	if err != nil {
		return err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(data)
	testCtx.LastHTTPHeaders = make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		testCtx.LastHTTPHeaders[name] = resp.Header.Get(name)
	}
	return nil
}

func (testCtx *TestContext) iSendAGETRequestTo(path string) error {
	return testCtx.iSendARequestTo(http.MethodGet, path, "")
}

func (testCtx *TestContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	return testCtx.iSendARequestTo(method, path, body.Content)
}

// theResponseStatusShouldBe checks the last HTTP status code.
func (testCtx *TestContext) theResponseStatusShouldBe(status int) error {
	if testCtx.LastHTTPStatusCode != status {
		return fmt.Errorf("expected status %d, got %d\nBody: %s",
			status, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseShouldContain checks the last HTTP body.
func (testCtx *TestContext) theResponseShouldContain(text string) error {
	text = testCtx.substituteCommandVariables(text)
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseJSONFieldShouldBe compares a top-level JSON field rendered with %v.
func (testCtx *TestContext) theResponseJSONFieldShouldBe(field, expected string) error {
	var body map[string]any
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &body); err != nil {
		return fmt.Errorf("response is not JSON: %w\nBody: %s", err, testCtx.LastHTTPResponse)
	}
	value, ok := body[field]
	if !ok {
		return fmt.Errorf("field %q missing from response: %s", field, testCtx.LastHTTPResponse)
	}
	expected = testCtx.substituteCommandVariables(expected)
	if got := fmt.Sprintf("%v", value); got != expected {
		return fmt.Errorf("field %q is %q, want %q", field, got, expected)
	}
	return nil
}

// iConvertOverTheWebSocket sends one conversion and collects messages until the result.
func (testCtx *TestContext) iConvertOverTheWebSocket(filename string) error {
	if testCtx.HTTPTestServer == nil {
		return errors.New("server is not running")
	}

	wsURL := "ws" + strings.TrimPrefix(testCtx.ServerURL(), "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	msg := map[string]string{
		"type":       "convert",
		"input_dir":  testCtx.InputDir,
		"output_dir": testCtx.OutputDir,
		"filename":   filename,
	}
	if err := conn.WriteJSON(msg); err != nil {
		return err
	}

	testCtx.LastWebSocketMessages = nil
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	for {
		var response server.WebSocketResponse
		if err := conn.ReadJSON(&response); err != nil {
			return fmt.Errorf("websocket read failed: %w", err)
		}
		testCtx.LastWebSocketMessages = append(testCtx.LastWebSocketMessages, response.Type)
		if response.Type == "result" || response.Type == "error" {
			return nil
		}
	}
}

// theWebSocketMessagesShouldBe compares message types, comma separated.
func (testCtx *TestContext) theWebSocketMessagesShouldBe(expected string) error {
	got := strings.Join(testCtx.LastWebSocketMessages, ",")
	if got != expected {
		return fmt.Errorf("websocket messages were %q, want %q", got, expected)
	}
	return nil
}

// theStoredDefaultsAreTheInputAndOutputFolders writes the settings file through the settings endpoint.
func (testCtx *TestContext) theStoredDefaultsAreTheInputAndOutputFolders() error {
	body, err := json.Marshal(map[string]string{
		"default_input":  testCtx.InputDir,
		"default_output": testCtx.OutputDir,
	})
	if err != nil {
		return err
	}
	if err := testCtx.iSendARequestTo(http.MethodPut, "/settings", string(body)); err != nil {
		return err
	}
	return testCtx.theResponseStatusShouldBe(http.StatusOK)
}

// RegisterServerSteps registers HTTP and WebSocket step definitions.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the server is running$`, testCtx.theServerIsRunning)
	sc.Step(`^I send a GET request to "([^"]*)"$`, testCtx.iSendAGETRequestTo)
	sc.Step(`^I send a (POST|PUT) request to "([^"]*)" with body:$`, testCtx.iSendARequestToWithBody)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseJSONFieldShouldBe)
	sc.Step(`^I convert to "([^"]*)" over the WebSocket$`, testCtx.iConvertOverTheWebSocket)
	sc.Step(`^the WebSocket messages should be "([^"]*)"$`, testCtx.theWebSocketMessagesShouldBe)
	sc.Step(`^the stored defaults are the input and output folders$`,
		testCtx.theStoredDefaultsAreTheInputAndOutputFolders)
}
