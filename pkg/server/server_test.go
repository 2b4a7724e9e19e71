package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/drag"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/pipeline"
	"github.com/matzehuels/bentogrid/pkg/store"
)

const testHandle = "alice.bsky.social"

func item(id string, x, y, w, h int) *grid.Item {
	return &grid.Item{
		ID: id,
		X:  x, Y: y, W: w, H: h,
		MobileX: 0, MobileY: y * 2, MobileW: w * 2, MobileH: h * 2,
		CardData: map[string]any{},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(st, nil, nil, nil, logger)
	srv := httptest.NewServer(New(runner, Config{}, logger).Handler())
	t.Cleanup(func() {
		srv.Close()
		runner.Close()
	})
	return srv
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d: %s", resp.StatusCode, want, body)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[map[string]string](t, resp); got["status"] != "ok" {
		t.Errorf("status = %q, want ok", got["status"])
	}
}

func TestLayoutSettle(t *testing.T) {
	srv := newTestServer(t)
	req := pipeline.LayoutRequest{
		Items: []*grid.Item{item("a", 0, 0, 2, 2), item("b", 0, 0, 2, 2)},
	}

	resp := do(t, http.MethodPost, srv.URL+"/v1/layout/settle", req)
	expectStatus(t, resp, http.StatusOK)

	got := decode[pipeline.LayoutResult](t, resp)

	b := grid.Find(got.Items, "b")
	if b == nil || b.Y != 2 {
		t.Fatalf("b = %+v, want pushed to y=2", b)
	}
	if got.Height != 4 {
		t.Errorf("Height = %d, want 4", got.Height)
	}
	if !grid.Valid(got.Items, grid.Desktop) || !grid.Settled(got.Items, grid.Desktop) {
		t.Error("layout is not valid and settled")
	}
}

func TestLayoutErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
		code errors.Code
	}{
		{"unknown op", "/v1/layout/shuffle", `{"items":[]}`, errors.ErrCodeInvalidInput},
		{"malformed json", "/v1/layout/settle", `{"items":`, errors.ErrCodeInvalidInput},
		{"unknown field", "/v1/layout/settle", `{"items":[],"bogus":1}`, errors.ErrCodeInvalidInput},
		{"empty body", "/v1/layout/settle", ``, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+tt.path, "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			expectStatus(t, resp, http.StatusBadRequest)
			body := decode[errorBody](t, resp)
			if body.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.code)
			}
			if body.RequestID == "" {
				t.Error("missing request id")
			}
		})
	}
}

func TestLayoutMoveUnknownCard(t *testing.T) {
	srv := newTestServer(t)
	req := pipeline.LayoutRequest{ID: "zz", Items: []*grid.Item{item("a", 0, 0, 2, 2)}}
	resp := do(t, http.MethodPost, srv.URL+"/v1/layout/move", req)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestDragSwap(t *testing.T) {
	srv := newTestServer(t)
	req := dragRequest{
		Items:     []*grid.Item{item("a", 0, 0, 2, 2), item("b", 2, 0, 2, 2)},
		ID:        "a",
		ClientX:   216,
		ClientY:   16,
		Container: drag.Container{Width: 832},
	}

	resp := do(t, http.MethodPost, srv.URL+"/v1/drag/position", req)
	expectStatus(t, resp, http.StatusOK)
	got := decode[dragResponse](t, resp)

	if got.Position.SwapWithID != "b" {
		t.Fatalf("Position = %+v, want swap with b", got.Position)
	}
	a, b := grid.Find(got.Items, "a"), grid.Find(got.Items, "b")
	if a.X != 2 || a.Y != 0 || b.X != 0 || b.Y != 0 {
		t.Errorf("a = (%d,%d), b = (%d,%d); want a at (2,0), b at (0,0)", a.X, a.Y, b.X, b.Y)
	}
	if got.Original["a"].X != 0 || got.Original["b"].X != 2 {
		t.Errorf("Original = %+v, want drag-start positions", got.Original)
	}
	if got.LastTargetID != "b" {
		t.Errorf("LastTargetID = %q, want b", got.LastTargetID)
	}
}

func TestDragErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		req    dragRequest
		status int
	}{
		{"unknown card", dragRequest{Items: []*grid.Item{item("a", 0, 0, 2, 2)}, ID: "zz", Container: drag.Container{Width: 832}}, http.StatusNotFound},
		{"no width", dragRequest{Items: []*grid.Item{item("a", 0, 0, 2, 2)}, ID: "a"}, http.StatusBadRequest},
		{"duplicate ids", dragRequest{Items: []*grid.Item{item("a", 0, 0, 2, 2), item("a", 2, 0, 2, 2)}, ID: "a"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/v1/drag/position", tt.req)
			expectStatus(t, resp, tt.status)
		})
	}
}

func TestRenderSVG(t *testing.T) {
	srv := newTestServer(t)
	req := renderRequest{
		Items:     []*grid.Item{item("a", 0, 0, 2, 2)},
		Container: drag.Container{Width: 832},
	}
	resp := do(t, http.MethodPost, srv.URL+"/v1/render/svg", req)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(body, []byte("<svg")) || !bytes.Contains(body, []byte(`id="card-a"`)) {
		t.Errorf("unexpected body:\n%s", body)
	}
}

func TestPages(t *testing.T) {
	srv := newTestServer(t)
	pageURL := srv.URL + "/v1/pages/" + testHandle + "/blento.self"

	doc := document.New(testHandle, "")
	doc.Cards = []*grid.Item{item("a", 0, 3, 2, 2)}

	resp := do(t, http.MethodPut, pageURL, doc)
	expectStatus(t, resp, http.StatusOK)
	saved := decode[saveResponse](t, resp)
	if saved.Puts != 1 || saved.Skipped {
		t.Errorf("save = %+v, want 1 put", saved)
	}
	if saved.Doc.Publication == nil || saved.Doc.Publication.URL == "" {
		t.Error("publication URL not filled in")
	}

	resp = do(t, http.MethodGet, pageURL, nil)
	expectStatus(t, resp, http.StatusOK)
	if resp.Header.Get("X-Cache") != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", resp.Header.Get("X-Cache"))
	}
	loaded := decode[document.Document](t, resp)
	if len(loaded.Cards) != 1 || loaded.Cards[0].Y != 0 {
		t.Errorf("loaded cards = %+v, want one card compacted to y=0", loaded.Cards)
	}

	resp = do(t, http.MethodGet, srv.URL+"/v1/pages/"+testHandle, nil)
	expectStatus(t, resp, http.StatusOK)
	list := decode[map[string][]string](t, resp)
	if len(list["pages"]) != 1 || list["pages"][0] != "blento.self" {
		t.Errorf("pages = %v", list["pages"])
	}

	resp = do(t, http.MethodDelete, pageURL, nil)
	expectStatus(t, resp, http.StatusNoContent)

	resp = do(t, http.MethodGet, pageURL, nil)
	expectStatus(t, resp, http.StatusNotFound)
	if body := decode[errorBody](t, resp); body.Error.Code != errors.ErrCodePageNotFound {
		t.Errorf("code = %s, want PAGE_NOT_FOUND", body.Error.Code)
	}
}

func TestPutPageMismatch(t *testing.T) {
	srv := newTestServer(t)
	doc := document.New("bob.bsky.social", "")
	resp := do(t, http.MethodPut, srv.URL+"/v1/pages/"+testHandle+"/blento.self", doc)
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestInvalidHandle(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/v1/pages/not_a_handle/blento.self", nil)
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidItem, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeItemNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{errors.New(errors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodeStore, "x"), http.StatusServiceUnavailable},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestServeShutdown(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(st, nil, nil, nil, logger), Config{}, logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
