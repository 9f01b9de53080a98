package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"clipd/internal/types"
	"clipd/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDetector struct {
	res usecase.DetectResult
	err error
	in  usecase.DetectInput
}

func (f *fakeDetector) Detect(_ context.Context, in usecase.DetectInput) (usecase.DetectResult, error) {
	f.in = in
	return f.res, f.err
}

type fakeProbe struct {
	duration float64
	err      error
}

func (f fakeProbe) ExtractAudio(_ context.Context, _, _ string) error { return nil }
func (f fakeProbe) CutClip(_ context.Context, _ string, _, _ float64, _ string) error {
	return nil
}
func (f fakeProbe) ProbeDuration(_ context.Context, _ string) (float64, error) {
	return f.duration, f.err
}

func newTestServer(t *testing.T, det Detector, probe fakeProbe) *Server {
	t.Helper()
	return New(Config{
		UploadsDir:     t.TempDir(),
		ClipsDir:       t.TempDir(),
		WindowSeconds:  180,
		OverlapSeconds: 20,
	}, det, probe, nil)
}

const validUploadID = "0b785d14-1f40-4ff3-9a5a-8a9a2a4c2a11.mp4"

func detectBody(t *testing.T, uploadID string, count any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"uploadId":            uploadID,
		"clipOption":          "userChoice",
		"desiredClipCount":    count,
		"desiredClipDuration": 30,
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

func doDetect(t *testing.T, s *Server, body *bytes.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/detect", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestDetectEndpoint_HappyPath(t *testing.T) {
	t.Parallel()

	det := &fakeDetector{res: usecase.DetectResult{
		Transcript: types.Transcript{
			Text:     "hello",
			Segments: []types.Segment{{Start: 0, End: 5, Text: "hello"}},
		},
		Clips: []types.Selection{{
			Candidate:   types.Candidate{Title: "t", Start: 0, End: 5},
			DownloadURL: "/clips/t-1.mp4",
		}},
	}}
	s := newTestServer(t, det, fakeProbe{})

	w := doDetect(t, s, detectBody(t, validUploadID, 2))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp detectResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Transcript != "hello" || len(resp.Clips) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if det.in.Policy.Count.N != 2 || det.in.Policy.Duration != 30 {
		t.Fatalf("policy not passed through: %+v", det.in.Policy)
	}
	if !strings.HasSuffix(det.in.MediaPath, validUploadID) {
		t.Fatalf("unexpected media path %q", det.in.MediaPath)
	}
}

func TestDetectEndpoint_MaxCount(t *testing.T) {
	t.Parallel()

	det := &fakeDetector{}
	s := newTestServer(t, det, fakeProbe{})

	w := doDetect(t, s, detectBody(t, validUploadID, "max"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !det.in.Policy.Count.Max {
		t.Fatalf("expected max count to be passed through, got %+v", det.in.Policy.Count)
	}
}

func TestDetectEndpoint_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "bad input", err: fmt.Errorf("policy: %w", usecase.ErrBadInput), want: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("media: %w", usecase.ErrNotFound), want: http.StatusNotFound},
		{name: "timeout", err: fmt.Errorf("asr: %w", usecase.ErrTimeout), want: http.StatusGatewayTimeout},
		{name: "deadline", err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{name: "generic", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer(t, &fakeDetector{err: tc.err}, fakeProbe{})
			w := doDetect(t, s, detectBody(t, validUploadID, 1))
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestDetectEndpoint_RejectsBadRequests(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{name: "not json", body: "nope"},
		{name: "traversal upload id", body: `{"uploadId":"../../etc/passwd","clipOption":"aiPick","desiredClipCount":1}`},
		{name: "bad clip option", body: `{"uploadId":"` + validUploadID + `","clipOption":"magic","desiredClipCount":1}`},
		{name: "negative count", body: `{"uploadId":"` + validUploadID + `","clipOption":"userChoice","desiredClipCount":-2}`},
		{name: "bad count literal", body: `{"uploadId":"` + validUploadID + `","clipOption":"userChoice","desiredClipCount":"all"}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer(t, &fakeDetector{}, fakeProbe{})
			w := doDetect(t, s, bytes.NewReader([]byte(tc.body)))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func uploadRequest(t *testing.T, field, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("fake video bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeDetector{}, fakeProbe{duration: 42.5})
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, uploadRequest(t, "video", "My Talk.MP4"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !uploadIDRE.MatchString(resp.UploadID) {
		t.Fatalf("upload id %q does not match expected shape", resp.UploadID)
	}
	if !strings.HasSuffix(resp.UploadID, ".mp4") {
		t.Fatalf("expected lowercased original extension, got %q", resp.UploadID)
	}
	if resp.DurationSeconds != 42.5 {
		t.Fatalf("expected probed duration, got %v", resp.DurationSeconds)
	}
}

func TestUploadEndpoint_MissingFile(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeDetector{}, fakeProbe{})
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, uploadRequest(t, "wrong_field", "x.mp4"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUploadEndpoint_UnreadableMediaRejected(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeDetector{}, fakeProbe{err: errors.New("moov atom not found")})
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, uploadRequest(t, "video", "x.mp4"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeDetector{}, fakeProbe{})
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
