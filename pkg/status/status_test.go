package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gobarscan/pkg/barcode"
	"github.com/itohio/gobarscan/pkg/decoder"
	"github.com/itohio/gobarscan/pkg/scanner"
)

type fakeSource struct {
	last    *barcode.Decode
	matched rune
	cal     scanner.Calibration
	stats   decoder.Stats
}

func (f *fakeSource) LastDecoded() (rune, bool) {
	if f.last == nil {
		return 0, false
	}
	return f.last.Payload, true
}

func (f *fakeSource) Last() (barcode.Decode, bool) {
	if f.last == nil {
		return barcode.Decode{}, false
	}
	return *f.last, true
}

func (f *fakeSource) LastMatched() (rune, bool)        { return f.matched, f.matched != 0 }
func (f *fakeSource) Calibration() scanner.Calibration { return f.cal }
func (f *fakeSource) Stats() decoder.Stats             { return f.stats }

func get(t *testing.T, src Source, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	New(":0", src, nil).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestBarcode_NotFound(t *testing.T) {
	rec := get(t, &fakeSource{}, "/api/barcode")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBarcode(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	src := &fakeSource{last: &barcode.Decode{ID: "id-1", Payload: 'A', Text: "A", Frame: "*A*", At: at}}

	rec := get(t, src, "/api/barcode")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "id-1", got["id"])
	assert.Equal(t, "A", got["payload"])
	assert.Equal(t, "*A*", got["frame"])
	assert.Equal(t, "2026-01-02T03:04:05Z", got["at"])
}

func TestMatched(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
		want matchedResponse
	}{
		{"none", &fakeSource{}, matchedResponse{}},
		{"sentinel", &fakeSource{matched: '*'}, matchedResponse{Char: "*", Valid: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, tt.src, "/api/matched")
			require.Equal(t, http.StatusOK, rec.Code)

			var got matchedResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalibration(t *testing.T) {
	src := &fakeSource{cal: scanner.Calibration{
		Light:         scanner.LevelStats{N: 3, Mean: 300},
		DarkThreshold: 1650,
	}}

	rec := get(t, src, "/api/calibration")
	require.Equal(t, http.StatusOK, rec.Code)

	var got scanner.Calibration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, src.cal, got)
}

func TestStats(t *testing.T) {
	src := &fakeSource{stats: decoder.Stats{Matched: 3, Expired: 1, Dropped: 2}}

	rec := get(t, src, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]uint64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, map[string]uint64{"matched": 3, "expired": 1, "dropped": 2}, got)
}

func TestHealthz(t *testing.T) {
	rec := get(t, &fakeSource{}, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	New(":0", &fakeSource{}, nil).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/barcode", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMethodNotAllowed_AllEndpoints(t *testing.T) {
	router := New(":0", &fakeSource{}, nil).Router()

	for _, path := range []string{"/api/barcode", "/api/matched", "/api/calibration", "/api/stats"} {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			t.Run(method+" "+path, func(t *testing.T) {
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
				assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			})
		}
	}
}

func TestUnknownPath(t *testing.T) {
	rec := get(t, &fakeSource{}, "/api/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StartStop(t *testing.T) {
	srv := New("127.0.0.1:0", &fakeSource{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	srv.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		srv.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
