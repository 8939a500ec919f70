package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Go2NetFixtures/internal/config"
	"Go2NetFixtures/internal/generator"

	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	cfg := config.Default()
	cfg.API.MaxCount = 500
	return NewServer(*cfg)
}

func get(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))
	return rr
}

func TestHealth(t *testing.T) {
	rr := get(t, newTestServer(), "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestArchetypes(t *testing.T) {
	rr := get(t, newTestServer(), "/api/v1/archetypes")
	require.Equal(t, http.StatusOK, rr.Code)

	var out []ArchetypeInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, len(generator.Names()))
	assert.Equal(t, generator.SYNFlood, out[0].Name)
	assert.Equal(t, "mixed_attack.pcap", out[len(out)-1].FileName)
}

func TestFixture(t *testing.T) {
	s := newTestServer()
	rr := get(t, s, "/api/v1/fixtures/fragment?count=5&target=10.9.8.7&seed=99")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, PcapContentType, rr.Header().Get("Content-Type"))
	assert.Equal(t, "99", rr.Header().Get("X-Fixture-Seed"))

	r, err := pcapgo.NewReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	n := 0
	for {
		if _, _, err := r.ReadPacketData(); err != nil {
			break
		}
		n++
	}
	assert.Equal(t, 10, n)

	again := get(t, s, "/api/v1/fixtures/fragment?count=5&target=10.9.8.7&seed=99")
	assert.Equal(t, rr.Body.Len(), again.Body.Len())
}

func TestFixtureErrors(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		url  string
		code int
	}{
		{"/api/v1/fixtures/smurf", http.StatusNotFound},
		{"/api/v1/fixtures/syn_flood?count=abc", http.StatusBadRequest},
		{"/api/v1/fixtures/syn_flood?count=-1", http.StatusBadRequest},
		{"/api/v1/fixtures/syn_flood?count=501", http.StatusBadRequest},
		{"/api/v1/fixtures/syn_flood?count=1&target=::1", http.StatusBadRequest},
		{"/api/v1/fixtures/syn_flood?count=1&target=victim", http.StatusBadRequest},
		{"/api/v1/fixtures/syn_flood?count=1&seed=-4", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rr := get(t, s, tt.url)
		assert.Equal(t, tt.code, rr.Code, tt.url)
	}
}
