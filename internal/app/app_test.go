package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/messaging"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configTemplate = `
app:
  name: phone-verification-test
  server:
    max_goroutine: 4
    cors: http://localhost:3000
instrument:
  enabled: false
verification:
  api:
    send_url: %[1]s/otp/send
    verify_url: %[1]s/otp/verify
    timeout_seconds: 2
  timing:
    success_close_ms: 50
    reset_delay_ms: 10
  events:
    enabled: true
messaging:
  driver: memory
`

type otpService struct {
	mu    sync.Mutex
	paths []string
}

func (s *otpService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"message":"ok"}`))
}

func (s *otpService) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func post(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestApp_VerificationFlow(t *testing.T) {
	otp := &otpService{}
	otpSrv := httptest.NewServer(otp)
	defer otpSrv.Close()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(configTemplate, otpSrv.URL)), 0o600))
	t.Setenv("CONFIG_PATH", path)

	a := New()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	errc := a.Serve(l)
	base := "http://" + l.Addr().String()

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	code, env := post(t, base+"/api/v1/verification/session", `{"phone_number":"+966500000000","purpose":"registration"}`)
	require.Equal(t, http.StatusOK, code)
	data := env["data"].(map[string]any)
	assert.Equal(t, true, data["accepted"])
	assert.Equal(t, "sent", data["status"])

	code, env = post(t, base+"/api/v1/verification/session/verify", `{"code":"123456"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env["data"].(map[string]any)["status"])
	assert.Equal(t, []string{"/otp/send", "/otp/verify"}, otp.calls())

	mem, ok := a.messaging.(*messaging.Memory)
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return len(mem.Messages(event.PhoneVerificationVerifiedDestination)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.Stop(ctx)

	require.ErrorIs(t, <-errc, http.ErrServerClosed)
	assert.Empty(t, mem.Messages(event.PhoneVerificationCancelledDestination))
}
