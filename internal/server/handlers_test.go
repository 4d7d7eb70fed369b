package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/Travid/littleAI/internal/audio"
	"github.com/Travid/littleAI/internal/broadcast"
	"github.com/Travid/littleAI/internal/config"
	"github.com/Travid/littleAI/internal/face"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		Port:               "0",
		LogLevel:           "info",
		LogFormat:          "text",
		DeviceName:         "test-face",
		RenderTickMs:       5,
		CommandLockTimeout: 50 * time.Millisecond,
		RenderLockTimeout:  10 * time.Millisecond,
		MaxPayloadBytes:    16384,
		MaxFeedClients:     4,
		AudioSampleRate:    16000,
		AudioVolumePercent: 75,
	}
}

// testServer wires a full server on a real store and returns its base URL.
func testServer(t *testing.T) (*Server, *face.Store, string) {
	t.Helper()

	clock := clockwork.NewRealClock()
	cfg := testConfig()

	store := face.NewStore(clock)
	synth := audio.NewSynth(audio.NopSink{}, cfg.AudioSampleRate, cfg.AudioVolumePercent)
	dispatcher := face.NewDispatcher(store, face.NewClock(clock), synth, cfg.CommandLockTimeout)

	broadcaster := broadcast.NewBroadcaster(cfg.MaxFeedClients, clock)
	t.Cleanup(func() { broadcaster.Stop() })

	srv := NewServer(cfg, dispatcher, store, broadcaster, clock)

	httpServer := httptest.NewServer(srv.echo)
	t.Cleanup(httpServer.Close)

	return srv, store, httpServer.URL
}

func dialWS(t *testing.T, baseURL, path string) *ws.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + path
	conn, _, err := ws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendCommand(t *testing.T, conn *ws.Conn, payload string) map[string]any {
	t.Helper()
	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(payload)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ack map[string]any
	require.NoError(t, json.Unmarshal(data, &ack))
	return ack
}

func TestCommandSocket_RoundTrip(t *testing.T) {
	_, store, baseURL := testServer(t)

	conn := dialWS(t, baseURL, "/ws")

	ack := sendCommand(t, conn, `{"type":"set_expression","expression":"happy"}`)
	require.Equal(t, true, ack["ok"])
	require.Equal(t, "ack", ack["type"])
	require.Equal(t, "set_expression", ack["cmd"])

	state, ok := ack["state"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "happy", state["expression"])

	snap, err := store.Snapshot(time.Second)
	require.NoError(t, err)
	require.Equal(t, face.ExpressionHappy, snap.Expression)
}

func TestCommandSocket_PingPong(t *testing.T) {
	_, _, baseURL := testServer(t)

	conn := dialWS(t, baseURL, "/ws")

	ack := sendCommand(t, conn, `{"type":"ping"}`)
	require.Equal(t, true, ack["ok"])
	require.Equal(t, "pong", ack["type"])
	require.Contains(t, ack, "ts_ms")
}

func TestCommandSocket_InvalidJSON(t *testing.T) {
	_, _, baseURL := testServer(t)

	conn := dialWS(t, baseURL, "/ws")

	ack := sendCommand(t, conn, `{{{`)
	require.Equal(t, false, ack["ok"])
	require.Equal(t, "invalid_json", ack["error"])
}

func TestCommandSocket_OversizedPayloadDroppedSilently(t *testing.T) {
	_, _, baseURL := testServer(t)

	conn := dialWS(t, baseURL, "/ws")

	// The oversized payload gets no response at all; the next command is
	// answered normally, proving the connection survived.
	big := `{"type":"caption","text":"` + strings.Repeat("x", 20000) + `"}`
	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(big)))

	ack := sendCommand(t, conn, `{"type":"ping"}`)
	require.Equal(t, "pong", ack["type"])
}

func TestCommandSocket_SequentialOrdering(t *testing.T) {
	_, _, baseURL := testServer(t)

	conn := dialWS(t, baseURL, "/ws")

	// Acks come back in command order on a single connection.
	ack := sendCommand(t, conn, `{"type":"gaze","x":0.1}`)
	require.Equal(t, "gaze", ack["cmd"])
	ack = sendCommand(t, conn, `{"type":"blink"}`)
	require.Equal(t, "blink", ack["cmd"])
	ack = sendCommand(t, conn, `{"type":"get_state"}`)
	require.Equal(t, "state", ack["type"])
}

func TestRenderSocket_ReceivesPublishedFrames(t *testing.T) {
	srv, _, baseURL := testServer(t)

	conn := dialWS(t, baseURL, "/ws/render")

	require.Eventually(t, func() bool { return srv.broadcaster.ClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	srv.broadcaster.Publish(face.Frame{TsMs: 99, MouthMode: face.MouthModeBar})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame face.Frame
	require.NoError(t, json.Unmarshal(data, &frame))
	require.Equal(t, int64(99), frame.TsMs)
}

func TestAPIState(t *testing.T) {
	_, store, baseURL := testServer(t)

	require.NoError(t, store.Update(time.Second, func(st *face.State) {
		st.Expression = face.ExpressionThinking
	}))

	resp, err := http.Get(baseURL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state face.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	require.Equal(t, face.ExpressionThinking, state.Expression)
}

func TestAPICommand(t *testing.T) {
	_, store, baseURL := testServer(t)

	resp, err := http.Post(baseURL+"/api/command", "application/json",
		strings.NewReader(`{"type":"gaze","x":0.5,"y":0.5}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ack face.Ack
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	require.True(t, ack.OK)
	require.Equal(t, "gaze", ack.Cmd)

	snap, err := store.Snapshot(time.Second)
	require.NoError(t, err)
	require.Equal(t, 0.5, snap.GazeX)
}

func TestAPICommand_Oversized(t *testing.T) {
	_, _, baseURL := testServer(t)

	big := `{"type":"caption","text":"` + strings.Repeat("x", 20000) + `"}`
	resp, err := http.Post(baseURL+"/api/command", "application/json", strings.NewReader(big))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	_, _, baseURL := testServer(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp, err := http.Get(baseURL + path)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestVersionEndpoint(t *testing.T) {
	_, _, baseURL := testServer(t)

	resp, err := http.Get(baseURL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	require.Contains(t, info, "version")
}
