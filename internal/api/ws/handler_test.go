package ws

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasprayio/dataspray/internal/domain/workspace"
	"github.com/datasprayio/dataspray/internal/providers/terminal"
)

type countingRecorder struct {
	mu       sync.Mutex
	open     int
	messages map[string]int
}

func (r *countingRecorder) IncWSConnections() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open++
}

func (r *countingRecorder) DecWSConnections() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open--
}

func (r *countingRecorder) RecordWSMessage(direction, msgType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.messages == nil {
		r.messages = make(map[string]int)
	}
	r.messages[direction+":"+msgType]++
}

func (r *countingRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[key]
}

// serve starts a handler on a test server and returns its websocket URL.
func serve(t *testing.T, rec Recorder, opts ...Option) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh syntax")
	}
	gin.SetMode(gin.TestMode)

	root, err := workspace.NewRoot(t.TempDir())
	require.NoError(t, err)
	executor := terminal.NewExecutor(root)
	t.Cleanup(executor.Shutdown)

	router := gin.New()
	router.GET("/terminal/ws", NewHandler(executor, rec, nil, opts...).HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/terminal/ws"
}

func dial(t *testing.T, rec Recorder) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(serve(t, rec), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var hello Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "system", hello.Type)
	assert.True(t, strings.HasPrefix(hello.ConnID, "conn_"), hello.ConnID)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestExecute(t *testing.T) {
	rec := &countingRecorder{}
	conn := dial(t, rec)

	require.NoError(t, conn.WriteJSON(Message{Type: "execute", Cmd: "echo one; echo two"}))

	var output []string
	for {
		msg := read(t, conn)
		if msg.Type != "output" {
			assert.Equal(t, "status", msg.Type)
			assert.True(t, strings.HasPrefix(msg.Data, "status 0 in "), msg.Data)
			break
		}
		output = append(output, msg.Data)
	}
	assert.Equal(t, []string{"one\n", "two\n"}, output)
	assert.Equal(t, 1, rec.count("in:execute"))
	assert.Equal(t, 2, rec.count("out:output"))
}

func TestPing(t *testing.T) {
	conn := dial(t, nil)

	require.NoError(t, conn.WriteJSON(Message{Type: "ping"}))
	assert.Equal(t, "pong", read(t, conn).Type)
}

func TestErrors(t *testing.T) {
	conn := dial(t, nil)

	require.NoError(t, conn.WriteJSON(Message{Type: "bogus"}))
	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "unknown message type", msg.Message)

	require.NoError(t, conn.WriteJSON(Message{Type: "execute", Cmd: " "}))
	msg = read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, terminal.ErrEmptyCommand.Error(), msg.Message)
}

func TestConnectionCount(t *testing.T) {
	rec := &countingRecorder{}
	conn := dial(t, rec)

	rec.mu.Lock()
	assert.Equal(t, 1, rec.open)
	rec.mu.Unlock()

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.open == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestAllowedOrigins(t *testing.T) {
	url := serve(t, nil, WithAllowedOrigins([]string{"https://app.example"}))

	tests := []struct {
		name   string
		origin string
		status int
	}{
		{"allowed", "https://app.example", http.StatusSwitchingProtocols},
		{"case insensitive", "https://APP.example", http.StatusSwitchingProtocols},
		{"no origin header", "", http.StatusSwitchingProtocols},
		{"other origin", "https://evil.example", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusSwitchingProtocols {
				require.NoError(t, err)
				conn.Close()
			} else {
				assert.ErrorIs(t, err, websocket.ErrBadHandshake)
			}
		})
	}
}

func TestWildcardOrigin(t *testing.T) {
	url := serve(t, nil, WithAllowedOrigins([]string{"*"}))

	header := http.Header{"Origin": []string{"https://anywhere.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}
