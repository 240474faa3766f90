package api

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanchriswhite/shotlayout/internal/config"
	"github.com/bryanchriswhite/shotlayout/internal/looper"
	"github.com/bryanchriswhite/shotlayout/internal/output"
	"github.com/bryanchriswhite/shotlayout/internal/session"
)

type fixture struct {
	server *Server
	http   *httptest.Server
	hub    *Hub
	sess   *session.Session
}

func newFixture(t *testing.T) *fixture {
	path := t.TempDir() + "/config.yaml"
	mgr, err := config.NewManager(path)
	require.NoError(t, err)
	require.NoError(t, mgr.Set("media.dir", t.TempDir()))
	require.NoError(t, mgr.Set("display.width", "400"))
	require.NoError(t, mgr.Set("display.height", "800"))
	cfg := mgr.Get()

	loop := looper.New(120)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)

	hub := NewHub(nil)
	sess, err := session.New(cfg, session.Deps{Frames: loop, Launcher: hub, Notifier: hub, Context: ctx})
	require.NoError(t, err)

	stream := output.NewMJPEGOutput(output.Config{Width: 400, Height: 800, FPS: 120})
	require.NoError(t, stream.Start())
	t.Cleanup(func() { stream.Stop() })

	s := NewServer(loop, sess, mgr, stream, hub)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	return &fixture{server: s, http: ts, hub: hub, sess: sess}
}

func (f *fixture) getJSON(t *testing.T, path string, v interface{}) {
	resp, err := http.Get(f.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthAndStatus(t *testing.T) {
	f := newFixture(t)

	var health map[string]string
	f.getJSON(t, "/api/health", &health)
	assert.Equal(t, "healthy", health["status"])

	var st Status
	f.getJSON(t, "/api/status", &st)
	assert.Equal(t, "idle", st.Phase)
	assert.Zero(t, st.Progress)
	assert.False(t, st.Dragging)
}

func TestStreamPublishesFrames(t *testing.T) {
	f := newFixture(t)
	require.Eventually(t, func() bool { return f.server.stream.Stats().Frames > 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestShotsAndThumbnail(t *testing.T) {
	f := newFixture(t)

	var shots []Shot
	f.getJSON(t, "/api/shots", &shots)
	assert.Empty(t, shots)

	img := image.NewRGBA(image.Rect(0, 0, 400, 800))
	_, err := f.sess.Store.Insert(context.Background(), img, "pkg_2024-03-09 17:05:02", "screenshot")
	require.NoError(t, err)

	f.getJSON(t, "/api/shots", &shots)
	require.Len(t, shots, 1)
	assert.Equal(t, "pkg_2024-03-09_17-05-02.png", shots[0].Name)

	resp, err := http.Get(f.http.URL + "/api/shots/" + shots[0].Name + "/thumbnail")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	thumb, err := imaging.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, ThumbnailWidth, 2*ThumbnailWidth), thumb.Bounds())

	for path, code := range map[string]int{
		"/api/shots/missing.png/thumbnail": http.StatusNotFound,
		"/api/shots/notes.txt/thumbnail":   http.StatusBadRequest,
	} {
		resp, err := http.Get(f.http.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, code, resp.StatusCode, path)
	}
}

func TestWebSocketGestureShares(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	send := func(action string, id int, y float64) {
		require.NoError(t, conn.WriteJSON(PointerMessage{Type: "pointer", Action: action, ID: id, X: 100 + float64(id)*50, Y: y}))
	}
	send("down", 0, 100)
	send("down", 1, 100)
	send("down", 2, 100)
	send("move", 2, 200)
	send("move", 2, 450)
	send("up", 2, 0)
	send("up", 1, 0)
	send("up", 0, 0)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != "share" {
			continue
		}
		require.NotNil(t, msg.Intent)
		assert.Equal(t, "Send mail...", msg.Label)
		assert.True(t, strings.HasPrefix(msg.Intent.Subject, "me.yugy.github.screenshotlayout_"))
		assert.True(t, strings.HasPrefix(msg.Intent.Stream, "file://"))
		break
	}

	history := f.hub.History()
	require.NotEmpty(t, history)
	assert.Equal(t, "share", history[len(history)-1].Type)
}

func TestPullDownEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.http.URL+"/api/gesture/pulldown", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 16, body["steps"])

	require.Eventually(t, func() bool {
		for _, m := range f.hub.History() {
			if m.Type == "share" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
}

func TestHub_NotifyAndHistory(t *testing.T) {
	h := NewHub(nil)
	for i := 0; i < historySize+5; i++ {
		h.Notify("screenshot failed")
	}
	history := h.History()
	assert.Len(t, history, historySize)
	assert.Equal(t, "notice", history[0].Type)
	assert.Equal(t, "screenshot failed", history[0].Notice)
	assert.False(t, history[0].Time.IsZero())
}
