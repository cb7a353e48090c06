package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-pointlight/pkg/actions"
	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg, err := actions.NewDefaultRegistry("")
	if err != nil {
		t.Fatalf("NewDefaultRegistry failed: %v", err)
	}
	cfg := DefaultConfig()
	cfg.FPS = 30
	cfg.MaxFPS = 120
	return NewServer(reg, cfg)
}

func getJSON(t *testing.T, s *Server, method, path string, body io.Reader, wantStatus int, out any) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, wantStatus, resp.StatusCode, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("%s %s: decode: %v (%s)", method, path, err, data)
		}
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	var body map[string]any
	getJSON(t, s, "GET", "/health", nil, http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
	if body["actions"].(float64) != 11 {
		t.Errorf("Expected 11 actions, got %v", body["actions"])
	}
}

func TestJoints(t *testing.T) {
	s := newTestServer(t)
	var joints []JointInfo
	getJSON(t, s, "GET", "/api/joints", nil, http.StatusOK, &joints)

	if len(joints) != skeleton.NumJoints {
		t.Fatalf("Expected %d joints, got %d", skeleton.NumJoints, len(joints))
	}
	if joints[0].Name != "head" || joints[0].Parent == nil || *joints[0].Parent != "neck" {
		t.Errorf("Expected head with parent neck first, got %+v", joints[0])
	}
	pelvis := joints[skeleton.Pelvis]
	if pelvis.Name != "pelvis" || pelvis.Parent != nil {
		t.Errorf("Expected pelvis as root, got %+v", pelvis)
	}
	if joints[14].Name != "right_ankle" {
		t.Errorf("Expected right_ankle last, got %s", joints[14].Name)
	}
}

func TestListActions(t *testing.T) {
	s := newTestServer(t)

	var all struct {
		Actions    []actions.Summary   `json:"actions"`
		Categories map[string][]string `json:"categories"`
	}
	getJSON(t, s, "GET", "/api/actions", nil, http.StatusOK, &all)
	if len(all.Actions) != 11 {
		t.Errorf("Expected 11 actions, got %d", len(all.Actions))
	}
	if len(all.Categories["posture"]) != 2 {
		t.Errorf("Expected 2 posture actions, got %v", all.Categories["posture"])
	}

	var found struct {
		Actions []actions.Summary `json:"actions"`
	}
	getJSON(t, s, "GET", "/api/actions?q=sad", nil, http.StatusOK, &found)
	if len(found.Actions) != 1 || found.Actions[0].Name != "walk_sad" {
		t.Errorf("Expected walk_sad, got %+v", found.Actions)
	}
}

func TestGetAction(t *testing.T) {
	s := newTestServer(t)

	var detail ActionDetail
	getJSON(t, s, "GET", "/api/actions/jump", nil, http.StatusOK, &detail)
	if detail.Mode != actions.ModePhases {
		t.Errorf("Expected phases mode, got %s", detail.Mode)
	}
	if len(detail.Phases) != 5 || detail.Phases[2] != "flight" {
		t.Errorf("Expected jump phases, got %v", detail.Phases)
	}
	if !detail.Looping {
		t.Error("Expected jump to loop")
	}

	var e map[string]string
	getJSON(t, s, "GET", "/api/actions/moonwalk", nil, http.StatusNotFound, &e)
	if !strings.Contains(e["error"], "moonwalk") {
		t.Errorf("Expected error naming the action, got %q", e["error"])
	}
}

func TestPose(t *testing.T) {
	s := newTestServer(t)

	var frame struct {
		player.Frame
		Phase string `json:"phase"`
	}
	getJSON(t, s, "GET", "/api/actions/jump/pose?t=0.7", nil, http.StatusOK, &frame)
	if frame.Action != "jump" || frame.T != 0.7 {
		t.Errorf("Expected jump at 0.7, got %s at %v", frame.Action, frame.T)
	}
	if frame.Phase != "flight" {
		t.Errorf("Expected flight phase, got %q", frame.Phase)
	}

	a, _ := s.registry.Get("jump")
	if d := frame.Points.MaxDeviation(a.PoseAt(0.7)); d > 1e-9 {
		t.Errorf("Expected served pose to match the generator, off by %g", d)
	}

	getJSON(t, s, "GET", "/api/actions/jump/pose?t=soon", nil, http.StatusBadRequest, nil)
	getJSON(t, s, "GET", "/api/actions/jump/pose?t=NaN", nil, http.StatusBadRequest, nil)
}

func TestFrames(t *testing.T) {
	s := newTestServer(t)

	var body struct {
		FPS    float64        `json:"fps"`
		Frames []player.Frame `json:"frames"`
	}
	getJSON(t, s, "GET", "/api/actions/walk/frames?from=0&to=0.5&fps=10", nil, http.StatusOK, &body)
	if len(body.Frames) != 6 {
		t.Fatalf("Expected 6 frames, got %d", len(body.Frames))
	}
	for i, f := range body.Frames {
		if f.Index != i {
			t.Errorf("Expected index %d, got %d", i, f.Index)
		}
	}

	// Defaults: one period at the configured rate.
	getJSON(t, s, "GET", "/api/actions/turn/frames", nil, http.StatusOK, &body)
	if body.FPS != 30 || len(body.Frames) != 73 {
		t.Errorf("Expected 73 frames at 30 fps, got %d at %v", len(body.Frames), body.FPS)
	}

	getJSON(t, s, "GET", "/api/actions/walk/frames?fps=1000", nil, http.StatusBadRequest, nil)
	getJSON(t, s, "GET", "/api/actions/walk/frames?from=2&to=1", nil, http.StatusBadRequest, nil)
	getJSON(t, s, "GET", "/api/actions/walk/frames?to=100000", nil, http.StatusBadRequest, nil)
	getJSON(t, s, "GET", "/api/actions/nope/frames", nil, http.StatusNotFound, nil)
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s := newTestServer(t)
	getJSON(t, s, "GET", "/ws/stream/walk", nil, http.StatusUpgradeRequired, nil)
}

// serve starts the app on a loopback listener.
func serve(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go s.App().Listener(ln)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return ln.Addr().String()
}

func TestStream(t *testing.T) {
	s := newTestServer(t)
	addr := serve(t, s)

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws/stream/walk?fps=100&speed=2", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer ws.Close()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Hello
	if err := ws.ReadJSON(&hello); err != nil {
		t.Fatalf("ReadJSON hello: %v", err)
	}
	if hello.Session == "" || hello.Action != "walk" || hello.FPS != 100 || hello.Speed != 2 || !hello.Loop {
		t.Errorf("Unexpected hello: %+v", hello)
	}

	var last player.Frame
	for i := 0; i < 5; i++ {
		var f player.Frame
		if err := ws.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON frame %d: %v", i, err)
		}
		if f.Action != "walk" || f.Index != i {
			t.Errorf("Expected walk frame %d, got %s frame %d", i, f.Action, f.Index)
		}
		if i > 0 && f.T < last.T {
			t.Errorf("Expected advancing time, got %v after %v", f.T, last.T)
		}
		last = f
	}

	if err := ws.WriteJSON(Command{Cmd: "stop"}); err != nil {
		t.Fatalf("WriteJSON stop: %v", err)
	}
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Errorf("Expected normal closure, got %v", err)
			}
			break
		}
	}
}

func TestStream_SilentPeer(t *testing.T) {
	s := newTestServer(t)
	addr := serve(t, s)

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws/stream/jump?loop=false&speed=20&fps=60", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer ws.Close()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Hello
	if err := ws.ReadJSON(&hello); err != nil {
		t.Fatalf("ReadJSON hello: %v", err)
	}
	if n := s.sessions.Load(); n != 1 {
		t.Fatalf("Expected 1 open session, got %d", n)
	}

	// Read nothing more and never answer the close.
	deadline := time.Now().Add(closeGrace + 5*time.Second)
	for s.sessions.Load() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected the session to end, %d still open", s.sessions.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStream_Binary(t *testing.T) {
	s := newTestServer(t)
	addr := serve(t, s)

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws/stream/run?fps=60&format=binary", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer ws.Close()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Hello
	if err := ws.ReadJSON(&hello); err != nil {
		t.Fatalf("ReadJSON hello: %v", err)
	}
	if hello.Format != "binary" {
		t.Errorf("Expected binary format, got %q", hello.Format)
	}

	mt, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if mt != websocket.BinaryMessage {
		t.Fatalf("Expected binary message, got type %d", mt)
	}
	var f player.Frame
	if err := f.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if f.Action != "run" || f.Index != 0 {
		t.Errorf("Expected run frame 0, got %s frame %d", f.Action, f.Index)
	}
}

func TestWebSocket_BadFormat(t *testing.T) {
	s := newTestServer(t)
	addr := serve(t, s)

	for _, path := range []string{"/ws/live?format=xml", "/ws/stream/walk?format=xml"} {
		_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+path, nil)
		if err == nil {
			t.Errorf("%s: expected dial to fail", path)
			continue
		}
		if resp == nil || resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %v", path, resp)
		}
	}
}

func TestStream_UnknownAction(t *testing.T) {
	s := newTestServer(t)
	addr := serve(t, s)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws/stream/moonwalk", nil)
	if err == nil {
		t.Fatal("Expected dial to fail for an unknown action")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %v", resp)
	}
}

func TestLive(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub().Run(ctx)
	addr := serve(t, s)

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws/live", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer ws.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.Hub().ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for live client")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var started map[string]any
	getJSON(t, s, "POST", "/api/live/wave", strings.NewReader(`{"fps": 50}`), http.StatusAccepted, &started)
	if started["action"] != "wave" {
		t.Errorf("Expected wave, got %v", started["action"])
	}

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f player.Frame
	if err := ws.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if f.Action != "wave" {
		t.Errorf("Expected wave frame, got %s", f.Action)
	}

	var status map[string]any
	getJSON(t, s, "GET", "/api/live", nil, http.StatusOK, &status)
	if status["action"] != "wave" || status["state"] != "playing" {
		t.Errorf("Expected wave playing, got %v", status)
	}

	getJSON(t, s, "POST", "/api/live/moonwalk", nil, http.StatusNotFound, nil)
	getJSON(t, s, "DELETE", "/api/live", nil, http.StatusOK, nil)
	getJSON(t, s, "GET", "/api/live", nil, http.StatusOK, &status)
	if status["state"] != "stopped" {
		t.Errorf("Expected stopped, got %v", status["state"])
	}
}

func TestPlayLive_Concurrent(t *testing.T) {
	s := newTestServer(t)
	opts := player.DefaultOptions()
	opts.Loop = true

	for trial := 0; trial < 20; trial++ {
		names := []string{"walk", "wave", "run", "bow"}
		errs := make(chan error, len(names))
		var wg sync.WaitGroup
		for _, name := range names {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				errs <- s.PlayLive(name, opts)
			}(name)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("Expected every PlayLive to replace the last, got %v", err)
			}
		}

		s.StopLive()
		time.Sleep(20 * time.Millisecond)
		if state := s.live.State(); state != player.StateStopped {
			t.Fatalf("Trial %d: expected live player stopped after StopLive, got %v", trial, state)
		}
	}
}

func TestLivePlay_ConcurrentRequests(t *testing.T) {
	s := newTestServer(t)

	var wg sync.WaitGroup
	for _, name := range []string{"walk", "wave", "run"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			req := httptest.NewRequest("POST", "/api/live/"+name, nil)
			resp, err := s.App().Test(req, 5000)
			if err != nil {
				t.Errorf("POST %s: %v", name, err)
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusAccepted {
				t.Errorf("POST %s: expected 202, got %d", name, resp.StatusCode)
			}
		}(name)
	}
	wg.Wait()

	getJSON(t, s, "DELETE", "/api/live", nil, http.StatusOK, nil)
	var status map[string]any
	getJSON(t, s, "GET", "/api/live", nil, http.StatusOK, &status)
	if status["state"] != "stopped" {
		t.Errorf("Expected stopped, got %v", status["state"])
	}
}
