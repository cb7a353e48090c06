package streamclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-pointlight/internal/log"
	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/web"
)

// ErrClosed is returned for commands on a closed stream.
var ErrClosed = errors.New("streamclient: stream closed")

// frameBuffer is how many undelivered frames a stream holds before it
// starts dropping the oldest.
const frameBuffer = 32

// helloTimeout bounds the wait for the session hello.
const helloTimeout = 10 * time.Second

// Stream is an open websocket frame stream.
type Stream struct {
	ws    *websocket.Conn
	hello web.Hello

	wsMu   sync.Mutex
	frames chan player.Frame

	mu      sync.RWMutex
	latest  player.Frame
	hasLast bool
	err     error
	closed  bool
	dropped int

	done chan struct{}
}

func newStream(ws *websocket.Conn, hello web.Hello) *Stream {
	s := &Stream{
		ws:     ws,
		hello:  hello,
		frames: make(chan player.Frame, frameBuffer),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func readHello(ws *websocket.Conn) (web.Hello, error) {
	ws.SetReadDeadline(time.Now().Add(helloTimeout))
	_, msg, err := ws.ReadMessage()
	ws.SetReadDeadline(time.Time{})
	if err != nil {
		return web.Hello{}, err
	}

	var hello struct {
		web.Hello
		Error string `json:"error"`
	}
	if err := json.Unmarshal(msg, &hello); err != nil {
		return web.Hello{}, err
	}
	if hello.Error != "" {
		return web.Hello{}, errors.New(hello.Error)
	}
	if hello.Session == "" {
		return web.Hello{}, fmt.Errorf("expected hello, got %s", msg)
	}
	return hello.Hello, nil
}

// Hello returns the session hello. It is zero for live streams.
func (s *Stream) Hello() web.Hello {
	return s.hello
}

// Frames delivers frames in order. The channel is closed when the
// stream ends; Err then reports why.
func (s *Stream) Frames() <-chan player.Frame {
	return s.frames
}

// Done is closed when the stream ends.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Latest returns the most recent frame received.
func (s *Stream) Latest() (player.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasLast
}

// Dropped returns how many frames were discarded because the consumer
// fell behind.
func (s *Stream) Dropped() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

// Err returns the error that ended the stream. A normal close from
// either side is not an error.
func (s *Stream) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Stream) readLoop() {
	defer close(s.done)
	defer close(s.frames)

	for {
		mt, msg, err := s.ws.ReadMessage()
		if err != nil {
			s.finish(err)
			return
		}

		var f player.Frame
		if mt == websocket.BinaryMessage {
			err = f.UnmarshalBinary(msg)
		} else {
			err = json.Unmarshal(msg, &f)
		}
		if err != nil {
			log.Debug("ignoring malformed frame", "error", err)
			continue
		}

		s.mu.Lock()
		s.latest, s.hasLast = f, true
		s.mu.Unlock()

		select {
		case s.frames <- f:
		default:
			// Drop the oldest frame to keep up.
			select {
			case <-s.frames:
			default:
			}
			s.frames <- f
			s.mu.Lock()
			s.dropped++
			s.mu.Unlock()
		}
	}
}

func (s *Stream) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return
	}
	s.err = err
}

// Pause pauses server playback.
func (s *Stream) Pause() error { return s.send("pause") }

// Resume resumes server playback.
func (s *Stream) Resume() error { return s.send("resume") }

// Stop ends server playback; the server then closes the stream.
func (s *Stream) Stop() error { return s.send("stop") }

func (s *Stream) send(cmd string) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	return s.ws.WriteJSON(web.Command{Cmd: cmd})
}

// Close closes the stream and waits for the read loop to exit.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.wsMu.Lock()
	s.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.wsMu.Unlock()

	err := s.ws.Close()
	<-s.done
	return err
}
