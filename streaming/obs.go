package streaming

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/junggyeol4444/aiu/internal/retryutil"
)

// ErrNotConnected reports a control call without an open OBS socket.
var ErrNotConnected = errors.New("obs: not connected")

// obs-websocket v5 opcodes used by the controller.
const (
	opHello           = 0
	opIdentify        = 1
	opIdentified      = 2
	opRequest         = 6
	opRequestResponse = 7
)

const (
	rpcVersion        = 1
	obsConnectTimeout = 10 * time.Second
	obsCloseTimeout   = 2 * time.Second
)

type serverEnvelope struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type clientEnvelope struct {
	Op int `json:"op"`
	D  any `json:"d"`
}

type helloData struct {
	OBSWebSocketVersion string `json:"obsWebSocketVersion"`
	RPCVersion          int    `json:"rpcVersion"`
	Authentication      *struct {
		Challenge string `json:"challenge"`
		Salt      string `json:"salt"`
	} `json:"authentication"`
}

type identifyPayload struct {
	RPCVersion     int    `json:"rpcVersion"`
	Authentication string `json:"authentication,omitempty"`
}

type requestPayload struct {
	RequestType string         `json:"requestType"`
	RequestID   string         `json:"requestId"`
	RequestData map[string]any `json:"requestData,omitempty"`
}

type requestResponse struct {
	RequestType   string `json:"requestType"`
	RequestID     string `json:"requestId"`
	RequestStatus struct {
		Result  bool   `json:"result"`
		Code    int    `json:"code"`
		Comment string `json:"comment"`
	} `json:"requestStatus"`
	ResponseData json.RawMessage `json:"responseData"`
}

// OBS controls OBS Studio over its v5 websocket API. One goroutine reads
// the socket and routes responses to waiting requests by requestId; a
// dropped socket fails in-flight requests and schedules a reconnect.
type OBS struct {
	cfg    Config
	logger *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan requestResponse
	closed  bool
}

// NewOBS returns a controller for the OBS instance at cfg.URL. Nothing is
// dialed until Connect. A nil logger falls back to the process default.
func NewOBS(cfg Config, logger *slog.Logger) *OBS {
	if logger == nil {
		logger = slog.Default()
	}
	return &OBS{
		cfg:     cfg.withDefaults(),
		logger:  logger,
		pending: make(map[string]chan requestResponse),
	}
}

// Connect dials OBS and completes the Hello/Identify/Identified handshake.
// Already connected is a no-op.
func (o *OBS) Connect(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return errors.New("obs: controller closed")
	}
	if o.conn != nil {
		o.mu.Unlock()
		return nil
	}
	o.mu.Unlock()

	dialer := *websocket.DefaultDialer
	dialCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, obsConnectTimeout)
		defer cancel()
	}

	conn, resp, err := dialer.DialContext(dialCtx, o.cfg.URL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("obs: dial %s (status %d): %w", o.cfg.URL, resp.StatusCode, err)
		}
		return fmt.Errorf("obs: dial %s: %w", o.cfg.URL, err)
	}

	if err := o.identify(conn); err != nil {
		_ = conn.Close()
		return err
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		_ = conn.Close()
		return errors.New("obs: controller closed")
	}
	o.conn = conn
	o.mu.Unlock()

	o.logger.Info("obs_connected", "url", o.cfg.URL)
	go o.readLoop(conn)
	return nil
}

func (o *OBS) identify(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(obsConnectTimeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	var env serverEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("obs: read hello: %w", err)
	}
	if env.Op != opHello {
		return fmt.Errorf("obs: expected hello, got op %d", env.Op)
	}
	var hello helloData
	if err := json.Unmarshal(env.D, &hello); err != nil {
		return fmt.Errorf("obs: decode hello: %w", err)
	}

	ident := identifyPayload{RPCVersion: rpcVersion}
	if hello.Authentication != nil {
		if o.cfg.Password == "" {
			return errors.New("obs: server requires a password")
		}
		ident.Authentication = authResponse(o.cfg.Password, hello.Authentication.Salt, hello.Authentication.Challenge)
	}
	if err := conn.WriteJSON(clientEnvelope{Op: opIdentify, D: ident}); err != nil {
		return fmt.Errorf("obs: send identify: %w", err)
	}

	// A wrong password surfaces here: the server closes the socket with
	// 4009 instead of sending Identified.
	if err := conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("obs: read identified: %w", err)
	}
	if env.Op != opIdentified {
		return fmt.Errorf("obs: expected identified, got op %d", env.Op)
	}
	return nil
}

// authResponse derives the Identify authentication string:
// base64(sha256(base64(sha256(password+salt)) + challenge)).
func authResponse(password, salt, challenge string) string {
	secret := base64.StdEncoding.EncodeToString(sha256sum(password + salt))
	return base64.StdEncoding.EncodeToString(sha256sum(secret + challenge))
}

func sha256sum(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

func (o *OBS) readLoop(conn *websocket.Conn) {
	for {
		var env serverEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			o.dropConnection(conn, err)
			return
		}
		if env.Op != opRequestResponse {
			continue
		}
		var resp requestResponse
		if err := json.Unmarshal(env.D, &resp); err != nil {
			o.logger.Warn("obs_bad_response", "error", err.Error())
			continue
		}

		o.mu.Lock()
		ch := o.pending[resp.RequestID]
		delete(o.pending, resp.RequestID)
		o.mu.Unlock()
		if ch != nil {
			ch <- resp
		}
	}
}

// dropConnection clears the failed socket, fails every in-flight request,
// and schedules a reconnect unless the controller is closing.
func (o *OBS) dropConnection(conn *websocket.Conn, cause error) {
	o.mu.Lock()
	if o.conn != conn {
		o.mu.Unlock()
		return
	}
	o.conn = nil
	for id, ch := range o.pending {
		delete(o.pending, id)
		close(ch)
	}
	closed := o.closed
	o.mu.Unlock()
	_ = conn.Close()

	if closed {
		return
	}
	o.logger.Warn("obs_connection_lost", "error", cause.Error())
	retryutil.AsyncRetry(o.logger, "obs_reconnect", 0, 0, o.Connect)
}

func (o *OBS) request(ctx context.Context, requestType string, data map[string]any) (json.RawMessage, error) {
	o.mu.Lock()
	conn := o.conn
	if conn == nil {
		o.mu.Unlock()
		return nil, ErrNotConnected
	}
	id := newRequestID()
	ch := make(chan requestResponse, 1)
	o.pending[id] = ch
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.pending, id)
		o.mu.Unlock()
	}()

	err := o.writeJSON(conn, clientEnvelope{Op: opRequest, D: requestPayload{
		RequestType: requestType,
		RequestID:   id,
		RequestData: data,
	}})
	if err != nil {
		return nil, fmt.Errorf("obs: send %s: %w", requestType, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return nil, ErrNotConnected
		}
		if !resp.RequestStatus.Result {
			return nil, fmt.Errorf("obs: %s refused (code %d): %s",
				requestType, resp.RequestStatus.Code, resp.RequestStatus.Comment)
		}
		return resp.ResponseData, nil
	}
}

func (o *OBS) writeJSON(conn *websocket.Conn, v any) error {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()
	return conn.WriteJSON(v)
}

func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// StartStream begins stream output.
func (o *OBS) StartStream(ctx context.Context) error {
	if _, err := o.request(ctx, "StartStream", nil); err != nil {
		return err
	}
	o.logger.Info("stream_started")
	return nil
}

// StopStream ends stream output.
func (o *OBS) StopStream(ctx context.Context) error {
	if _, err := o.request(ctx, "StopStream", nil); err != nil {
		return err
	}
	o.logger.Info("stream_stopped")
	return nil
}

// LiveScene switches program output to the configured live scene.
func (o *OBS) LiveScene(ctx context.Context) error {
	return o.setScene(ctx, o.cfg.LiveScene)
}

// EndingScene switches program output to the configured ending scene.
func (o *OBS) EndingScene(ctx context.Context) error {
	return o.setScene(ctx, o.cfg.EndingScene)
}

func (o *OBS) setScene(ctx context.Context, name string) error {
	if _, err := o.request(ctx, "SetCurrentProgramScene", map[string]any{"sceneName": name}); err != nil {
		return err
	}
	o.logger.Info("scene_switched", "scene", name)
	return nil
}

// Status queries stream output state. Any failure reports a disconnected
// status rather than an error.
func (o *OBS) Status(ctx context.Context) Status {
	raw, err := o.request(ctx, "GetStreamStatus", nil)
	if err != nil {
		return Status{}
	}
	var body struct {
		OutputActive   bool    `json:"outputActive"`
		OutputDuration float64 `json:"outputDuration"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return Status{Connected: true}
	}
	return Status{
		Connected: true,
		Streaming: body.OutputActive,
		Duration:  time.Duration(body.OutputDuration) * time.Millisecond,
	}
}

// Close tears down the control socket. In-flight requests fail with
// ErrNotConnected.
func (o *OBS) Close() error {
	o.mu.Lock()
	o.closed = true
	conn := o.conn
	o.conn = nil
	for id, ch := range o.pending {
		delete(o.pending, id)
		close(ch)
	}
	o.mu.Unlock()

	if conn == nil {
		return nil
	}
	o.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(obsCloseTimeout))
	o.writeMu.Unlock()
	return conn.Close()
}
