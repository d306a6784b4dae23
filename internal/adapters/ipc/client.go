package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"

	"github.com/bnema/obsidian-launcher/internal/application"
	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrClientClosed     = errors.New("ipc connection closed")
	ErrRequestCancelled = errors.New("request cancelled")
)

// Client is a presentation-side connection to the host.
type Client struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uuid.UUID]chan ResponseObject
	readErr error

	updates chan application.SessionView
	done    chan struct{}
}

// Dial connects to the host listening on addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: APIPath}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial host %s: %w", addr, err)
	}

	c := &Client{
		conn:    conn,
		pending: map[uuid.UUID]chan ResponseObject{},
		updates: make(chan application.SessionView, updateBuffer),
		done:    make(chan struct{}),
	}
	go c.readLoop()

	return c, nil
}

// Updates delivers session.updated notifications. A reader that falls
// behind loses the oldest pending updates, never the latest. It is closed
// when the connection ends.
func (c *Client) Updates() <-chan application.SessionView {
	return c.updates
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close websocket: %w", err)
	}
	<-c.done
	return nil
}

// Call sends a request and decodes its result into result, which may be
// nil.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	id := uuid.New()
	req := RequestObject{JSONRPC: jsonRPC, ID: &id, Method: method}
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode %s params: %w", method, err)
		}
		req.Params = encoded
	}

	respCh := make(chan ResponseObject, 1)
	c.mu.Lock()
	if c.readErr != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrClientClosed, c.readErr)
	}
	c.pending[id] = respCh
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.write(req); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case resp := <-respCh:
		if resp.Error != nil {
			return remoteErrorFrom(*resp.Error)
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrRequestCancelled, ctx.Err())
	case <-c.done:
		return ErrClientClosed
	}
}

// Notify sends a request without an id. The host sends no response.
func (c *Client) Notify(method string, params any) error {
	req := RequestObject{JSONRPC: jsonRPC, Method: method}
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode %s params: %w", method, err)
		}
		req.Params = encoded
	}

	if err := c.write(req); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}
	return nil
}

func (c *Client) Session(ctx context.Context) (application.SessionView, error) {
	var view application.SessionView
	err := c.Call(ctx, MethodSessionGet, nil, &view)
	return view, err
}

// Authenticate blocks until the host finishes the sign-in.
func (c *Client) Authenticate(ctx context.Context) (domain.CredentialView, error) {
	var credential domain.CredentialView
	err := c.Call(ctx, MethodSessionAuthenticate, nil, &credential)
	return credential, err
}

// Launch asks the host to launch and waits for it to accept or reject the
// options. Progress arrives on Updates.
func (c *Client) Launch(ctx context.Context, cmd application.LaunchCommand) error {
	return c.Call(ctx, MethodSessionLaunch, cmd, nil)
}

// LaunchAndForget sends the launch as a notification. Rejections show up
// only as lastError on the next update.
func (c *Client) LaunchAndForget(cmd application.LaunchCommand) error {
	return c.Notify(MethodSessionLaunch, cmd)
}

func (c *Client) Versions(ctx context.Context) ([]domain.GameVersion, error) {
	var versions []domain.GameVersion
	err := c.Call(ctx, MethodVersionsList, nil, &versions)
	return versions, err
}

func (c *Client) Memory(ctx context.Context) (application.MemoryReport, error) {
	var report application.MemoryReport
	err := c.Call(ctx, MethodSystemMemory, nil, &report)
	return report, err
}

func (c *Client) Settings(ctx context.Context) (domain.Settings, error) {
	var settings domain.Settings
	err := c.Call(ctx, MethodSettingsGet, nil, &settings)
	return settings, err
}

func (c *Client) SaveSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	var saved domain.Settings
	err := c.Call(ctx, MethodSettingsSave, settings, &saved)
	return saved, err
}

func (c *Client) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.updates)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("ipc read loop ended")
			}
			return
		}

		if string(message) == pongMessage {
			continue
		}

		var in envelope
		if err := json.Unmarshal(message, &in); err != nil || in.JSONRPC != jsonRPC {
			log.Warn().Msg("ignoring malformed host message")
			continue
		}

		if in.Method != "" && in.ID == nil {
			c.handleNotification(in)
			continue
		}
		if in.ID == nil {
			continue
		}

		c.mu.Lock()
		respCh, ok := c.pending[*in.ID]
		c.mu.Unlock()
		if !ok {
			if in.Error != nil {
				log.Warn().Int("code", in.Error.Code).Str("message", in.Error.Message).Msg("host error without a pending request")
			}
			continue
		}

		respCh <- ResponseObject{JSONRPC: in.JSONRPC, ID: *in.ID, Result: in.Result, Error: in.Error}
	}
}

func (c *Client) handleNotification(in envelope) {
	if in.Method != NotificationSessionUpdated {
		log.Debug().Str("method", in.Method).Msg("ignoring host notification")
		return
	}

	var view application.SessionView
	if err := json.Unmarshal(in.Params, &view); err != nil {
		log.Warn().Err(err).Msg("decoding session update")
		return
	}

	// readLoop is the only sender, so evicting the oldest update always
	// makes room for the latest.
	for {
		select {
		case c.updates <- view:
			return
		default:
		}

		select {
		case <-c.updates:
			log.Debug().Msg("session update reader is behind, dropped its oldest update")
		default:
		}
	}
}
