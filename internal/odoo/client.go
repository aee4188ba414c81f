// Package odoo talks to the ERP over its XML-RPC external API. It exposes a
// session-bound Catalog with typed operations on products and tags and keeps
// the generic execute_kw primitive private to this package.
package odoo

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/rpc"
	"strconv"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"
)

var (
	// ErrAuthenticationFailed indicates the ERP rejected the service account.
	ErrAuthenticationFailed = errors.New("odoo: authentication failed")
	// ErrUnexpectedResult indicates a reply of the wrong shape.
	ErrUnexpectedResult = errors.New("odoo: unexpected result")
)

// Config holds the connection settings of the ERP service account.
type Config struct {
	URL       string
	Database  string
	Username  string
	Password  string
	VerifyTLS bool
	Timeout   time.Duration
}

// Recorder observes every remote call.
type Recorder interface {
	ObserveRPC(model, method string, err error, elapsed time.Duration)
}

// Fault is an error raised by the ERP itself.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("odoo fault %d: %s", f.Code, f.Message)
}

// Summary returns the last non-empty line of the fault message, which is
// where the ERP puts the user-facing reason below any traceback.
func (f *Fault) Summary() string {
	lines := strings.Split(strings.TrimSpace(f.Message), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// Client holds the two remote service handles.
type Client struct {
	cfg      Config
	common   *xmlrpc.Client
	object   *xmlrpc.Client
	recorder Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithRecorder attaches a call recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// NewClient opens the authentication and object handles.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("odoo: url is required")
	}
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS}, //nolint:gosec // toggled by VERIFY_SSL
		ResponseHeaderTimeout: cfg.Timeout,
	}
	common, err := xmlrpc.NewClient(base+"/xmlrpc/2/common", transport)
	if err != nil {
		return nil, fmt.Errorf("odoo: common endpoint: %w", err)
	}
	object, err := xmlrpc.NewClient(base+"/xmlrpc/2/object", transport)
	if err != nil {
		_ = common.Close()
		return nil, fmt.Errorf("odoo: object endpoint: %w", err)
	}
	c := &Client{cfg: cfg, common: common, object: object}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases both handles.
func (c *Client) Close() error {
	return errors.Join(c.common.Close(), c.object.Close())
}

// Identity names the service account; used as the session cache key.
func (c *Client) Identity() string {
	return c.cfg.Database + ":" + c.cfg.Username
}

// Authenticate exchanges the configured credentials for a session id.
func (c *Client) Authenticate(ctx context.Context) (int64, error) {
	var reply any
	start := time.Now()
	err := call(ctx, c.common, "authenticate", []any{c.cfg.Database, c.cfg.Username, c.cfg.Password, map[string]any{}}, &reply)
	c.observe("common", "authenticate", err, start)
	if err != nil {
		return 0, fmt.Errorf("odoo: authenticate: %w", err)
	}
	uid, ok := asInt64(reply)
	if !ok || uid <= 0 {
		return 0, ErrAuthenticationFailed
	}
	return uid, nil
}

// Execute invokes method on model through execute_kw.
func (c *Client) Execute(ctx context.Context, uid int64, model, method string, args []any, kwargs map[string]any) (any, error) {
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	if args == nil {
		args = []any{}
	}
	var reply any
	start := time.Now()
	err := call(ctx, c.object, "execute_kw", []any{c.cfg.Database, uid, c.cfg.Password, model, method, args, kwargs}, &reply)
	c.observe(model, method, err, start)
	if err != nil {
		return nil, fmt.Errorf("odoo: %s.%s: %w", model, method, err)
	}
	return reply, nil
}

func (c *Client) observe(model, method string, err error, start time.Time) {
	if c.recorder != nil {
		c.recorder.ObserveRPC(model, method, err, time.Since(start))
	}
}

// call runs one XML-RPC request and gives up waiting when ctx ends.
func call(ctx context.Context, client *xmlrpc.Client, method string, args []any, reply any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pending := client.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case done := <-pending.Done:
		return asFault(done.Error)
	}
}

// asFault turns the "Fault(code): message" server errors produced by the
// xmlrpc codec into *Fault.
func asFault(err error) error {
	var serverErr rpc.ServerError
	if !errors.As(err, &serverErr) {
		return err
	}
	text := string(serverErr)
	if !strings.HasPrefix(text, "Fault(") {
		return err
	}
	end := strings.Index(text, "): ")
	if end < 0 {
		return err
	}
	code, convErr := strconv.Atoi(text[len("Fault("):end])
	if convErr != nil {
		return err
	}
	return &Fault{Code: code, Message: text[end+3:]}
}
