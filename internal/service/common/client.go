//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/oshokin/drowsiness-alarm/internal/config"
	pb "github.com/oshokin/drowsiness-alarm/internal/pb/v1"
)

// Client wraps the gRPC AlertRelay client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the relay.
	conn *grpc.ClientConn
	// api is the AlertRelay client interface.
	api pb.AlertRelayClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errCueRequired is returned when a cue request is not provided.
	errCueRequired = errors.New("cue must be provided")
)

// Dial establishes a gRPC connection to the alert relay.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alert relay: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         pb.NewAlertRelayClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ListAlerts retrieves the alert state of every subject known to the relay.
func (c *Client) ListAlerts(ctx context.Context) ([]*pb.AlertState, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.ListAlerts(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	alerts, err := pb.AlertListFromStruct(response)
	if err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}

	return alerts, nil
}

// PushCue reports the cue state of one subject to the relay.
func (c *Client) PushCue(ctx context.Context, cue *pb.CueRequest) (*pb.AlertState, error) {
	if cue == nil {
		return nil, errCueRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.PushCue(callCtx, cue.ToStruct())
	if err != nil {
		return nil, fmt.Errorf("push cue: %w", err)
	}

	state, err := pb.AlertStateFromStruct(response)
	if err != nil {
		return nil, fmt.Errorf("decode alert state: %w", err)
	}

	return state, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
