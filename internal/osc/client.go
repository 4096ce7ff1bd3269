package osc

import (
	"context"
	"fmt"
	"log"

	gosc "github.com/hypebeast/go-osc/osc"
)

// Transport delivers commands to the performance engine.
// Delivery is fire-and-forget: no acknowledgement is awaited.
type Transport interface {
	Send(ctx context.Context, cmd Command) error
}

// Client sends commands as OSC messages over UDP
type Client struct {
	client *gosc.Client
	host   string
	port   int
}

// NewClient creates a UDP client for the engine at host:port
func NewClient(host string, port int) *Client {
	log.Printf("🎛️  OSC client targeting %s:%d", host, port)
	return &Client{
		client: gosc.NewClient(host, port),
		host:   host,
		port:   port,
	}
}

// Send encodes and transmits one command
func (c *Client) Send(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := ToMessage(cmd)
	if err != nil {
		return err
	}

	if err := c.client.Send(msg); err != nil {
		return fmt.Errorf("send %s to %s:%d: %w", cmd.Address, c.host, c.port, err)
	}
	return nil
}

// ToMessage converts a command into an OSC message.
// Integers are sent as int32 and floats as float32, which is what AbletonOSC expects.
func ToMessage(cmd Command) (*gosc.Message, error) {
	msg := gosc.NewMessage(cmd.Address)
	for i, arg := range cmd.Args {
		switch v := arg.(type) {
		case int:
			msg.Append(int32(v))
		case int32:
			msg.Append(v)
		case float64:
			msg.Append(float32(v))
		case float32:
			msg.Append(v)
		case string:
			msg.Append(v)
		default:
			return nil, fmt.Errorf("%s: unsupported argument %d of type %T", cmd.Address, i, arg)
		}
	}
	return msg, nil
}
