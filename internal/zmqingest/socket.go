package zmqingest

import (
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
)

// zmqSocket adapts a *zmq4.Socket (SUB) to the Socket interface.
type zmqSocket struct {
	sock zmq4.Socket
}

// DialSub opens a SUB socket to endpoint and subscribes to both daemon
// topics, hashblock and rawtx, sharing the single configured endpoint
// (SPEC_FULL.md §4.6 / §6).
func DialSub(ctx context.Context, endpoint string) (Socket, error) {
	sock := zmq4.NewSub(ctx)
	if err := sock.Dial(endpoint); err != nil {
		return nil, fmt.Errorf("zmqingest: dial %s: %w", endpoint, err)
	}
	for _, topic := range []string{"hashblock", "rawtx"} {
		if err := sock.SetOption(zmq4.OptionSubscribe, topic); err != nil {
			_ = sock.Close()
			return nil, fmt.Errorf("zmqingest: subscribe %s: %w", topic, err)
		}
	}
	return &zmqSocket{sock: sock}, nil
}

// Recv implements Socket. A ZMQ pub message for topic t arrives as the
// topic frame and the payload body frame, usually followed by a
// sequence-number frame, which is ignored.
func (z *zmqSocket) Recv(ctx context.Context) (string, []byte, error) {
	msg, err := z.sock.Recv()
	if err != nil {
		return "", nil, err
	}
	if len(msg.Frames) < 2 {
		return "", nil, fmt.Errorf("zmqingest: malformed message with %d frames", len(msg.Frames))
	}
	return string(msg.Frames[0]), msg.Frames[1], nil
}

// Close implements Socket.
func (z *zmqSocket) Close() error { return z.sock.Close() }
