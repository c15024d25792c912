package ipc

import (
	"context"
	"encoding/json"
	"net"

	"wayfocus/pkg/global"
)

// SendCommand performs one request/response round trip against the applet
// daemon's control socket. The context deadline bounds the whole round
// trip; a daemon that accepts but never replies fails with an i/o timeout
// instead of hanging the caller.
func SendCommand(ctx context.Context, req Request) (Response, error) {
	log := global.GetLogger()
	socketPath := SocketPath()

	log.Debug("Attempting to connect to socket server", "path", socketPath)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		log.Debug("Failed to connect to socket server", "error", err.Error())
		return Response{}, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	encoder := json.NewEncoder(conn)
	if err := encoder.Encode(req); err != nil {
		log.Error("Failed to encode request", err)
		return Response{}, err
	}

	log.Debug("Request sent successfully", "command", req.Command)

	var resp Response
	decoder := json.NewDecoder(conn)
	if err := decoder.Decode(&resp); err != nil {
		log.Error("Failed to decode response", err)
		return Response{}, err
	}

	log.Debug("Response received", "status", resp.Status, "message", resp.Message)
	return resp, nil
}
