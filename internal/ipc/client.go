package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/imember/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SaveNow asks the daemon to take a snapshot and returns the resulting status.
func (c *Client) SaveNow() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandSaveNow, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Restore asks the daemon to replay the arrangement for the current display count.
func (c *Client) Restore() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandRestore, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Toggle flips snapshotting on or off and returns the new state.
func (c *Client) Toggle() (bool, error) {
	var data ToggleData
	if err := c.call(CommandToggle, nil, &data); err != nil {
		return false, err
	}
	return data.Enabled, nil
}

// ListArrangements retrieves every saved arrangement.
func (c *Client) ListArrangements() (*ArrangementsData, error) {
	var data ArrangementsData
	if err := c.call(CommandListArrangements, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetLogs retrieves up to lines recent activity lines, oldest first.
func (c *Client) GetLogs(lines int) ([]string, error) {
	var data LogsData
	if err := c.call(CommandGetLogs, GetLogsPayload{Lines: lines}, &data); err != nil {
		return nil, err
	}
	return data.Lines, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
