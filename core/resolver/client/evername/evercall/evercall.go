// Package evercall provides the contract-call collaborator used by the
// evername client: read-only calls against current chain state, reached over
// a JSON-RPC run-local gateway. The gateway evaluates the requested contract
// method and returns its named output fields; record cells travel as opaque
// binary payloads and are decoded here against an expected shape.
package evercall

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"unicode/utf8"
)

// Cell is an opaque binary value returned by a contract call.
type Cell []byte

// Output holds the named output fields of a local contract call.
type Output interface {
	// Address returns the given field decoded as a contract address.
	Address(field string) (string, error)
	// String returns the given field decoded as a string.
	String(field string) (string, error)
	// CellMap returns the given field decoded as a map from numeric key to
	// opaque cell.
	CellMap(field string) (map[uint32]Cell, error)
}

// Caller executes a read-only contract call against current chain state and
// returns its typed output fields.
type Caller interface {
	RunLocal(address, method string, args map[string]interface{}) (Output, error)
	Close() error
}

// Codec decodes an opaque cell against an expected parameter shape.
type Codec interface {
	DecodeString(Cell) (string, error)
	DecodeAddress(Cell) (string, error)
}

var (
	// ErrFieldMissing denotes that a call output carries no field with the
	// requested name.
	ErrFieldMissing = errors.New("output field missing")
	// ErrAccountNotFound denotes that no account exists at the called
	// address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrMalformedData denotes a value that did not decode to the expected
	// shape.
	ErrMalformedData = errors.New("malformed data")
)

// accountNotFoundCode is the gateway error code for a missing account state.
const accountNotFoundCode = -32001

// Client is a JSON-RPC run-local gateway client. It implements both the
// Caller and the Codec collaborator contracts.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Dial creates a new gateway client for the given endpoint URL.
func Dial(endpoint string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}, nil
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type runLocalParams struct {
	Address string                 `json:"address"`
	Method  string                 `json:"functionName"`
	Input   map[string]interface{} `json:"input,omitempty"`
}

type runLocalResult struct {
	Output map[string]json.RawMessage `json:"output"`
}

// RunLocal implements the Caller interface.
func (c *Client) RunLocal(address, method string, args map[string]interface{}) (Output, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "runLocal",
		Params: runLocalParams{
			Address: address,
			Method:  method,
			Input:   args,
		},
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("call %s on %s: unexpected status %s", method, address, resp.Status)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("call %s on %s: decode response: %w", method, address, err)
	}
	if rpcResp.Error != nil {
		if rpcResp.Error.Code == accountNotFoundCode {
			return nil, fmt.Errorf("call %s on %s: %w", method, address, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("call %s on %s: rpc error %d: %s", method, address, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	var result runLocalResult
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return nil, fmt.Errorf("call %s on %s: decode output: %w", method, address, err)
	}
	return output(result.Output), nil
}

// Close implements the Caller interface.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// output is the field set returned by the gateway for one call.
type output map[string]json.RawMessage

// Address implements the Output interface.
func (o output) Address(field string) (string, error) {
	raw, ok := o[field]
	if !ok {
		return "", fmt.Errorf("field %q: %w", field, ErrFieldMissing)
	}
	var addr string
	if err := json.Unmarshal(raw, &addr); err != nil {
		return "", fmt.Errorf("field %q: %v: %w", field, err, ErrMalformedData)
	}
	return addr, nil
}

// String implements the Output interface.
func (o output) String(field string) (string, error) {
	raw, ok := o[field]
	if !ok {
		return "", fmt.Errorf("field %q: %w", field, ErrFieldMissing)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("field %q: %v: %w", field, err, ErrMalformedData)
	}
	return s, nil
}

// CellMap implements the Output interface. Cells arrive base64-encoded,
// keyed by the decimal form of their numeric map key.
func (o output) CellMap(field string) (map[uint32]Cell, error) {
	raw, ok := o[field]
	if !ok {
		return nil, fmt.Errorf("field %q: %w", field, ErrFieldMissing)
	}
	var encoded map[string]string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("field %q: %v: %w", field, err, ErrMalformedData)
	}
	cells := make(map[uint32]Cell, len(encoded))
	for key, value := range encoded {
		k, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("field %q: key %q: %w", field, key, ErrMalformedData)
		}
		b, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: key %q: %v: %w", field, key, err, ErrMalformedData)
		}
		cells[uint32(k)] = b
	}
	return cells, nil
}

// DecodeString implements the Codec interface. String cells carry the raw
// UTF-8 payload of the stored value.
func (c *Client) DecodeString(cell Cell) (string, error) {
	if !utf8.Valid(cell) {
		return "", fmt.Errorf("string cell: %w", ErrMalformedData)
	}
	return string(cell), nil
}

// addressCellSize is one workchain byte followed by a 32 byte account id.
const addressCellSize = 33

// DecodeAddress implements the Codec interface.
func (c *Client) DecodeAddress(cell Cell) (string, error) {
	if len(cell) != addressCellSize {
		return "", fmt.Errorf("address cell of %d bytes: %w", len(cell), ErrMalformedData)
	}
	return fmt.Sprintf("%d:%x", int8(cell[0]), cell[1:]), nil
}
