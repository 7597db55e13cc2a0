package rpc

import (
	"encoding/json"
	"fmt"
)

// RPCError mirrors a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JobObject is the wire shape of a Job delivered via the "job" method, or
// embedded in a login result.
type JobObject struct {
	ID     string `json:"id"`
	Blob   string `json:"blob"`
	Seed   string `json:"seed"`
	Target uint32 `json:"target"`
}

// LoginResult is the payload of a successful login response.
type LoginResult struct {
	ID     string    `json:"id"`
	Job    JobObject `json:"job"`
	Status string    `json:"status"`
}

// StatusResult is the payload of a submit/keepalived response.
type StatusResult struct {
	Status string `json:"status"`
}

// Envelope is the generic shape of every inbound frame: a notification
// (Method set, no ID), a response (Result/Error set, ID echoed), or both
// absent fields tolerated so a single Unmarshal can classify the line.
type Envelope struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	ID     json.RawMessage `json:"id"`
}

// IsNotification reports whether the envelope carries a server->miner
// method call rather than a response to one of our requests.
func (e Envelope) IsNotification() bool {
	return e.Method != ""
}

// ParseEnvelope decodes a single line into an Envelope.
func ParseEnvelope(line []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(line, &e); err != nil {
		return Envelope{}, fmt.Errorf("rpc: malformed line: %w", err)
	}
	return e, nil
}

// DecodeLoginResult decodes a login response's result field.
func (e Envelope) DecodeLoginResult() (LoginResult, error) {
	var lr LoginResult
	if e.Result == nil {
		return lr, fmt.Errorf("rpc: login response has no result")
	}
	if err := json.Unmarshal(e.Result, &lr); err != nil {
		return lr, fmt.Errorf("rpc: malformed login result: %w", err)
	}
	return lr, nil
}

// DecodeStatusResult decodes a submit/keepalived response's result field,
// tolerating either an object {"status": "..."} or a bare boolean.
func (e Envelope) DecodeStatusResult() (StatusResult, bool, error) {
	if e.Result == nil {
		return StatusResult{}, false, nil
	}
	var asBool bool
	if err := json.Unmarshal(e.Result, &asBool); err == nil {
		if asBool {
			return StatusResult{Status: "OK"}, true, nil
		}
		return StatusResult{Status: "REJECTED"}, true, nil
	}
	var sr StatusResult
	if err := json.Unmarshal(e.Result, &sr); err != nil {
		return StatusResult{}, false, fmt.Errorf("rpc: malformed status result: %w", err)
	}
	return sr, true, nil
}

// DecodeMiningNotify decodes mining.notify params, which arrive either as
// an array [job_id, blob_hex, seed_hash_hex, ...] or as an object
// {job_id, blob_hex, seed_hash_hex}.
func (e Envelope) DecodeMiningNotify() (jobID, blobHex, seedHex string, err error) {
	var arr []json.RawMessage
	if unErr := json.Unmarshal(e.Params, &arr); unErr == nil && len(arr) >= 3 {
		if unErr := json.Unmarshal(arr[0], &jobID); unErr != nil {
			return "", "", "", fmt.Errorf("rpc: mining.notify job_id not a string: %w", unErr)
		}
		if unErr := json.Unmarshal(arr[1], &blobHex); unErr != nil {
			return "", "", "", fmt.Errorf("rpc: mining.notify blob_hex not a string: %w", unErr)
		}
		if unErr := json.Unmarshal(arr[2], &seedHex); unErr != nil {
			return "", "", "", fmt.Errorf("rpc: mining.notify seed_hash_hex not a string: %w", unErr)
		}
		return jobID, blobHex, seedHex, nil
	}

	var obj struct {
		JobID       string `json:"job_id"`
		BlobHex     string `json:"blob_hex"`
		SeedHashHex string `json:"seed_hash_hex"`
	}
	if unErr := json.Unmarshal(e.Params, &obj); unErr != nil {
		return "", "", "", fmt.Errorf("rpc: mining.notify params neither array nor object: %w", unErr)
	}
	return obj.JobID, obj.BlobHex, obj.SeedHashHex, nil
}

// DecodeJobNotification decodes params for the "job" method notification.
func (e Envelope) DecodeJobNotification() (JobObject, error) {
	var jo JobObject
	if err := json.Unmarshal(e.Params, &jo); err != nil {
		return jo, fmt.Errorf("rpc: malformed job notification: %w", err)
	}
	return jo, nil
}
