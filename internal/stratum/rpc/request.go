// Package rpc defines the wire types for the pool's Stratum-family
// line-delimited JSON protocol, grounded on the reference miner's
// stratum::rpc::{request,response} split.
package rpc

import "encoding/json"

// Request is an outbound JSON-RPC-shaped call. Pools in this dialect do
// not require unique ids across a session; each method uses a fixed small
// integer id.
type Request struct {
	Method string      `json:"method"`
	Params interface{} `json:"params"`
	ID     int         `json:"id"`
}

// LoginParams is the payload for the "login" method.
type LoginParams struct {
	Login string `json:"login"`
	Pass  string `json:"pass"`
}

// NewLogin builds a login request.
func NewLogin(user, pass string) Request {
	return Request{Method: "login", Params: LoginParams{Login: user, Pass: pass}, ID: 1}
}

// SubmitParams is the payload for the "submit" method. Nonce and Result
// are lowercase hex strings, even length, 2x their byte length.
type SubmitParams struct {
	ID     string `json:"id"`
	JobID  string `json:"job_id"`
	Nonce  string `json:"nonce"`
	Result string `json:"result"`
}

// NewSubmit builds a submit request.
func NewSubmit(loginID, jobID, nonceHex, resultHex string) Request {
	return Request{
		Method: "submit",
		Params: SubmitParams{ID: loginID, JobID: jobID, Nonce: nonceHex, Result: resultHex},
		ID:     1,
	}
}

// KeepAlivedParams is the payload for the "keepalived" method.
type KeepAlivedParams struct {
	ID string `json:"id"`
}

// NewKeepAlive builds a keepalived request.
func NewKeepAlive(loginID string) Request {
	return Request{Method: "keepalived", Params: KeepAlivedParams{ID: loginID}, ID: 1}
}

// Marshal serializes a request to a single LF-terminated line.
func Marshal(r Request) ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append(body, '\n'), nil
}
