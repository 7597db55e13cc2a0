package rpc

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoginMarshalsExpectedShape(t *testing.T) {
	line, err := Marshal(NewLogin("wallet", "x"))
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), line[len(line)-1])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(line[:len(line)-1], &decoded))
	assert.Equal(t, "login", decoded["method"])
	params := decoded["params"].(map[string]interface{})
	assert.Equal(t, "wallet", params["login"])
	assert.Equal(t, "x", params["pass"])
}

func TestNewSubmitEncodesHexFields(t *testing.T) {
	req := NewSubmit("login-1", "job-1", "deadbeef", strings.Repeat("00", 32))
	assert.Equal(t, "submit", req.Method)
	params := req.Params.(SubmitParams)
	assert.Equal(t, "login-1", params.ID)
	assert.Equal(t, "job-1", params.JobID)
	assert.Equal(t, "deadbeef", params.Nonce)
}

func TestParseEnvelopeClassifiesNotificationVsResponse(t *testing.T) {
	notif, err := ParseEnvelope([]byte(`{"method":"job","params":{"id":"j1"}}` + "\n"))
	require.NoError(t, err)
	assert.True(t, notif.IsNotification())

	resp, err := ParseEnvelope([]byte(`{"id":1,"result":{"status":"OK"}}` + "\n"))
	require.NoError(t, err)
	assert.False(t, resp.IsNotification())
}

func TestDecodeLoginResultRoundTrips(t *testing.T) {
	line := []byte(`{"id":1,"result":{"id":"login-1","status":"OK","job":{"id":"j1","blob":"aa","seed":"bb","target":16}}}`)
	env, err := ParseEnvelope(line)
	require.NoError(t, err)

	lr, err := env.DecodeLoginResult()
	require.NoError(t, err)
	assert.Equal(t, "login-1", lr.ID)
	assert.Equal(t, "j1", lr.Job.ID)
	assert.Equal(t, uint32(16), lr.Job.Target)
}

func TestDecodeStatusResultAcceptsBoolOrObject(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"id":1,"result":true}`))
	require.NoError(t, err)
	sr, ok, err := env.DecodeStatusResult()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "OK", sr.Status)

	env, err = ParseEnvelope([]byte(`{"id":1,"result":{"status":"KEEPALIVED"}}`))
	require.NoError(t, err)
	sr, ok, err = env.DecodeStatusResult()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "KEEPALIVED", sr.Status)
}

func TestDecodeMiningNotifyAcceptsArrayOrObject(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"method":"mining.notify","params":["j1","aa","bb"]}`))
	require.NoError(t, err)
	jobID, blob, seed, err := env.DecodeMiningNotify()
	require.NoError(t, err)
	assert.Equal(t, "j1", jobID)
	assert.Equal(t, "aa", blob)
	assert.Equal(t, "bb", seed)

	env, err = ParseEnvelope([]byte(`{"method":"mining.notify","params":{"job_id":"j2","blob_hex":"cc","seed_hash_hex":"dd"}}`))
	require.NoError(t, err)
	jobID, blob, seed, err = env.DecodeMiningNotify()
	require.NoError(t, err)
	assert.Equal(t, "j2", jobID)
	assert.Equal(t, "cc", blob)
	assert.Equal(t, "dd", seed)
}
