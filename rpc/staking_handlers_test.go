package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cenwadike/voip-staking/core"
	"github.com/cenwadike/voip-staking/core/state"
	"github.com/cenwadike/voip-staking/crypto"
	"github.com/cenwadike/voip-staking/storage"
)

const testToken = "rpc-test-token"

func testAddr(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func bech32Addr(fill byte) string {
	raw := testAddr(fill)
	return crypto.MustNewAddress(crypto.VoipPrefix, raw[:]).String()
}

type testEnv struct {
	server *httptest.Server
	node   *core.Node
	now    *uint64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("VOIP_RPC_TOKEN", testToken)

	db := storage.NewMemDB()
	t.Cleanup(func() { db.Close() })
	node := core.NewNode(db, nil)
	now := uint64(1_700_000_000)
	node.Engine().SetNowFunc(func() uint64 { return now })

	require.NoError(t, node.ApplyGenesis([]core.GenesisAllocation{
		{Address: testAddr(0x01), Amount: big.NewInt(50_000)},
		{Address: state.VaultAddress(), Amount: big.NewInt(1_000_000)},
	}))
	require.NoError(t, node.Initialize(testAddr(0xAD)))

	srv := httptest.NewServer(NewServer(node, nil).Handler())
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, node: node, now: &now}
}

func (env *testEnv) call(t *testing.T, token, method string, params ...interface{}) (*RPCResponse, int) {
	t.Helper()
	rawParams := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		encoded, err := json.Marshal(p)
		require.NoError(t, err)
		rawParams = append(rawParams, encoded)
	}
	payload, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  rawParams,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, env.server.URL, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpcResp RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))
	return &rpcResp, resp.StatusCode
}

func TestMutatingMethodsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, method := range []string{
		"staking_initialize",
		"staking_pause",
		"staking_unpause",
		"staking_stake",
		"staking_claim",
		"staking_withdraw",
	} {
		resp, status := env.call(t, "", method, map[string]string{"caller": bech32Addr(0x01)})
		require.Equal(t, http.StatusUnauthorized, status, method)
		require.NotNil(t, resp.Error, method)
		require.Equal(t, codeUnauthorized, resp.Error.Code, method)
	}

	resp, status := env.call(t, "wrong-token", "staking_pause", map[string]string{"caller": bech32Addr(0xAD)})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, codeUnauthorized, resp.Error.Code)
}

func TestStakeHappyPath(t *testing.T) {
	env := newTestEnv(t)

	resp, status := env.call(t, testToken, "staking_stake", map[string]string{
		"caller": bech32Addr(0x01),
		"amount": "1000",
		"tier":   "100d",
	})
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)

	result := resp.Result.(map[string]interface{})
	require.Equal(t, "1000", result["principal"])
	require.Equal(t, "100d", result["tier"])
	require.Equal(t, bech32Addr(0x01), result["owner"])

	balResp, _ := env.call(t, "", "staking_getBalance", map[string]string{"address": bech32Addr(0x01)})
	require.Nil(t, balResp.Error)
	require.Equal(t, "49000", balResp.Result.(map[string]interface{})["balance"])
}

func TestStakeRejectsBadParams(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name   string
		params map[string]string
	}{
		{"unknown tier", map[string]string{"caller": bech32Addr(0x01), "amount": "1000", "tier": "90d"}},
		{"zero amount", map[string]string{"caller": bech32Addr(0x01), "amount": "0", "tier": "100d"}},
		{"negative amount", map[string]string{"caller": bech32Addr(0x01), "amount": "-5", "tier": "100d"}},
		{"malformed amount", map[string]string{"caller": bech32Addr(0x01), "amount": "ten", "tier": "100d"}},
		{"bad address", map[string]string{"caller": "nope", "amount": "1000", "tier": "100d"}},
	}
	for _, tc := range cases {
		resp, status := env.call(t, testToken, "staking_stake", tc.params)
		require.Equal(t, http.StatusBadRequest, status, tc.name)
		require.NotNil(t, resp.Error, tc.name)
		require.Equal(t, codeInvalidParams, resp.Error.Code, tc.name)
	}

	resp, status := env.call(t, testToken, "staking_stake", map[string]string{
		"caller": bech32Addr(0x01),
		"amount": "1000",
		"tier":   "100d",
		"extra":  "field",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestStakingFailuresMapToConflict(t *testing.T) {
	env := newTestEnv(t)

	resp, status := env.call(t, testToken, "staking_claim", map[string]string{"caller": bech32Addr(0x01)})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, codeServerError, resp.Error.Code)
	require.Equal(t, "staking: no stake record", resp.Error.Message)

	_, _ = env.call(t, testToken, "staking_stake", map[string]string{
		"caller": bech32Addr(0x01), "amount": "1000", "tier": "100d",
	})
	resp, status = env.call(t, testToken, "staking_withdraw", map[string]string{"caller": bech32Addr(0x01)})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "staking: lock period not over", resp.Error.Message)
}

func TestPauseRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	resp, status := env.call(t, testToken, "staking_pause", map[string]string{"caller": bech32Addr(0x01)})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	resp, status = env.call(t, testToken, "staking_pause", map[string]string{"caller": bech32Addr(0xAD)})
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)
	require.Equal(t, true, resp.Result.(map[string]interface{})["paused"])
}

func TestQueriesNeedNoAuth(t *testing.T) {
	env := newTestEnv(t)

	resp, status := env.call(t, "", "staking_getConfig")
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)
	cfg := resp.Result.(map[string]interface{})
	require.Equal(t, bech32Addr(0xAD), cfg["admin"])
	require.Equal(t, false, cfg["paused"])

	resp, status = env.call(t, "", "staking_getBalance", map[string]string{"address": "vault"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "1000000", resp.Result.(map[string]interface{})["balance"])
}

func TestGetPositionReportsAccrual(t *testing.T) {
	env := newTestEnv(t)

	_, status := env.call(t, testToken, "staking_stake", map[string]string{
		"caller": bech32Addr(0x01), "amount": "1000", "tier": "100d",
	})
	require.Equal(t, http.StatusOK, status)

	*env.now += 50 * 24 * 60 * 60
	resp, status := env.call(t, "", "staking_getPosition", map[string]string{"address": bech32Addr(0x01)})
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)
	position := resp.Result.(map[string]interface{})
	require.Equal(t, "1000", position["principal"])
	require.Equal(t, "280", position["accrued"])
	require.Equal(t, "280", position["payable"])
	require.Equal(t, true, position["active"])

	preview, _ := env.call(t, "", "staking_previewClaim", map[string]string{"address": bech32Addr(0x01)})
	require.Nil(t, preview.Error)
	require.Equal(t, "280", preview.Result.(map[string]interface{})["payable"])
}

func TestMethodNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, status := env.call(t, "", "staking_burn", map[string]string{"caller": bech32Addr(0x01)})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestRejectsNonPost(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
