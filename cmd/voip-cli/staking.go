package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultRPCURL = "http://127.0.0.1:8645"

var rpcCall = callRPC

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func callRPC(method string, params interface{}, withAuth bool) (json.RawMessage, *rpcError, error) {
	url := strings.TrimSpace(os.Getenv("VOIP_RPC_URL"))
	if url == "" {
		url = defaultRPCURL
	}

	paramList := []interface{}{}
	if params != nil {
		paramList = append(paramList, params)
	}
	payload, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  paramList,
	})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if withAuth {
		token := strings.TrimSpace(os.Getenv("VOIP_RPC_TOKEN"))
		if token == "" {
			return nil, nil, fmt.Errorf("VOIP_RPC_TOKEN is required for this command")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	var envelope rpcEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("invalid RPC response: %w", err)
	}
	return envelope.Result, envelope.Error, nil
}

func reportRPCError(stderr io.Writer, rpcErr *rpcError) int {
	fmt.Fprintf(stderr, "Error (%d): %s\n", rpcErr.Code, rpcErr.Message)
	return 1
}

func runStake(args []string, stdout, stderr io.Writer) int {
	if len(args) != 3 {
		fmt.Fprintln(stderr, "Usage: voip-cli stake <caller> <amount> <tier>")
		return 1
	}
	params := map[string]string{
		"caller": strings.TrimSpace(args[0]),
		"amount": strings.TrimSpace(args[1]),
		"tier":   strings.TrimSpace(args[2]),
	}
	result, rpcErr, err := rpcCall("staking_stake", params, true)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if rpcErr != nil {
		return reportRPCError(stderr, rpcErr)
	}
	var out struct {
		Principal      string `json:"principal"`
		Tier           string `json:"tier"`
		StartTimestamp uint64 `json:"startTimestamp"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		fmt.Fprintf(stderr, "Failed to decode response: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Staked %s for %s starting %s\n",
		out.Principal, out.Tier, formatTimestamp(out.StartTimestamp))
	return 0
}

func runClaim(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: voip-cli claim <caller>")
		return 1
	}
	result, rpcErr, err := rpcCall("staking_claim", map[string]string{"caller": strings.TrimSpace(args[0])}, true)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if rpcErr != nil {
		return reportRPCError(stderr, rpcErr)
	}
	var out struct {
		Paid string `json:"paid"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		fmt.Fprintf(stderr, "Failed to decode response: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Claimed %s\n", out.Paid)
	return 0
}

func runWithdraw(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: voip-cli withdraw <caller>")
		return 1
	}
	result, rpcErr, err := rpcCall("staking_withdraw", map[string]string{"caller": strings.TrimSpace(args[0])}, true)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if rpcErr != nil {
		return reportRPCError(stderr, rpcErr)
	}
	var out struct {
		Principal   string `json:"principal"`
		FinalReward string `json:"finalReward"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		fmt.Fprintf(stderr, "Failed to decode response: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Withdrew principal %s (final reward %s)\n", out.Principal, out.FinalReward)
	return 0
}

func runPosition(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: voip-cli position <address>")
		return 1
	}
	addr := strings.TrimSpace(args[0])
	result, rpcErr, err := rpcCall("staking_getPosition", map[string]string{"address": addr}, false)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if rpcErr != nil {
		return reportRPCError(stderr, rpcErr)
	}
	var out struct {
		Principal      string `json:"principal"`
		Tier           string `json:"tier"`
		StartTimestamp uint64 `json:"startTimestamp"`
		ClaimedReward  string `json:"claimedReward"`
		Active         bool   `json:"active"`
		Accrued        string `json:"accrued"`
		Payable        string `json:"payable"`
		MaturesAt      uint64 `json:"maturesAt"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		fmt.Fprintf(stderr, "Failed to decode response: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Stake position for %s\n", addr)
	fmt.Fprintf(stdout, "  Principal:  %s\n", out.Principal)
	fmt.Fprintf(stdout, "  Tier:       %s\n", out.Tier)
	fmt.Fprintf(stdout, "  Started:    %s\n", formatTimestamp(out.StartTimestamp))
	fmt.Fprintf(stdout, "  Matures:    %s\n", formatTimestamp(out.MaturesAt))
	fmt.Fprintf(stdout, "  Claimed:    %s\n", out.ClaimedReward)
	fmt.Fprintf(stdout, "  Accrued:    %s\n", out.Accrued)
	fmt.Fprintf(stdout, "  Payable:    %s\n", out.Payable)
	fmt.Fprintf(stdout, "  Active:     %t\n", out.Active)
	return 0
}

func runBalance(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: voip-cli balance <address|vault>")
		return 1
	}
	addr := strings.TrimSpace(args[0])
	result, rpcErr, err := rpcCall("staking_getBalance", map[string]string{"address": addr}, false)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if rpcErr != nil {
		return reportRPCError(stderr, rpcErr)
	}
	var out struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		fmt.Fprintf(stderr, "Failed to decode response: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%s: %s\n", addr, out.Balance)
	return 0
}

func runPause(args []string, stdout, stderr io.Writer, pause bool) int {
	command := "unpause"
	method := "staking_unpause"
	if pause {
		command = "pause"
		method = "staking_pause"
	}
	if len(args) != 1 {
		fmt.Fprintf(stderr, "Usage: voip-cli %s <admin>\n", command)
		return 1
	}
	_, rpcErr, err := rpcCall(method, map[string]string{"caller": strings.TrimSpace(args[0])}, true)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if rpcErr != nil {
		return reportRPCError(stderr, rpcErr)
	}
	fmt.Fprintf(stdout, "Contract %sd\n", command)
	return 0
}

func runConfig(args []string, stdout, stderr io.Writer) int {
	if len(args) != 0 {
		fmt.Fprintln(stderr, "Usage: voip-cli config")
		return 1
	}
	result, rpcErr, err := rpcCall("staking_getConfig", nil, false)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if rpcErr != nil {
		return reportRPCError(stderr, rpcErr)
	}
	var out struct {
		Admin  string `json:"admin"`
		Paused bool   `json:"paused"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		fmt.Fprintf(stderr, "Failed to decode response: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Admin:  %s\n", out.Admin)
	fmt.Fprintf(stdout, "Paused: %t\n", out.Paused)
	return 0
}

func formatTimestamp(ts uint64) string {
	if ts == 0 {
		return "never"
	}
	return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
}
