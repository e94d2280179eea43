package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage())
		os.Exit(1)
	}

	var code int
	switch os.Args[1] {
	case "stake":
		code = runStake(os.Args[2:], os.Stdout, os.Stderr)
	case "claim":
		code = runClaim(os.Args[2:], os.Stdout, os.Stderr)
	case "withdraw":
		code = runWithdraw(os.Args[2:], os.Stdout, os.Stderr)
	case "position":
		code = runPosition(os.Args[2:], os.Stdout, os.Stderr)
	case "balance":
		code = runBalance(os.Args[2:], os.Stdout, os.Stderr)
	case "pause":
		code = runPause(os.Args[2:], os.Stdout, os.Stderr, true)
	case "unpause":
		code = runPause(os.Args[2:], os.Stdout, os.Stderr, false)
	case "config":
		code = runConfig(os.Args[2:], os.Stdout, os.Stderr)
	default:
		fmt.Fprintln(os.Stderr, usage())
		code = 1
	}
	os.Exit(code)
}

func usage() string {
	return `Usage: voip-cli <command> [args]

Commands:
  stake <caller> <amount> <tier>   lock tokens (tier: 100d | 180d | 360d)
  claim <caller>                   pay out accrued rewards
  withdraw <caller>                return principal after maturity
  position <address>               show a stake record and its accrual
  balance <address|vault>          show a ledger balance
  pause <admin>                    halt new staking
  unpause <admin>                  resume staking
  config                           show contract admin and pause state

Environment:
  VOIP_RPC_URL    RPC endpoint (default http://127.0.0.1:8645)
  VOIP_RPC_TOKEN  bearer token for mutating commands`
}
