package rpc

import (
	stderrors "errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/cenwadike/voip-staking/core/errors"
	"github.com/cenwadike/voip-staking/crypto"
	"github.com/cenwadike/voip-staking/native/staking"
)

type callerParams struct {
	Caller string `json:"caller"`
}

type stakeParams struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
	Tier   string `json:"tier"`
}

type addressParams struct {
	Address string `json:"address"`
}

type positionResult struct {
	Owner          string `json:"owner"`
	Principal      string `json:"principal"`
	Tier           string `json:"tier"`
	StartTimestamp uint64 `json:"startTimestamp"`
	ClaimedReward  string `json:"claimedReward"`
	Active         bool   `json:"active"`
	Accrued        string `json:"accrued"`
	Payable        string `json:"payable"`
	MaturesAt      uint64 `json:"maturesAt"`
}

type previewClaimResult struct {
	Payable   string `json:"payable"`
	MaturesAt uint64 `json:"maturesAt"`
}

type configResult struct {
	Admin  string `json:"admin"`
	Paused bool   `json:"paused"`
}

type balanceResult struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type stakeResult struct {
	Owner          string `json:"owner"`
	Principal      string `json:"principal"`
	Tier           string `json:"tier"`
	StartTimestamp uint64 `json:"startTimestamp"`
}

type claimResult struct {
	Paid string `json:"paid"`
}

type withdrawResult struct {
	Principal   string `json:"principal"`
	FinalReward string `json:"finalReward"`
}

func parseAmount(amount string) (*big.Int, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return nil, fmt.Errorf("amount is required")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount")
	}
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return value, nil
}

func decodeCaller(value string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Array(), nil
}

func (s *Server) decodeParams(w http.ResponseWriter, req *RPCRequest, out interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return false
	}
	if err := jsonUnmarshalStrict(req.Params[0], out); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return false
	}
	return true
}

// writeStakingError maps the staking failure taxonomy onto JSON-RPC errors.
// The taxonomy message is surfaced verbatim so callers can distinguish every
// failure kind.
func writeStakingError(w http.ResponseWriter, id interface{}, err error) string {
	switch {
	case stderrors.Is(err, errors.ErrUnauthorized):
		writeError(w, http.StatusForbidden, id, codeUnauthorized, err.Error(), nil)
	case stderrors.Is(err, errors.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, err.Error(), nil)
	case stderrors.Is(err, errors.ErrAlreadyInitialized),
		stderrors.Is(err, errors.ErrNotInitialized),
		stderrors.Is(err, errors.ErrPaused),
		stderrors.Is(err, errors.ErrAlreadyStaked),
		stderrors.Is(err, errors.ErrNoStake),
		stderrors.Is(err, errors.ErrNotMatured),
		stderrors.Is(err, errors.ErrNothingToClaim),
		stderrors.Is(err, errors.ErrInsufficientFunds),
		stderrors.Is(err, errors.ErrInsufficientContractFunds):
		writeError(w, http.StatusConflict, id, codeServerError, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, id, codeServerError, err.Error(), nil)
	}
	return "error"
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request, req *RPCRequest) string {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return "unauthorized"
	}
	var params callerParams
	if !s.decodeParams(w, req, &params) {
		return "invalid_params"
	}
	caller, err := decodeCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return "invalid_params"
	}
	if err := s.node.Initialize(caller); err != nil {
		s.metrics.ObserveError(req.Method, errorKind(err))
		return writeStakingError(w, req.ID, err)
	}
	writeResult(w, req.ID, configResult{Admin: params.Caller, Paused: false})
	return "ok"
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request, req *RPCRequest) string {
	return s.handleSetPaused(w, r, req, true)
}

func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request, req *RPCRequest) string {
	return s.handleSetPaused(w, r, req, false)
}

func (s *Server) handleSetPaused(w http.ResponseWriter, r *http.Request, req *RPCRequest, paused bool) string {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return "unauthorized"
	}
	var params callerParams
	if !s.decodeParams(w, req, &params) {
		return "invalid_params"
	}
	caller, err := decodeCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return "invalid_params"
	}
	if paused {
		err = s.node.Pause(caller)
	} else {
		err = s.node.Unpause(caller)
	}
	if err != nil {
		s.metrics.ObserveError(req.Method, errorKind(err))
		return writeStakingError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]bool{"paused": paused})
	return "ok"
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request, req *RPCRequest) string {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return "unauthorized"
	}
	var params stakeParams
	if !s.decodeParams(w, req, &params) {
		return "invalid_params"
	}
	caller, err := decodeCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return "invalid_params"
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return "invalid_params"
	}
	tier, err := staking.ParseTier(strings.TrimSpace(params.Tier))
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return "invalid_params"
	}
	record, err := s.node.Stake(caller, amount, tier)
	if err != nil {
		s.metrics.ObserveError(req.Method, errorKind(err))
		return writeStakingError(w, req.ID, err)
	}
	writeResult(w, req.ID, stakeResult{
		Owner:          params.Caller,
		Principal:      record.Principal.String(),
		Tier:           record.Tier.String(),
		StartTimestamp: record.StartTimestamp,
	})
	return "ok"
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request, req *RPCRequest) string {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return "unauthorized"
	}
	var params callerParams
	if !s.decodeParams(w, req, &params) {
		return "invalid_params"
	}
	caller, err := decodeCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return "invalid_params"
	}
	paid, err := s.node.Claim(caller)
	if err != nil {
		s.metrics.ObserveError(req.Method, errorKind(err))
		return writeStakingError(w, req.ID, err)
	}
	writeResult(w, req.ID, claimResult{Paid: paid.String()})
	return "ok"
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request, req *RPCRequest) string {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return "unauthorized"
	}
	var params callerParams
	if !s.decodeParams(w, req, &params) {
		return "invalid_params"
	}
	caller, err := decodeCaller(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return "invalid_params"
	}
	receipt, err := s.node.Withdraw(caller)
	if err != nil {
		s.metrics.ObserveError(req.Method, errorKind(err))
		return writeStakingError(w, req.ID, err)
	}
	writeResult(w, req.ID, withdrawResult{
		Principal:   receipt.Principal.String(),
		FinalReward: receipt.FinalReward.String(),
	})
	return "ok"
}

func (s *Server) handleGetPosition(w http.ResponseWriter, req *RPCRequest) string {
	var params addressParams
	if !s.decodeParams(w, req, &params) {
		return "invalid_params"
	}
	owner, err := decodeCaller(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return "invalid_params"
	}
	position, err := s.node.PositionOf(owner)
	if err != nil {
		return writeStakingError(w, req.ID, err)
	}
	writeResult(w, req.ID, positionResult{
		Owner:          params.Address,
		Principal:      position.Record.Principal.String(),
		Tier:           position.Record.Tier.String(),
		StartTimestamp: position.Record.StartTimestamp,
		ClaimedReward:  position.Record.ClaimedReward.String(),
		Active:         position.Record.Active,
		Accrued:        position.Accrued.String(),
		Payable:        position.Payable.String(),
		MaturesAt:      position.MaturesAt,
	})
	return "ok"
}

func (s *Server) handlePreviewClaim(w http.ResponseWriter, req *RPCRequest) string {
	var params addressParams
	if !s.decodeParams(w, req, &params) {
		return "invalid_params"
	}
	owner, err := decodeCaller(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return "invalid_params"
	}
	position, err := s.node.PositionOf(owner)
	if err != nil {
		return writeStakingError(w, req.ID, err)
	}
	writeResult(w, req.ID, previewClaimResult{
		Payable:   position.Payable.String(),
		MaturesAt: position.MaturesAt,
	})
	return "ok"
}

func (s *Server) handleGetConfig(w http.ResponseWriter, req *RPCRequest) string {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return "invalid_params"
	}
	cfg, err := s.node.Config()
	if err != nil {
		return writeStakingError(w, req.ID, err)
	}
	writeResult(w, req.ID, configResult{
		Admin:  crypto.MustNewAddress(crypto.VoipPrefix, cfg.Admin[:]).String(),
		Paused: cfg.Paused,
	})
	return "ok"
}

func (s *Server) handleGetBalance(w http.ResponseWriter, req *RPCRequest) string {
	var params addressParams
	if !s.decodeParams(w, req, &params) {
		return "invalid_params"
	}
	var addr [20]byte
	if strings.TrimSpace(params.Address) == "vault" {
		addr = s.node.VaultAddress()
	} else {
		decoded, err := decodeCaller(params.Address)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
			return "invalid_params"
		}
		addr = decoded
	}
	balance, err := s.node.BalanceOf(addr)
	if err != nil {
		return writeStakingError(w, req.ID, err)
	}
	writeResult(w, req.ID, balanceResult{Address: params.Address, Balance: balance.String()})
	return "ok"
}

func (s *Server) handleEvents(w http.ResponseWriter, req *RPCRequest) string {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return "invalid_params"
	}
	writeResult(w, req.ID, s.node.RecentEvents())
	return "ok"
}

func errorKind(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrUnauthorized):
		return "unauthorized"
	case stderrors.Is(err, errors.ErrAlreadyInitialized):
		return "already_initialized"
	case stderrors.Is(err, errors.ErrNotInitialized):
		return "not_initialized"
	case stderrors.Is(err, errors.ErrPaused):
		return "paused"
	case stderrors.Is(err, errors.ErrInvalidAmount):
		return "invalid_amount"
	case stderrors.Is(err, errors.ErrAlreadyStaked):
		return "already_staked"
	case stderrors.Is(err, errors.ErrNoStake):
		return "no_stake"
	case stderrors.Is(err, errors.ErrNotMatured):
		return "not_matured"
	case stderrors.Is(err, errors.ErrNothingToClaim):
		return "nothing_to_claim"
	case stderrors.Is(err, errors.ErrInsufficientFunds):
		return "insufficient_funds"
	case stderrors.Is(err, errors.ErrInsufficientContractFunds):
		return "insufficient_contract_funds"
	default:
		return "internal"
	}
}
