package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/chinmay1088/walletsdk/rpc"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Node issues the JSON-RPC calls shared by Ethereum style chains. The endpoint is passed on
// every call because the adapters resolve it from the live configuration.
type Node struct {
	rpc *rpc.Client
}

// NewNode creates a node client on top of the shared transport.
func NewNode(c *rpc.Client) *Node {
	return &Node{rpc: c}
}

// CallMsg is the transaction object of an eth_call.
type CallMsg struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// Call executes a read-only contract call against the latest block and returns the hex result.
func (n *Node) Call(ctx context.Context, endpoint string, msg CallMsg) (string, error) {
	var result string
	if err := n.rpc.Call(ctx, endpoint, "eth_call", &result, msg, "latest"); err != nil {
		return "", err
	}
	return result, nil
}

// GetBalance fetches the native balance of address in the smallest unit.
func (n *Node) GetBalance(ctx context.Context, endpoint, address string) (*big.Int, error) {
	return n.hexBig(ctx, endpoint, "eth_getBalance", address, "latest")
}

// GetNonce fetches the transaction count of address.
func (n *Node) GetNonce(ctx context.Context, endpoint, address string) (uint64, error) {
	return n.hexUint(ctx, endpoint, "eth_getTransactionCount", address, "pending")
}

// GetGasPrice fetches the current gas price.
func (n *Node) GetGasPrice(ctx context.Context, endpoint string) (*big.Int, error) {
	return n.hexBig(ctx, endpoint, "eth_gasPrice")
}

// GetChainID fetches the EIP-155 chain id.
func (n *Node) GetChainID(ctx context.Context, endpoint string) (*big.Int, error) {
	return n.hexBig(ctx, endpoint, "eth_chainId")
}

// BlockNumber fetches the latest block number.
func (n *Node) BlockNumber(ctx context.Context, endpoint string) (uint64, error) {
	return n.hexUint(ctx, endpoint, "eth_blockNumber")
}

// EstimateGas estimates the gas needed by msg.
func (n *Node) EstimateGas(ctx context.Context, endpoint string, msg CallMsg, value *big.Int) (uint64, error) {
	tx := map[string]any{"from": msg.From, "to": msg.To}
	if msg.Data != "" {
		tx["data"] = msg.Data
	}
	if value != nil && value.Sign() > 0 {
		tx["value"] = hexutil.EncodeBig(value)
	}
	return n.hexUint(ctx, endpoint, "eth_estimateGas", tx)
}

// SendRawTransaction broadcasts a signed transaction and returns its hash.
func (n *Node) SendRawTransaction(ctx context.Context, endpoint, signedTx string) (string, error) {
	var hash string
	if err := n.rpc.Call(ctx, endpoint, "eth_sendRawTransaction", &hash, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return hash, nil
}

// GetBlockByNumber fetches a block header with transaction hashes only.
func (n *Node) GetBlockByNumber(ctx context.Context, endpoint string, number uint64) (*types.Block, error) {
	var raw struct {
		Number       string   `json:"number"`
		Hash         string   `json:"hash"`
		ParentHash   string   `json:"parentHash"`
		Timestamp    string   `json:"timestamp"`
		Transactions []string `json:"transactions"`
	}
	if err := n.rpc.Call(ctx, endpoint, "eth_getBlockByNumber", &raw, hexutil.EncodeUint64(number), false); err != nil {
		return nil, fmt.Errorf("failed to fetch block %d: %w", number, err)
	}

	blockNumber, err := ParseHexUint(raw.Number)
	if err != nil {
		return nil, fmt.Errorf("invalid block number: %w", err)
	}
	timestamp, err := ParseHexUint(raw.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid block timestamp: %w", err)
	}

	return &types.Block{
		Number:       blockNumber,
		Hash:         raw.Hash,
		ParentHash:   raw.ParentHash,
		Timestamp:    timestamp,
		Transactions: raw.Transactions,
	}, nil
}

// GetTransactionStatus reads the receipt of hash. A missing receipt means the transaction is
// still pending.
func (n *Node) GetTransactionStatus(ctx context.Context, endpoint, hash string) (*types.TxStatus, error) {
	var receipt struct {
		Status      string `json:"status"`
		BlockNumber string `json:"blockNumber"`
		GasUsed     string `json:"gasUsed"`
	}
	err := n.rpc.Call(ctx, endpoint, "eth_getTransactionReceipt", &receipt, hash)
	if errors.Is(err, rpc.ErrNoResult) {
		return &types.TxStatus{Status: types.StatusPending}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipt: %w", err)
	}

	status := types.StatusConfirmed
	if code, err := ParseHexUint(receipt.Status); err == nil && code == 0 {
		status = types.StatusFailed
	}
	blockNumber, _ := ParseHexUint(receipt.BlockNumber)
	gasUsed, _ := ParseHexUint(receipt.GasUsed)

	return &types.TxStatus{Status: status, BlockNumber: blockNumber, GasUsed: gasUsed}, nil
}

func (n *Node) hexBig(ctx context.Context, endpoint, method string, params ...any) (*big.Int, error) {
	var result string
	if err := n.rpc.Call(ctx, endpoint, method, &result, params...); err != nil {
		return nil, err
	}
	value, err := ParseHexBig(result)
	if err != nil {
		return nil, fmt.Errorf("invalid %s result: %w", method, err)
	}
	return value, nil
}

func (n *Node) hexUint(ctx context.Context, endpoint, method string, params ...any) (uint64, error) {
	var result string
	if err := n.rpc.Call(ctx, endpoint, method, &result, params...); err != nil {
		return 0, err
	}
	value, err := ParseHexUint(result)
	if err != nil {
		return 0, fmt.Errorf("invalid %s result: %w", method, err)
	}
	return value, nil
}

// ParseHexUint parses a 0x prefixed quantity. Leading zeros are accepted.
func ParseHexUint(hexStr string) (uint64, error) {
	hexStr = strings.TrimPrefix(hexStr, "0x")
	if hexStr == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	return strconv.ParseUint(hexStr, 16, 64)
}

// ParseHexBig parses a 0x prefixed quantity of any size. "0x" alone is zero.
func ParseHexBig(hexStr string) (*big.Int, error) {
	hexStr = strings.TrimPrefix(hexStr, "0x")
	if hexStr == "" {
		return new(big.Int), nil
	}

	value := new(big.Int)
	if _, ok := value.SetString(hexStr, 16); !ok {
		return nil, fmt.Errorf("invalid hex value: %s", hexStr)
	}
	return value, nil
}
