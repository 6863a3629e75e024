package eth

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/chinmay1088/walletsdk/chains/evm"
	"github.com/chinmay1088/walletsdk/coins"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// SendTransaction signs a legacy EIP-155 transaction paying value of symbol to to. A symbol
// other than ETH is an ERC20 transfer on extra.ContractAddress. The signed transaction is
// broadcast only when broadcast is set; otherwise the result carries the raw transaction and
// its hash.
func (a *Adapter) SendTransaction(ctx context.Context, account types.Account, symbol, to string,
	value decimal.Decimal, extra types.ExtraParams, data []byte, network string, broadcast bool) (*types.SendResult, error) {

	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("invalid recipient address: %s", to)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(account.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	if account.Address != "" && !a.SameAddress(account.Address, from.Hex()) {
		return nil, fmt.Errorf("private key does not match address %s", account.Address)
	}

	recipient := common.HexToAddress(to)
	amount := coins.ToUnits(value, Decimals)
	payload := data
	if !isNative(symbol) {
		if !common.IsHexAddress(extra.ContractAddress) {
			return nil, fmt.Errorf("contract address is required for token %s", symbol)
		}
		payload, err = erc20.Pack(evm.MethodTransfer, recipient, coins.ToUnits(value, extra.TokenDecimals))
		if err != nil {
			return nil, fmt.Errorf("failed to encode transfer: %w", err)
		}
		recipient = common.HexToAddress(extra.ContractAddress)
		amount = new(big.Int)
	}

	nonce, err := a.node.GetNonce(ctx, endpoint, from.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	chainID, err := a.node.GetChainID(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	gasPrice := extra.GasPrice
	if gasPrice == nil {
		if gasPrice, err = a.node.GetGasPrice(ctx, endpoint); err != nil {
			return nil, fmt.Errorf("failed to get gas price: %w", err)
		}
	}
	gasLimit := extra.GasLimit
	if gasLimit == 0 {
		if len(payload) == 0 {
			gasLimit = defaultGasLimit
		} else {
			msg := evm.CallMsg{From: from.Hex(), To: recipient.Hex(), Data: hexutil.Encode(payload)}
			if gasLimit, err = a.node.EstimateGas(ctx, endpoint, msg, amount); err != nil {
				return nil, fmt.Errorf("failed to estimate gas: %w", err)
			}
		}
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &recipient,
		Value:    amount,
		Data:     payload,
	})
	signed, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	result := &types.SendResult{
		Hash:  signed.Hash().Hex(),
		RawTx: hexutil.Encode(raw),
		Nonce: nonce,
	}
	if !broadcast {
		return result, nil
	}

	a.env.Log.InfoContext(ctx, "broadcasting transaction", "coin", Symbol, "network", network, "hash", result.Hash)
	hash, err := a.node.SendRawTransaction(ctx, endpoint, result.RawTx)
	if err != nil {
		return nil, err
	}
	result.Hash = hash
	result.Broadcasted = true
	return result, nil
}
