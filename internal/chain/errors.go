package chain

import "errors"

var (
	ErrGenesisAlreadyExists = errors.New("chain: genesis already initialized")
	ErrEmptyChain           = errors.New("chain: no blocks yet")
	ErrBlockNotFound        = errors.New("chain: block not found")
	ErrTxNotFound           = errors.New("chain: transaction not found")
	ErrInsufficientBalance  = errors.New("chain: insufficient spendable balance")
	ErrDuplicateTransaction = errors.New("chain: duplicate transaction")
	ErrBadCoinbaseAmount    = errors.New("chain: coinbase amount exceeds reward plus fees")
)
