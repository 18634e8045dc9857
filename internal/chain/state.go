package chain

import "github.com/fractalchain/fractald/pkg/types"

// ledger tracks confirmed account balances. Spendable balance additionally
// subtracts pending mempool debits, computed by Chain.Balance from the
// mempool rather than stored here (spec §4.4: "confirmed minus pending
// outgoing").
type ledger struct {
	confirmed map[types.Address]types.Amount
}

func newLedger() *ledger {
	return &ledger{confirmed: make(map[types.Address]types.Amount)}
}

func (l *ledger) get(addr types.Address) types.Amount {
	return l.confirmed[addr]
}

func (l *ledger) credit(addr types.Address, amount types.Amount) {
	l.confirmed[addr] += amount
}

func (l *ledger) debit(addr types.Address, amount types.Amount) {
	l.confirmed[addr] -= amount
}

// tip holds the chain's current head: height, block hash, and the running
// coin supply (sum of all coinbase/genesis mint amounts so far).
type tip struct {
	Height uint64
	Hash   string
	Supply types.Amount
}
