package systems

import "github.com/pthm-cable/citycore/ids"

// CreditLedger tracks per-overseer balances and implements
// query.CreditProvider. It is not a subsystem: it has no per-tick work
// of its own, it is mutated only through Debit/Credit by the systems
// that charge for placement, demolition and trade.
type CreditLedger struct {
	balances [ids.MaxPlayers + 1]ids.Credits
}

// NewCreditLedger creates a ledger with every overseer at the given
// starting balance. The neutral world player has no balance.
func NewCreditLedger(starting ids.Credits) *CreditLedger {
	l := &CreditLedger{}
	for p := 1; p <= ids.MaxPlayers; p++ {
		l.balances[p] = starting
	}
	return l
}

// Balance returns the current balance for owner.
func (l *CreditLedger) Balance(owner ids.PlayerID) ids.Credits {
	if int(owner) > ids.MaxPlayers {
		return 0
	}
	return l.balances[owner]
}

// Debit withdraws amount if the balance covers it and reports whether
// the withdrawal happened. The neutral player always succeeds: world
// entities are never cash-constrained.
func (l *CreditLedger) Debit(owner ids.PlayerID, amount ids.Credits) bool {
	if owner == ids.NeutralPlayer {
		return true
	}
	if int(owner) > ids.MaxPlayers {
		return false
	}
	if l.balances[owner] < amount {
		return false
	}
	l.balances[owner] -= amount
	return true
}

// Credit deposits amount into owner's balance.
func (l *CreditLedger) Credit(owner ids.PlayerID, amount ids.Credits) {
	if owner == ids.NeutralPlayer || int(owner) > ids.MaxPlayers {
		return
	}
	l.balances[owner] += amount
}
