package model

// Address is the summary record of an address.
type Address struct {
	Hash                string `json:"hash"`
	Balance             int64  `json:"balance"`
	UnconfirmedBalance  int64  `json:"unconfirmed_balance"`
	Received            int64  `json:"received,omitempty"`
	Sent                int64  `json:"sent,omitempty"`
	UnconfirmedReceived int64  `json:"unconfirmed_received,omitempty"`
	UnconfirmedSent     int64  `json:"unconfirmed_sent,omitempty"`
}

// AddressTransactions is an address summary with its confirmed and unconfirmed history.
type AddressTransactions struct {
	Address
	Transactions            []Transaction `json:"transactions"`
	UnconfirmedTransactions []Transaction `json:"unconfirmed_transactions"`
}

// History concatenates confirmed and unconfirmed transactions, confirmed first.
func (a AddressTransactions) History() []Transaction {
	history := make([]Transaction, 0, len(a.Transactions)+len(a.UnconfirmedTransactions))
	history = append(history, a.Transactions...)
	return append(history, a.UnconfirmedTransactions...)
}

// Balance is the remote-reported balance of an address.
type Balance struct {
	Confirmed   int64 `json:"confirmed"`
	Unconfirmed int64 `json:"unconfirmed"`
}

// UnspentOutput references a spendable output of a previous transaction.
type UnspentOutput struct {
	TxID      string   `json:"transaction_hash"`
	Index     uint32   `json:"output_index"`
	Amount    int64    `json:"amount"`
	ScriptHex string   `json:"script_hex,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
}

// Outpoint is the txid:index key of the output.
func (u UnspentOutput) Outpoint() string {
	return OutpointKey(u.TxID, u.Index)
}
