package main

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/chainspend/internal/assembler"
	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/internal/resolver"
	"github.com/jessevdk/go-flags"
)

func registerCommands(parser *flags.Parser, e *env) {
	commands := []struct {
		name, short, long string
		data              any
	}{
		{"resolve", "Resolve an identifier", "Resolve an address, transaction id, block id, block height or, without argument, the latest block.", &resolveCmd{env: e}},
		{"balance", "Show address balance", "Show the confirmed and unconfirmed balance reported for an address.", &balanceCmd{env: e}},
		{"unspent", "List unspent outputs", "List the unspent outputs of an address.", &unspentCmd{env: e}},
		{"block", "Show a block", "Show the block at a height, with a block id or, without argument, the latest block.", &blockCmd{env: e}},
		{"height", "Show latest block height", "Show the height of the latest block.", &heightCmd{env: e}},
		{"online", "Probe the data service", "Report whether the blockchain data service is reachable.", &onlineCmd{env: e}},
		{"status", "Show data service status", "Show the status reported by the blockchain data service.", &statusCmd{env: e}},
		{"unconfirmed", "List mempool transactions", "List unconfirmed transactions known to the data service.", &unconfirmedCmd{env: e}},
		{"send", "Build a payment with change", "Spend one previous output to a recipient, returning change.", &sendCmd{env: e}},
		{"general", "Build an N-in/M-out transaction", "Spend several previous outputs to several recipients with an optional metadata output.", &generalCmd{env: e}},
		{"cashout", "Drain addresses", "Spend every unspent output of the given keys, split evenly across recipients.", &cashoutCmd{env: e}},
		{"broadcast", "Broadcast a raw transaction", "Submit a hex encoded signed transaction.", &broadcastCmd{env: e}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(fmt.Sprintf("register command %s: %v", c.name, err))
		}
	}
}

type resolveCmd struct {
	env           *env
	Confirmations *int64 `long:"confirmations" description:"keep only transactions with exactly this many confirmations"`
	Block         bool   `long:"block" description:"treat a hash as a block id"`
	IDsOnly       bool   `long:"ids" description:"print transaction ids only"`
	Args          struct {
		ID string `positional-arg-name:"identifier"`
	} `positional-args:"yes"`
}

func (c *resolveCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	var opts []resolver.Option
	if c.Confirmations != nil {
		opts = append(opts, resolver.WithConfirmations(*c.Confirmations))
	}
	if c.Block {
		opts = append(opts, resolver.AsBlock())
	}
	id := model.ClassifyString(c.Args.ID)
	if c.IDsOnly {
		ids, err := a.Resolver.TxIDs(c.env.ctx, id, opts...)
		if err != nil {
			return err
		}
		return c.env.print(ids)
	}
	res, err := a.Resolver.Resolve(c.env.ctx, id, opts...)
	if err != nil {
		return err
	}
	return c.env.print(res)
}

type balanceCmd struct {
	env  *env
	Args struct {
		Address string `positional-arg-name:"address" required:"yes"`
	} `positional-args:"yes"`
}

func (c *balanceCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	balance, err := a.Accessor.Balance(c.env.ctx, c.Args.Address)
	if err != nil {
		return err
	}
	return c.env.print(balance)
}

type unspentCmd struct {
	env      *env
	Strategy string `long:"strategy" description:"simulated or authoritative" default:"authoritative"`
	Args     struct {
		Address string `positional-arg-name:"address" required:"yes"`
	} `positional-args:"yes"`
}

func (c *unspentCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	strategy, err := a.Accessor.Strategy(c.Strategy)
	if err != nil {
		return err
	}
	outputs, err := strategy.Unspent(c.env.ctx, c.Args.Address)
	if err != nil {
		return err
	}
	return c.env.print(outputs)
}

type blockCmd struct {
	env  *env
	Args struct {
		ID string `positional-arg-name:"height|hash"`
	} `positional-args:"yes"`
}

func (c *blockCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	block, err := a.Resolver.Block(c.env.ctx, model.ClassifyString(c.Args.ID))
	if err != nil {
		return err
	}
	return c.env.print(block)
}

type heightCmd struct {
	env *env
}

func (c *heightCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	height, err := a.Resolver.LatestHeight(c.env.ctx)
	if err != nil {
		return err
	}
	return c.env.print(height)
}

type onlineCmd struct {
	env *env
}

func (c *onlineCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	return c.env.print(a.Client.Online(c.env.ctx))
}

type statusCmd struct {
	env *env
}

func (c *statusCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	status, err := a.Client.Status(c.env.ctx)
	if err != nil {
		return err
	}
	return c.env.print(status)
}

type unconfirmedCmd struct {
	env     *env
	IDsOnly bool `long:"ids" description:"print transaction ids only"`
	Limit   int  `long:"limit" description:"page size, 0 asks for everything"`
	Offset  int  `long:"offset" description:"number of transactions to skip"`
}

func (c *unconfirmedCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	page, err := pageOf(c.Limit, c.Offset)
	if err != nil {
		return err
	}
	txs, err := a.Client.Unconfirmed(c.env.ctx, page)
	if err != nil {
		return err
	}
	if c.IDsOnly {
		return c.env.print(model.Hashes(txs))
	}
	return c.env.print(txs)
}

type sendCmd struct {
	env       *env
	PrevTxID  string `long:"prev" description:"previous transaction id" required:"yes"`
	Index     string `long:"index" description:"output index when the previous transaction pays the key more than once"`
	Secret    string `long:"secret" env:"CHAINSPEND_SECRET" description:"WIF or hex private key" required:"yes"`
	To        string `long:"to" description:"recipient address" required:"yes"`
	Amount    int64  `long:"amount" description:"satoshis to send" required:"yes"`
	Fee       int64  `long:"fee" description:"flat fee in satoshis" default:"0"`
	Change    string `long:"change" description:"change address, defaults to the key address"`
	Broadcast bool   `long:"broadcast" description:"broadcast after building"`
}

func (c *sendCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	index, err := parseIndex(c.Index)
	if err != nil {
		return err
	}
	raw, err := a.Assembler.CreateTx(c.env.ctx, assembler.TransferRequest{
		PrevTxID:      c.PrevTxID,
		OutputIndex:   index,
		Secret:        c.Secret,
		Recipient:     c.To,
		Amount:        btcutil.Amount(c.Amount),
		Fee:           btcutil.Amount(c.Fee),
		ChangeAddress: c.Change,
	})
	if err != nil {
		return err
	}
	return c.env.finish(a, raw, c.Broadcast)
}

type generalCmd struct {
	env       *env
	Inputs    []string `long:"input" description:"txid:secret[:index], repeatable" required:"yes"`
	Payments  []string `long:"pay" description:"address:satoshis, repeatable"`
	Metadata  string   `long:"metadata" description:"hex encoded data for a zero value output"`
	Broadcast bool     `long:"broadcast" description:"broadcast after building"`
}

func (c *generalCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	req := assembler.GeneralRequest{MetadataHex: c.Metadata}
	for _, value := range c.Inputs {
		in, err := parseInput(value)
		if err != nil {
			return err
		}
		req.Inputs = append(req.Inputs, in)
	}
	for _, value := range c.Payments {
		p, err := parsePayment(value)
		if err != nil {
			return err
		}
		req.Payments = append(req.Payments, p)
	}
	raw, err := a.Assembler.CreateGeneralTx(c.env.ctx, req)
	if err != nil {
		return err
	}
	return c.env.finish(a, raw, c.Broadcast)
}

type cashoutCmd struct {
	env       *env
	Secrets   []string `long:"secret" env:"CHAINSPEND_SECRETS" env-delim:"," description:"WIF or hex private key, repeatable" required:"yes"`
	To        []string `long:"to" description:"recipient address, repeatable" required:"yes"`
	Fee       int64    `long:"fee" description:"flat fee in satoshis" default:"0"`
	History   string   `long:"history" description:"build offline from a JSON file of previous transactions"`
	Broadcast bool     `long:"broadcast" description:"broadcast after building"`
}

func (c *cashoutCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	fee := btcutil.Amount(c.Fee)
	single := len(c.Secrets) == 1 && len(c.To) == 1

	var raw *keys.RawTransaction
	switch {
	case c.History != "":
		history, err := loadHistory(c.History)
		if err != nil {
			return err
		}
		if single {
			raw, err = a.Assembler.CreateSingleAddressCashoutTxOffline(c.Secrets[0], c.To[0], fee, history)
		} else {
			raw, err = a.Assembler.CreateMultipleAddressesCashoutTxOffline(assembler.CashoutRequest{
				Secrets: c.Secrets, Recipients: c.To, Fee: fee,
			}, history)
		}
		if err != nil {
			return err
		}
	case single:
		if raw, err = a.Assembler.CreateSingleAddressCashoutTx(c.env.ctx, c.Secrets[0], c.To[0], fee); err != nil {
			return err
		}
	default:
		if raw, err = a.Assembler.CreateMultipleAddressesCashoutTx(c.env.ctx, assembler.CashoutRequest{
			Secrets: c.Secrets, Recipients: c.To, Fee: fee,
		}); err != nil {
			return err
		}
	}
	return c.env.finish(a, raw, c.Broadcast)
}

type broadcastCmd struct {
	env  *env
	Args struct {
		Hex string `positional-arg-name:"hex" required:"yes"`
	} `positional-args:"yes"`
}

func (c *broadcastCmd) Execute([]string) error {
	a, err := c.env.App()
	if err != nil {
		return err
	}
	res, err := a.Broadcaster.Broadcast(c.env.ctx, c.Args.Hex)
	if err != nil {
		return err
	}
	return c.env.print(res)
}
