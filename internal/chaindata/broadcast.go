package chaindata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goodnatureofminers/chainspend/internal/model"
	"go.uber.org/zap"
)

type broadcastRequest struct {
	Hex string `json:"hex"`
}

// Broadcast submits a signed raw transaction to the data service.
func (c *Client) Broadcast(ctx context.Context, rawTxHex string) (res *model.BroadcastResult, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("broadcast", err, started)
	}()

	c.rl.Take()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(broadcastRequest{Hex: rawTxHex}).
		Post("transactions")
	if err != nil {
		if isUnavailable(err) {
			return nil, fmt.Errorf("post transactions: %w: %w", ErrTransportUnavailable, err)
		}
		return nil, fmt.Errorf("post transactions: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("post transactions: unexpected status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var out model.BroadcastResult
	if body := resp.Body(); len(body) > 0 {
		if err = json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode broadcast response: %w", err)
		}
	}
	c.logger.Info("transaction broadcast", zap.String("hash", out.Hash))
	return &out, nil
}
