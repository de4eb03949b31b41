// Package transport exposes gRPC/HTTP handlers.
package transport

import (
	"context"

	blockinsight7000v1 "github.com/goodnatureofminers/blockinsight7000-proto/pkg/blockinsight7000/v1"
)

const (
	descriptionReachable   = "blockchain data service reachable"
	descriptionUnreachable = "blockchain data service unreachable"
)

// ExplorerHandler implements ExplorerServiceServer.
type ExplorerHandler struct {
	blockinsight7000v1.UnimplementedExplorerServiceServer
	prober Prober
}

// NewExplorerHandler returns an ExplorerHandler instance.
func NewExplorerHandler(prober Prober) blockinsight7000v1.ExplorerServiceServer {
	return &ExplorerHandler{prober: prober}
}

// Health reports server health. The process stays healthy when the data service is down,
// the description tells which case applies.
func (h *ExplorerHandler) Health(ctx context.Context, _ *blockinsight7000v1.HealthRequest) (*blockinsight7000v1.HealthResponse, error) {
	description := descriptionReachable
	if !h.prober.Online(ctx) {
		description = descriptionUnreachable
	}
	return &blockinsight7000v1.HealthResponse{
		Status:      blockinsight7000v1.HealthStatus_HEALTH_STATUS_HEALTHY,
		Description: description,
	}, nil
}
