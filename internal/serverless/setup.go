package serverless

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/claimguard/internal/config"
	"github.com/Veraticus/claimguard/internal/llm"
	"github.com/Veraticus/claimguard/internal/model"
	"github.com/Veraticus/claimguard/internal/notify"
	"github.com/Veraticus/claimguard/internal/prediction"
)

// Build wires a handler from configuration. The returned sink must be closed
// when the process exits. The remote strategy stays in stub mode unless
// lambda.invoke_remote is set.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Handler, notify.Sink, error) {
	reg, err := model.LoadRegistry(cfg.Models.RegistryPath)
	if err != nil {
		return nil, nil, err
	}

	var client llm.Client
	if cfg.Lambda.InvokeRemote {
		client, err = llm.NewClient(ctx, llm.ConfigFrom(cfg.LLM))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create inference client: %w", err)
		}
	}

	dispatcher := prediction.NewDispatcher(reg, client, prediction.DefaultRand(), prediction.WithLogger(logger))
	sink := notify.New(cfg.Notify, logger, nil)
	return NewHandler(dispatcher, reg, sink, logger), sink, nil
}
