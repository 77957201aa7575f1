package main

import (
	"context"
	"log/slog"

	"github.com/ABCurado/eu-parliment-votes-sdk/cmd/europarl-cli/commands"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/telemetry"
)

func main() {
	ctx := context.Background()

	tel, err := telemetry.SetupFromEnv(ctx, "europarl-cli")
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	defer tel.Shutdown(ctx)

	commands.ExecuteContext(ctx)
}
