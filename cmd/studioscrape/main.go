package main

import (
	"studioscrape/cmd/studioscrape/commands"
	"studioscrape/lib/serviceutil"
	"studioscrape/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	instance, err := telemetry.SetupFromEnv(ctx, "studioscrape")
	if err != nil {
		serviceutil.Fatal("failed to initialize telemetry", err)
	}
	defer instance.Shutdown(ctx)

	commands.ExecuteContext(ctx)
}
