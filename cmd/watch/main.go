// Command watch follows one sync channel from the terminal. By default it dials
// the backend itself; with -nats it tails the live events a running server
// republishes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chatpulse/internal/config"
	"chatpulse/internal/pkg/logger"
	"chatpulse/pkg/events"
	pktNats "chatpulse/pkg/nats"
	"chatpulse/pkg/realtime"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	identifier := flag.String("id", "", "identifier to watch (required)")
	baseURL := flag.String("base", cfg.Sync.BaseURL, "sync backend base URL")
	natsURL := flag.String("nats", "", "tail live events from this NATS server instead of dialing")
	logPath := flag.String("log", cfg.App.RealtimeLogFilePath, "realtime log file")
	flag.Parse()

	if *identifier == "" {
		color.Red("-id is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *natsURL != "" {
		if err := tailNats(ctx, *natsURL, *identifier); err != nil {
			color.Red("%v", err)
			os.Exit(1)
		}
		return
	}

	rtLog := logger.NewIsolatedLogger(*logPath)
	defer rtLog.Sync()

	syncCfg := cfg.Sync
	syncCfg.BaseURL = *baseURL
	client := realtime.NewClient(syncCfg.ClientConfig(), nil,
		realtime.WithLogger(rtLog),
		realtime.WithStateObserver(printState),
		realtime.WithMessageObserver(printMessage),
	)

	color.Cyan("Watching %s via %s\n", *identifier, *baseURL)
	if err := client.Connect(*identifier); err != nil {
		color.Red("Connect failed: %v", err)
		os.Exit(1)
	}

	<-ctx.Done()
	client.Disconnect()
}

func printState(identifier string, state realtime.ConnectionState, err error) {
	line := fmt.Sprintf("[%s] %s", identifier, state)
	switch state.Phase {
	case realtime.PhaseConnected:
		color.Green("%s", line)
	case realtime.PhaseConnecting, realtime.PhaseReconnecting:
		color.Yellow("%s", line)
	case realtime.PhaseGaveUp:
		color.Red("%s: %v", line, err)
	default:
		if err != nil {
			color.Red("%s: %v", line, err)
			return
		}
		fmt.Println(line)
	}
}

func printMessage(identifier string, msg realtime.Message, status realtime.GlobalSyncStatus) {
	op := status.Operation()
	if op == "" {
		op = "-"
	}
	color.Cyan("[%s] %s  active=%t progress=%.0f%% op=%s", identifier, msg.Type, status.Active, status.Progress, op)
}

func tailNats(ctx context.Context, url, identifier string) error {
	sub, err := pktNats.NewSubscriber(url)
	if err != nil {
		return err
	}
	defer sub.Close()

	err = sub.Subscribe(ctx, pktNats.SubjectPrefix+".>", "", func(_ context.Context, e events.LiveEvent) error {
		if e.Identifier != identifier {
			return nil
		}
		switch e.Type {
		case events.TypeSyncState:
			color.Yellow("[%s] %s %v", e.Identifier, e.Type, e.Data)
		case events.TypePlanUpdated:
			color.Green("[%s] %s %v", e.Identifier, e.Type, e.Data["id"])
		default:
			color.Cyan("[%s] %s %v", e.Identifier, e.Type, e.Data)
		}
		return nil
	})
	if err != nil {
		return err
	}

	color.Cyan("Tailing %s.> for %s\n", pktNats.SubjectPrefix, identifier)
	<-ctx.Done()
	return nil
}
