package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ai-notecanvas/internal/config"
	"ai-notecanvas/pkg/events"
	pktNats "ai-notecanvas/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	tailType      string
	tailFromStart bool
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow canvas events mirrored to NATS",
	Long: `Prints graph events from the NOTECANVAS JetStream stream as they
happen. Requires NATS_URL and a server running with the mirror enabled.`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailType, "type", "t", "", "only show one event type, e.g. NODE_UPDATED")
	tailCmd.Flags().BoolVar(&tailFromStart, "from-start", false, "replay the retained history first")
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		return errors.New("NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	color.Cyan("Following %s (Ctrl+C to stop)", pktNats.StreamName)
	return sub.Follow(ctx, tailType, tailFromStart, printEnvelope)
}

func printEnvelope(ctx context.Context, env events.Envelope) {
	data, _ := json.Marshal(env.Data)
	fmt.Printf("%s %s %s\n",
		color.HiBlackString("#%d %s", env.Seq, env.OccurredAt.Format("15:04:05.000")),
		typeColor(env.Type).Sprint(env.Type),
		string(data),
	)
}

func typeColor(eventType string) *color.Color {
	switch eventType {
	case events.NodeDeleted, events.EdgeDeleted, events.ChatCleared, events.ConnectFailed:
		return color.New(color.FgRed)
	case events.NodeCreated, events.EdgeCreated, events.ConnectCompleted:
		return color.New(color.FgGreen)
	case events.ConnectStarted:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgBlue)
	}
}
