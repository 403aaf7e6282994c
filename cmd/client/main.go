package main

import (
	"chat-poll/infrastructure/http/client"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/urfave/cli/v3"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// Ctrl+C stops the polling loop
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:      "chat-client",
		Usage:     "Talk to a chat-poll server",
		UsageText: "chat-client [global options] command [command options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "chat server address",
				Sources: cli.EnvVars("CHAT_SERVER_ADDR"),
				Value:   "localhost:8080",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (DEBUG, INFO, WARN, ERROR)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "INFO",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "HTTP request timeout",
				Value: 5 * time.Second,
			},
		},
		Commands: []*cli.Command{
			joinCommand(),
			sendCommand(),
			whoCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

func newClient(c *cli.Command) *client.ChatClient {
	return client.NewChatClient(c.String("server"), c.Duration("timeout"))
}

func joinCommand() *cli.Command {
	return &cli.Command{
		Name:      "join",
		Usage:     "Register, keep the session alive and print incoming messages",
		UsageText: "chat-client join --name alice",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "participant name", Sources: cli.EnvVars("CHAT_NAME"), Required: true},
			&cli.DurationFlag{Name: "heartbeat", Usage: "status refresh period", Value: 5 * time.Second},
			&cli.DurationFlag{Name: "poll", Usage: "message polling period", Value: 3 * time.Second},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log := logs.GetLoggerFromString(c.String("log-level"))
			return join(ctx, log, newClient(c), c.String("name"), c.Duration("heartbeat"), c.Duration("poll"))
		},
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Post a message, private when --to names a participant",
		UsageText: "chat-client send --name alice [--to bob] text...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "sender name", Sources: cli.EnvVars("CHAT_NAME"), Required: true},
			&cli.StringFlag{Name: "to", Usage: "recipient, all for everyone", Value: "all"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" {
				return fmt.Errorf("nothing to send")
			}
			return newClient(c).Send(ctx, c.String("name"), c.String("to"), text)
		},
	}
}

func whoCommand() *cli.Command {
	return &cli.Command{
		Name:  "who",
		Usage: "List participants currently in the room",
		Action: func(ctx context.Context, c *cli.Command) error {
			participants, err := newClient(c).Participants(ctx)
			if err != nil {
				return err
			}
			for _, p := range participants {
				seen := time.UnixMilli(p.LastStatus).Format(time.TimeOnly)
				fmt.Printf("%s  last seen %s\n", color.Green.Render(p.Name), seen)
			}
			return nil
		},
	}
}

// join registers name, then heartbeats and polls until ctx is canceled.
// A name still registered from a previous session is reused.
func join(ctx context.Context, log *slog.Logger, c *client.ChatClient, name string, heartbeat, poll time.Duration) error {
	if err := c.Register(ctx, name); err != nil {
		var statusErr *client.StatusError
		if !errors.As(err, &statusErr) || statusErr.Code != http.StatusConflict {
			return fmt.Errorf("register %s: %w", name, err)
		}
		log.Info("Name already registered, resuming session", "name", name)
	}
	log.Info(fmt.Sprintf(">>> Joined as %s (Ctrl+C to quit)", name))

	heartbeatTicker := time.NewTicker(heartbeat)
	defer heartbeatTicker.Stop()
	pollTicker := time.NewTicker(poll)
	defer pollTicker.Stop()

	printed := 0
	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping client...")
			return nil
		case <-heartbeatTicker.C:
			if err := c.Heartbeat(ctx, name); err != nil && ctx.Err() == nil {
				log.Warn("Heartbeat failed", "error", err)
			}
		case <-pollTicker.C:
			messages, err := c.Messages(ctx, name, 0)
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("Polling failed", "error", err)
				}
				continue
			}
			printed = printNew(messages, printed)
		}
	}
}

// printNew prints, oldest first, the messages not printed yet.
// messages are newest first and the visible log only grows.
func printNew(messages []client.Message, printed int) int {
	fresh := len(messages) - printed
	for i := fresh - 1; i >= 0; i-- {
		fmt.Println(render(messages[i]))
	}
	return max(len(messages), printed)
}

func render(m client.Message) string {
	switch m.Type {
	case "status":
		return color.Gray.Sprintf("%s %s %s", m.Time, m.From, m.Text)
	case "private_message":
		return color.Magenta.Sprintf("%s %s -> %s: %s", m.Time, m.From, m.To, m.Text)
	default:
		return fmt.Sprintf("%s %s: %s", m.Time, color.New(color.FgGreen, color.OpBold).Render(m.From), m.Text)
	}
}
