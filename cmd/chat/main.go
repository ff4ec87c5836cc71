package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"roomchat/internal/client"
	"roomchat/internal/log"
	"roomchat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "", "display name to claim")
	logLevel := flag.String("log-level", "error", "log level")
	flag.Parse()

	if strings.TrimSpace(*user) == "" {
		return fmt.Errorf("-user is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(*logLevel)
	view := client.NewView(*user)

	var session *client.Session
	session = client.NewSession(client.Options{
		URL:    *addr,
		Logger: logger,
		OnEvent: func(ev proto.Outbound) {
			view.Apply(ev)
			render(view, session, *user, ev)
		},
		OnNotice: func(notice string) {
			fmt.Printf("* %s\n", notice)
		},
	})
	defer session.Close()

	if err := session.Join(ctx, *user); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	fmt.Printf("Connected to %s as %s. Type messages, /users for the roster, /quit to leave.\n", *addr, *user)

	notifier := client.NewTypingNotifier(
		func() { session.Typing(ctx) },
		func() { session.StopTyping(ctx) },
	)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch {
			case line == "/quit":
				return nil
			case line == "/users":
				fmt.Printf("online (%d): %s\n", view.Count(), strings.Join(view.Roster(), ", "))
			case strings.TrimSpace(line) != "":
				notifier.Input()
				session.SendMessage(ctx, line)
				notifier.Stop()
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func render(view *client.View, session *client.Session, self string, ev proto.Outbound) {
	switch ev.Type {
	case proto.TypeUserList:
		fmt.Printf("online (%d): %s\n", view.Count(), strings.Join(view.Roster(), ", "))
	case proto.TypeMessage:
		ts := time.UnixMilli(ev.Timestamp).Format("15:04")
		if ev.Kind == "system" {
			fmt.Printf("[%s] * %s\n", ts, ev.Message)
			return
		}
		name := ev.Username
		if name == self {
			name = "you"
		}
		fmt.Printf("[%s] %s: %s\n", ts, name, ev.Message)
	case proto.TypeUserJoined:
		fmt.Printf("* %s joined\n", ev.Username)
	case proto.TypeUserLeft:
		fmt.Printf("* %s left\n", ev.Username)
	case proto.TypeTyping, proto.TypeStopTyping:
		if names := view.TypingNames(); len(names) > 0 {
			fmt.Printf("* typing: %s\n", strings.Join(names, ", "))
		}
	case proto.TypeError:
		// Mid-session errors stay out of the transcript; only login
		// rejections are surfaced.
		if !session.InChat() {
			fmt.Printf("join failed: %s\n", ev.Message)
		}
	}
}
