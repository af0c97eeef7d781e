package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/comigor/jokebot-go/internal/chat"
	"github.com/comigor/jokebot-go/internal/config"
	"github.com/comigor/jokebot-go/internal/logger"
)

const helpText = "type a message and press enter · /reset starts over · /history reprints · /quit exits"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	// Logs go to stderr so they do not interleave with the conversation.
	logger.Setup(cfg.Log.Level, "text", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := chat.NewSession(
		chat.NewHTTPRelay(cfg.Client.RelayURL, cfg.Client.Timeout),
		nil,
		chat.Options{DropStaleReplies: cfg.Client.DropStaleReplies},
	)

	out := newRenderer(os.Stdout)
	out.Status("relay: %s", cfg.Client.RelayURL)
	out.Status(helpText)
	out.Update(session.History())
	session.Store().Listen(out.Update)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		var line string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = l
		}

		switch parseCommand(line) {
		case cmdQuit:
			stop()
			return
		case cmdReset:
			session.Reset()
			continue
		case cmdHistory:
			out.All(session.History())
			continue
		case cmdHelp:
			out.Status(helpText)
			continue
		case cmdUnknown:
			out.Status("unknown command %q", strings.Fields(line)[0])
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if session.InFlight() {
			out.Status("still waiting for the last reply")
			continue
		}

		inflight.Add(1)
		go func(text string) {
			defer inflight.Done()
			if _, ok := session.Send(ctx, text); !ok {
				out.Status("still waiting for the last reply")
			}
		}(line)
	}
}
