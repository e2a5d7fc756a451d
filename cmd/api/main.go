// Prioritymail serves prioritized mailbox listings over HTTP and MCP.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"prioritymail/internal/classify"
	"prioritymail/internal/config"
	"prioritymail/internal/handler"
	"prioritymail/internal/retrieve"
	"prioritymail/internal/source/email"
	"prioritymail/internal/source/gmail"
	"prioritymail/internal/tool"
)

func main() {
	envFileParam := flag.String("env-file", "", "Path to env file")
	enableStdio := flag.Bool("stdio", false, "Enable stdio transport for MCP (disables stdout logging)")
	logFile := flag.String("log-file", "", "Path to log file (only used with stdio transport, otherwise logs to stdout)")

	flag.Parse()

	persistLogs := setupLogger(enableStdio, logFile)
	defer persistLogs()

	cfg, err := config.Load(*envFileParam)
	if err != nil {
		panic(fmt.Errorf("config.Load failed: %w", err))
	}

	retriever := newRetriever(cfg)

	app := fiber.New()
	handler.SetupRoutes(app, handler.NewMailHandler(retriever))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	stopHTTP, errHTTPCh := serveHTTP(app, cfg.Server.HTTPAddr)
	defer stopHTTP()

	var errStdioCh <-chan error
	if *enableStdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(tool.NewServer(retriever))
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		log.Println("Error http server", err)
	case err := <-errStdioCh:
		log.Println("Error stdio", err)
	case <-shutdown:
		log.Println("Shutdown signal received")
	}
}

func newRetriever(cfg *config.Config) *retrieve.Retriever {
	classifier := classify.New(classify.DefaultRuleset())

	newGmail := func(accessToken string) retrieve.GmailSource {
		return gmail.NewClient(accessToken)
	}

	var mailbox retrieve.MailboxSource
	imapCfg := email.Config{
		Host:        cfg.IMAP.Host,
		Port:        cfg.IMAP.Port,
		Username:    cfg.IMAP.User,
		Password:    cfg.IMAP.Password,
		TLS:         cfg.IMAP.TLS,
		AuthTimeout: cfg.IMAP.AuthTimeout,
	}
	if imapCfg.Configured() {
		mailbox = email.NewClient(imapCfg)
	} else {
		log.Println("IMAP account not configured, /api/mails disabled")
	}

	return retrieve.NewRetriever(classifier, newGmail, mailbox)
}

func serveHTTP(app *fiber.App, addr string) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		log.Println("Starting http server on", addr)

		if err := app.Listen(addr); err != nil {
			err = fmt.Errorf("app.Listen failed: %w", err)
			log.Println(err)
			errHTTPCh <- err
		}
	}()

	return func() {
		if err := app.ShutdownWithTimeout(3 * time.Second); err != nil {
			log.Println(fmt.Errorf("app.Shutdown failed: %w", err))
		}

		<-errHTTPCh
		log.Println("HTTP server stopped")
	}, errHTTPCh
}

func serveStdio(srv *mcp.Server) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		log.Println("Starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			err = fmt.Errorf("srv.Run failed: %w", err)
			errStdioCh <- err
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		log.Println("Stdio transport stopped")
	}, errStdioCh
}

func setupLogger(enableStdio *bool, logFile *string) func() {
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open log file: %w", err))
		}
		log.SetOutput(f)

		return func() {
			if err := f.Close(); err != nil {
				log.Println(fmt.Errorf("f.Close failed: %w", err))
			}
		}
	}

	if *enableStdio {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stdout)
	}

	return func() {}
}
