// Package email adapts an IMAP mailbox as a message source.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	gomail "github.com/emersion/go-message/mail"

	"prioritymail/internal/mail"
)

// Config holds the IMAP connection parameters.
type Config struct {
	Host        string
	Port        string
	Username    string
	Password    string
	TLS         bool
	AuthTimeout time.Duration
}

// Configured reports whether the account is usable: a listing against
// an unconfigured account is a request-validation failure, not a
// connection failure.
func (c Config) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// NewClient creates an IMAP client for the configured account.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Client connects to an IMAP server per retrieval. Each retrieval owns
// its own session and releases it on completion or failure.
type Client struct {
	cfg Config
}

// FetchMailbox selects INBOX, searches for messages matching the
// OR-combined keywords (all messages when none are given) and returns
// the most recent limit messages as canonical records. When withBody
// is set the message bodies are fetched in the same pass and parsed
// into text and HTML content.
func (c *Client) FetchMailbox(ctx context.Context, keywords []string, limit int, withBody bool) ([]mail.Record, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	searchData, err := client.UIDSearch(searchCriteria(keywords), nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	fetchOpts := &imap.FetchOptions{
		Envelope: true,
		UID:      true,
	}

	var bodySection *imap.FetchItemBodySection
	if withBody {
		bodySection = &imap.FetchItemBodySection{Peek: true}
		fetchOpts.BodySection = []*imap.FetchItemBodySection{bodySection}
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), fetchOpts)
	defer fetchCmd.Close()

	var records []mail.Record
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		rec := recordFromBuffer(buf)
		if withBody {
			if raw := buf.FindBodySection(bodySection); raw != nil {
				rec.BodyText, rec.BodyHTML = parseMIMEBody(raw)
			}
		}
		records = append(records, rec)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	return records, nil
}

// connect dials the IMAP server, honoring the configured auth timeout,
// and authenticates.
func (c *Client) connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.cfg.Host + ":" + c.cfg.Port

	var client *imapclient.Client
	var err error

	if c.cfg.TLS {
		dialer := &net.Dialer{Timeout: c.cfg.AuthTimeout}
		var conn *tls.Conn
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, nil)
		if err == nil {
			client = imapclient.New(conn, nil)
		}
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.cfg.Username, c.cfg.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authentication failed for %s: %w", c.cfg.Username, err)
	}

	return client, nil
}

// searchCriteria builds an IMAP search for the OR-combination of the
// keywords. No keywords means an unrestricted (ALL) search.
func searchCriteria(keywords []string) *imap.SearchCriteria {
	var combined *imap.SearchCriteria
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		next := &imap.SearchCriteria{Text: []string{k}}
		if combined == nil {
			combined = next
			continue
		}
		combined = &imap.SearchCriteria{
			Or: [][2]imap.SearchCriteria{{*combined, *next}},
		}
	}

	if combined == nil {
		return &imap.SearchCriteria{}
	}
	return combined
}

// recordFromBuffer maps a fetched message to the canonical record.
func recordFromBuffer(buf *imapclient.FetchMessageBuffer) mail.Record {
	rec := mail.Record{
		ID: fmt.Sprintf("%d", uint32(buf.UID)),
	}

	if buf.Envelope == nil {
		return rec
	}

	rec.Subject = buf.Envelope.Subject
	if !buf.Envelope.Date.IsZero() {
		rec.Date = buf.Envelope.Date.Format(time.RFC1123Z)
	}

	if len(buf.Envelope.From) > 0 {
		rec.From = formatAddress(buf.Envelope.From[0])
	}

	var to []string
	for _, addr := range buf.Envelope.To {
		to = append(to, addr.Addr())
	}
	rec.To = strings.Join(to, ", ")

	return rec
}

func formatAddress(addr imap.Address) string {
	if addr.Name != "" {
		return fmt.Sprintf("%s <%s>", addr.Name, addr.Addr())
	}
	return addr.Addr()
}

// parseMIMEBody parses a raw RFC 2822 message and extracts the
// text/plain and text/html bodies. Parts that fail to read are
// skipped; a message that cannot be parsed at all is treated as plain
// text.
func parseMIMEBody(raw []byte) (textBody, htmlBody string) {
	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw), ""
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := header.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			textBody += string(body)
		case strings.HasPrefix(contentType, "text/html"):
			htmlBody += string(body)
		}
	}

	return textBody, htmlBody
}
