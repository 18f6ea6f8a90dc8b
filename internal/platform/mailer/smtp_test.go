package mailer

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

// fakeSMTP accepts a single session and records the envelope and data.
type fakeSMTP struct {
	ln   net.Listener
	mu   sync.Mutex
	from string
	rcpt []string
	data string
	done chan struct{}
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	f := &fakeSMTP{ln: ln, done: make(chan struct{})}
	go f.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return f
}

func (f *fakeSMTP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) serve() {
	defer close(f.done)
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	r := bufio.NewReader(conn)
	w := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
	w("220 fake ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		cmd := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			w("250-fake")
			w("250 8BITMIME")
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			f.mu.Lock()
			f.from = line[len("MAIL FROM:"):]
			f.mu.Unlock()
			w("250 ok")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			f.mu.Lock()
			f.rcpt = append(f.rcpt, line[len("RCPT TO:"):])
			f.mu.Unlock()
			w("250 ok")
		case cmd == "DATA":
			w("354 go ahead")
			var b strings.Builder
			for {
				dl, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if dl == ".\r\n" {
					break
				}
				b.WriteString(dl)
			}
			f.mu.Lock()
			f.data = b.String()
			f.mu.Unlock()
			w("250 queued")
		case cmd == "QUIT":
			w("221 bye")
			return
		default:
			w("250 ok")
		}
	}
}

func TestSMTPMailerDeliversPlainText(t *testing.T) {
	srv := startFakeSMTP(t)
	m, err := NewSMTPMailer(logger.Nop(), SMTPConfig{
		Server:   "127.0.0.1",
		Port:     srv.port(),
		From:     "noreply@railsathi.test",
		FromName: "RailSathi",
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSMTPMailer: %v", err)
	}
	err = m.Send(context.Background(), Message{
		To:      []string{"ops@example.com"},
		Subject: "Complaint received for train number: 12345",
		Text:    "line one\nline two",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	<-srv.done

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if !strings.Contains(srv.from, "<noreply@railsathi.test>") {
		t.Fatalf("MAIL FROM: got=%q", srv.from)
	}
	if len(srv.rcpt) != 1 || !strings.Contains(srv.rcpt[0], "<ops@example.com>") {
		t.Fatalf("RCPT TO: got=%v", srv.rcpt)
	}
	if !strings.Contains(srv.data, "Subject: Complaint received for train number: 12345\r\n") {
		t.Fatalf("subject header missing: %q", srv.data)
	}
	if !strings.Contains(srv.data, `"RailSathi" <noreply@railsathi.test>`) {
		t.Fatalf("from header missing: %q", srv.data)
	}
	if !strings.Contains(srv.data, "Content-Transfer-Encoding: quoted-printable") {
		t.Fatalf("body encoding: %q", srv.data)
	}
	if !strings.Contains(srv.data, "line one\r\nline two") {
		t.Fatalf("body not CRLF normalized: %q", srv.data)
	}
}

func TestSMTPMessageFoldsLongDescription(t *testing.T) {
	m, err := NewSMTPMailer(logger.Nop(), SMTPConfig{Server: "127.0.0.1", From: "noreply@railsathi.test"})
	if err != nil {
		t.Fatalf("NewSMTPMailer: %v", err)
	}
	desc := strings.Repeat("coach is dirty ", 150)
	msg, err := m.(*smtpMailer).buildMessage(Message{
		To:      []string{"ops@example.com"},
		Subject: "Complaint received for train number: 12345",
		Text:    "Description: " + desc + "\nTeam RailSathi",
	})
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	longest := 0
	for _, line := range strings.Split(buf.String(), "\r\n") {
		if len(line) > longest {
			longest = len(line)
		}
	}
	if longest > 998 {
		t.Fatalf("longest line: want<=998 got=%d", longest)
	}
	if !strings.Contains(buf.String(), "Team RailSathi") {
		t.Fatalf("body lost its tail: %q", buf.String())
	}
}

func TestSMTPMailerRequiresStartTLSWhenConfigured(t *testing.T) {
	srv := startFakeSMTP(t)
	m, err := NewSMTPMailer(logger.Nop(), SMTPConfig{
		Server:   "127.0.0.1",
		Port:     srv.port(),
		From:     "noreply@railsathi.test",
		StartTLS: true,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSMTPMailer: %v", err)
	}
	err = m.Send(context.Background(), Message{To: []string{"ops@example.com"}, Subject: "s", Text: "b"})
	if err == nil {
		t.Fatalf("Send: want error when the server does not offer STARTTLS")
	}
}

func TestValidateRejectsBadRecipients(t *testing.T) {
	if err := validate(Message{Subject: "s"}); err == nil {
		t.Fatalf("validate: expected error for empty recipients")
	}
	if err := validate(Message{To: []string{"nobody"}, Subject: "s"}); err == nil {
		t.Fatalf("validate: expected error for address without @")
	}
	if err := NewLogMailer(logger.Nop()).Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "s"}); err != nil {
		t.Fatalf("log mailer: %v", err)
	}
}
