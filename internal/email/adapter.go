package email

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"os/exec"
	"strings"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/modules"
)

// Adapter implements modules.Mailer by building an RFC 5322
// multipart/alternative message and piping it to the configured sendmail
// subprocess's standard input (SPEC_FULL.md §6).
type Adapter struct {
	Config  Config
	Timeout time.Duration
	Clock   domain.Clock
}

func (a *Adapter) timeout() time.Duration {
	if a.Timeout <= 0 {
		return 5 * time.Second
	}
	return a.Timeout
}

func (a *Adapter) now() time.Time {
	if a.Clock != nil {
		return a.Clock.Now()
	}
	return time.Now().UTC()
}

// Send implements modules.Mailer.
func (a *Adapter) Send(ctx context.Context, msg modules.EmailMessage) error {
	raw, err := a.build(msg)
	if err != nil {
		return domain.WrapError(domain.ErrExternalIO, "build email message", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()
	bin, args := a.Config.Command[0], a.Config.Command[1:]
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(raw)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return domain.WrapError(domain.ErrExternalIO, "sendmail: "+detail, err)
	}
	return nil
}

// build renders msg into a full RFC 5322 message: the header block
// followed by a multipart/alternative body with one quoted-printable part
// per non-empty of Text/HTML.
func (a *Adapter) build(msg modules.EmailMessage) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if msg.Text != "" {
		if err := writeQuotedPrintablePart(mw, "text/plain; charset=UTF-8", msg.Text); err != nil {
			return nil, err
		}
	}
	if msg.HTML != "" {
		if err := writeQuotedPrintablePart(mw, "text/html; charset=UTF-8", msg.HTML); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var header bytes.Buffer
	fmt.Fprintf(&header, "From: %s\r\n", a.Config.From)
	fmt.Fprintf(&header, "Return-Path: %s\r\n", a.Config.From)
	fmt.Fprintf(&header, "Date: %s\r\n", a.now().Format(time.RFC1123Z))
	fmt.Fprintf(&header, "To: %s\r\n", strings.Join(a.Config.To, ","))
	fmt.Fprintf(&header, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	header.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&header, "Content-Type: multipart/alternative; boundary=%s\r\n", mw.Boundary())
	header.WriteString("\r\n")

	return append(header.Bytes(), body.Bytes()...), nil
}

func writeQuotedPrintablePart(mw *multipart.Writer, contentType, text string) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "QUOTED-PRINTABLE")
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(text)); err != nil {
		return err
	}
	return qp.Close()
}
