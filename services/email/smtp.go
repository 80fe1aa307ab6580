package emailsvc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/mail"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"
	"github.com/pkg/errors"

	"github.com/trezcool/ada/core"
)

// smtpService sends emails through an SMTP relay.
type smtpService struct {
	addr       string
	auth       smtp.Auth
	from       mail.Address
	subjPrefix string
	logger     core.Logger
}

var _ core.EmailService = (*smtpService)(nil)

func NewSMTPService(conf core.EmailConfig, logger core.Logger) *smtpService {
	var auth smtp.Auth
	if conf.SMTPUsername != "" {
		auth = smtp.PlainAuth("", conf.SMTPUsername, conf.SMTPPassword, conf.SMTPHost)
	}
	return &smtpService{
		addr:       conf.SMTPHost + ":" + strconv.Itoa(conf.SMTPPort),
		auth:       auth,
		from:       core.Conf.DefaultFromEmail,
		subjPrefix: "[" + core.Conf.AppName + "] ",
		logger:     logger,
	}
}

func (svc smtpService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := msg.Render(); err != nil {
				svc.logger.Error(fmt.Sprintf("rendering email: %v", err), err)
				return
			}
			if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments()) {
				if err := svc.send(*msg); err != nil {
					svc.logger.Error(fmt.Sprintf("sending email: %v", err), err)
				}
			}
		}()
	}
}

func (svc smtpService) prepare(msg core.EmailMessage) (*email.Email, error) {
	e := email.NewEmail()
	e.From = svc.from.String()
	e.To = addresses(msg.To)
	e.Cc = addresses(msg.Cc)
	e.Bcc = addresses(msg.Bcc)
	e.Subject = svc.subjPrefix + msg.Subject
	e.Text = []byte(msg.TextContent)
	if msg.HTMLContent != "" {
		e.HTML = []byte(msg.HTMLContent)
	}

	for _, at := range msg.Attachments {
		// attachments are kept base64 encoded; the email package encodes them itself
		content, err := base64.StdEncoding.DecodeString(at.Content.String())
		if err != nil {
			return nil, errors.Wrap(err, "decoding attachment")
		}
		if _, err := e.Attach(bytes.NewReader(content), at.Filename, at.ContentType); err != nil {
			return nil, errors.Wrap(err, "attaching "+at.Filename)
		}
	}
	return e, nil
}

func (svc smtpService) send(msg core.EmailMessage) error {
	e, err := svc.prepare(msg)
	if err != nil {
		return err
	}
	return errors.Wrap(e.Send(svc.addr, svc.auth), "sending email")
}

func addresses(addrs []mail.Address) []string {
	res := make([]string, 0, len(addrs))
	for _, a := range addrs {
		res = append(res, a.String())
	}
	return res
}
