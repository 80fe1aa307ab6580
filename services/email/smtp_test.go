package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ada/core"
)

func TestSMTPService_prepare(t *testing.T) {
	svc := NewSMTPService(core.EmailConfig{SMTPHost: "localhost", SMTPPort: 2525}, nil)
	assert.Equal(t, "localhost:2525", svc.addr)
	assert.Nil(t, svc.auth)

	msg := core.EmailMessage{
		To:          []mail.Address{{Name: "Admin", Address: "admin@school.test"}},
		Subject:     "Overdue fees",
		TextContent: "2 fees are overdue",
	}
	require.NoError(t, msg.Attach(strings.NewReader("a,b\n1,2\n"), "fees.csv", "text/csv"))

	e, err := svc.prepare(msg)
	require.NoError(t, err)
	assert.Equal(t, []string{`"Admin" <admin@school.test>`}, e.To)
	assert.True(t, strings.HasSuffix(e.Subject, "Overdue fees"))
	assert.Equal(t, "2 fees are overdue", string(e.Text))
	assert.Empty(t, e.HTML)
	require.Len(t, e.Attachments, 1)
	assert.Equal(t, "fees.csv", e.Attachments[0].Filename)
	assert.True(t, bytes.Equal([]byte("a,b\n1,2\n"), e.Attachments[0].Content))
}

func TestConsoleServiceMock_records(t *testing.T) {
	ResetSent()
	svc := NewConsoleServiceMock()
	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{{Address: "a@school.test"}}, Subject: "one", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"},
	)
	sent := Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "one", sent[0].Subject)
	assert.Equal(t, "hello", sent[0].TextContent)
}
