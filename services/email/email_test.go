package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	logsvc "github.com/trezcool/darasa/services/logger"
)

var (
	conf   *core.Config
	logger core.Logger
)

func TestMain(m *testing.M) {
	conf = &core.Config{AppName: "Darasa", FrontendBaseURL: "http://localhost:3000", Env: "TEST"}
	conf.SetDefaultFromEmail("Darasa <noreply@darasa.test>")

	l := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	l.Enable(false)
	logger = l

	core.ParseEmailTemplates(logger)
	os.Exit(m.Run())
}

func reportMessage(t *testing.T) *core.EmailMessage {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: "Jane", Address: "jane@darasa.test"}},
		Subject:      "Parents Report",
		TemplateName: "report",
		TemplateData: map[string]interface{}{"Title": "Parents Report", "GeneratedAt": "Mon, 02 Jan 2006", "Rows": 3},
	}
	require.NoError(t, msg.Attach(bytes.NewReader([]byte("PK\x03\x04")), "ParentReport.xlsx", "application/zip"))
	return msg
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	svc := NewConsoleServiceMock(conf, logger)

	noRecipient := &core.EmailMessage{Subject: "lost", BodyStr: "nobody reads this"}
	svc.SendMessages(reportMessage(t), noRecipient)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Please find attached the Parents Report")
	assert.Contains(t, sent[0].TextContent, "(3 rows)")
	assert.Contains(t, sent[0].HTMLContent, "<strong>Parents Report</strong>")
	assert.Equal(t, "ParentReport.xlsx", sent[0].Attachments[0].Filename)

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}

func Test_consoleService_format(t *testing.T) {
	svc := NewConsoleServiceMock(conf, logger)

	t.Run("plain", func(t *testing.T) {
		msg := &core.EmailMessage{To: []mail.Address{{Address: "a@darasa.test"}}, Subject: "Hi", BodyStr: "hello"}
		require.NoError(t, msg.Render(conf))
		body, err := svc.format(*msg)
		require.NoError(t, err)

		assert.Contains(t, body, "Subject: [Darasa] Hi\r\n")
		assert.Contains(t, body, "From: \"Darasa\" <noreply@darasa.test>\r\n")
		assert.Contains(t, body, "Content-Type: multipart/alternative; boundary=")
		assert.NotContains(t, body, "CC:")
		assert.NotContains(t, body, "text/html")
		assert.Contains(t, body, "hello")
	})

	t.Run("with attachment", func(t *testing.T) {
		msg := reportMessage(t)
		require.NoError(t, msg.Render(conf))
		body, err := svc.format(*msg)
		require.NoError(t, err)

		assert.Contains(t, body, "Content-Type: multipart/mixed; boundary=")
		assert.Contains(t, body, "Content-Disposition: attachment; filename=ParentReport.xlsx")
		assert.Contains(t, body, "Content-Transfer-Encoding: base64")
		assert.Contains(t, body, msg.Attachments[0].Content.String())
		assert.Equal(t, 1, strings.Count(body, "Content-Type: text/html"))
	})
}

func Test_sendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(conf, logger).(*sendgridService)

	msg := reportMessage(t)
	msg.Cc = []mail.Address{{Address: "cc@darasa.test"}}
	require.NoError(t, msg.Render(conf))

	m := svc.prepare(*msg)
	assert.Equal(t, "noreply@darasa.test", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Darasa] Parents Report", p.Subject)
	assert.Equal(t, "jane@darasa.test", p.To[0].Address)
	assert.Equal(t, "cc@darasa.test", p.CC[0].Address)

	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "text/html", m.Content[1].Type)

	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "ParentReport.xlsx", m.Attachments[0].Filename)
	assert.Equal(t, "application/zip", m.Attachments[0].Type)
	assert.Equal(t, "attachment", m.Attachments[0].Disposition)

	t.Run("no content", func(t *testing.T) {
		m := svc.prepare(core.EmailMessage{To: []mail.Address{{Address: "a@darasa.test"}}})
		require.Len(t, m.Content, 1)
		assert.Equal(t, " ", m.Content[0].Value)
	})
}
