package emailsvc

import (
	"context"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

func TestConsoleService_Send(t *testing.T) {
	svc := NewConsoleServiceMock(core.NewTestConfig())
	to := mail.Address{Name: "Kim", Address: "kim@example.com"}

	err := svc.Send(context.Background(),
		&core.EmailMessage{To: []mail.Address{to}, Subject: "hi", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{to}, Subject: "empty"},
	)
	require.NoError(t, err)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "hi", sent[0].Subject)
	assert.Equal(t, "hello", sent[0].TextContent)

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}

func TestConsoleService_UnknownTemplate(t *testing.T) {
	svc := NewConsoleServiceMock(core.NewTestConfig())
	msg := core.NewEmailMessage(mail.Address{Address: "kim@example.com"}, "hi", "does_not_exist", nil)

	assert.Error(t, svc.Send(context.Background(), msg))
	assert.Empty(t, svc.SentMessages())
}
