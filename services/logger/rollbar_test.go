package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

func TestRollbarLogger_Print(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), core.NewTestConfig())

	actor := core.Actor{EmployeeID: 3, Account: "kim", AcademyID: 1, Role: core.RoleAdmin}
	l.Warn("mail failed", errors.New("smtp down"), actor)

	out := buf.String()
	assert.Contains(t, out, "mail failed\n")
	assert.Contains(t, out, "smtp down")
	assert.NotContains(t, out, "kim")
}
