package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-calendar/core"
	"github.com/trezcool/masomo-calendar/core/user"
)

func TestRollbarLogger_Print(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST", TestMode: true})

	usr := user.User{ID: "u1", Username: "mwalimu"}
	extras := map[string]interface{}{"scope": "all-sessions", "op": "delete", "applied": 20}
	l.Error("session delete failed", errors.New("store unavailable"), extras, usr)

	assert.Equal(t,
		"[ERROR] session delete failed error=\"store unavailable\" applied=20 op=delete scope=all-sessions user=mwalimu\n",
		buf.String(),
	)
}

func TestRollbarLogger_Prepare(t *testing.T) {
	l := RollbarLogger{}
	usr := user.User{ID: "u1", Username: "mwalimu"}
	other := user.User{ID: "u2", Username: "mwanafunzi"}
	err := errors.New("boom")

	got := l.prepare("msg", []interface{}{err, usr, other})
	assert.Equal(t, []interface{}{"msg", err}, got, "users are not sent as args")
}
