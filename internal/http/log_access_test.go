package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newReq(path, token string) *http.Request {
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))
	return logs
}

func TestDeniedAdminAccessIsLogged(t *testing.T) {
	logs := observe(t)
	a := newTestApp(t)
	a.get(t, "/admin/users", "guess")

	entries := logs.FilterMessage("access.denied.admin").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "security", fields["kind"])
	assert.Equal(t, "/admin/users", fields["path"])
	assert.Equal(t, true, fields["has_token"])
	assert.NotEmpty(t, fields["req_id"])
	for _, v := range fields {
		assert.NotEqual(t, "guess", v, "token must not be logged")
	}
}

func TestAdminViewIsAudited(t *testing.T) {
	logs := observe(t)
	a := newTestApp(t)
	a.get(t, "/admin/users", adminToken)
	assert.Equal(t, 1, logs.FilterMessage("admin.users.view").Len())
}

func TestInvalidProductIDIsLogged(t *testing.T) {
	logs := observe(t)
	a := newTestApp(t)
	a.get(t, "/api/v1/products/abc", "")
	entries := logs.FilterMessage("validation.fail").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "product", entries[0].ContextMap()["field"])
}
