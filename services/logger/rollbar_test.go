package logsvc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(&buf, &core.Config{AppName: "Profe Web", Env: "TEST"})

	usr := user.User{ID: "u1", Email: "ana@example.com"}
	logger.Error("deleting course", errors.New("boom"), usr, map[string]interface{}{"course_id": 3})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "deleting course", line["message"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "ana@example.com", line["user_email"])
	assert.EqualValues(t, 3, line["course_id"])
	assert.Equal(t, "Profe Web", line["app"])
}

func TestRollbarLogger_testModeLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(&buf, &core.Config{TestMode: true})

	logger.Info("not shown")
	assert.Zero(t, buf.Len())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
