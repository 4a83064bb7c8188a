package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "walletconn.log")

	l, err := New(path, "debug")
	require.NoError(t, err)
	l.WithField("component", "test").Debug("hello")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "component=test")
	assert.Contains(t, out, "session=")
}

func TestNew_SessionIsUUID(t *testing.T) {
	l, err := New("", "info")
	require.NoError(t, err)
	session, ok := l.Data["session"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(session)
	assert.NoError(t, err)

	other, err := New("", "info")
	require.NoError(t, err)
	assert.NotEqual(t, session, other.Data["session"])
}

func TestNew_Level(t *testing.T) {
	l, err := New("", "warn")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, l.Logger.GetLevel())

	_, err = New("", "loud")
	assert.Error(t, err)
}
