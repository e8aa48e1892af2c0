package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/notification-center/internal/model"
)

func TestResultRemote(t *testing.T) {
	t.Parallel()

	m := New(*model.DefaultAppConfig(), 80, 24)
	m.values.mode = model.BackendRemote
	m.values.memberID = " m1 "
	m.values.baseURL = "https://backend.example.co/ "
	m.values.apiKey = "secret"

	got := m.result()
	assert.Equal(t, "m1", got.Config.Member.ID)
	assert.Equal(t, "https://backend.example.co", got.Config.Backend.BaseURL)
	assert.Equal(t, "secret", got.APIKey)
	assert.False(t, got.Config.NeedsOnboarding())
}

func TestResultLocal(t *testing.T) {
	t.Parallel()

	m := New(*model.DefaultAppConfig(), 80, 24)
	m.values.mode = model.BackendLocal
	m.values.memberID = "m1"
	m.values.localPath = "/tmp/n.db"
	m.values.apiKey = "ignored"

	got := m.result()
	assert.Equal(t, model.BackendLocal, got.Config.Backend.Mode)
	assert.Equal(t, "/tmp/n.db", got.Config.Backend.LocalPath)
	assert.Empty(t, got.APIKey)
}

func TestValidators(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateURL("https://x.example.co"))
	assert.Error(t, validateURL("x.example.co"))
	assert.Error(t, validateURL(""))
	assert.Error(t, validateRequired("Member ID")("  "))
	assert.NoError(t, validateRequired("Member ID")("m1"))
}
