package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }

func TestCredentialExpiry(t *testing.T) {
	tests := []struct {
		name             string
		credential       Credential
		wantExpired      bool
		wantWithinMargin bool
	}{
		{
			name:             "token longe de expirar",
			credential:       Credential{ExpiresAt: timePtr(now.Add(1 * time.Hour))},
			wantExpired:      false,
			wantWithinMargin: false,
		},
		{
			name:             "token dentro da margem de segurança",
			credential:       Credential{ExpiresAt: timePtr(now.Add(30 * time.Second))},
			wantExpired:      false,
			wantWithinMargin: true,
		},
		{
			name:             "token expirando exatamente na borda da margem",
			credential:       Credential{ExpiresAt: timePtr(now.Add(60 * time.Second))},
			wantExpired:      false,
			wantWithinMargin: true,
		},
		{
			name:             "token já expirado",
			credential:       Credential{ExpiresAt: timePtr(now.Add(-1 * time.Minute))},
			wantExpired:      true,
			wantWithinMargin: true,
		},
		{
			name:             "token sem expiração declarada nunca expira",
			credential:       Credential{},
			wantExpired:      false,
			wantWithinMargin: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantExpired, tt.credential.IsExpired(now))
			assert.Equal(t, tt.wantWithinMargin, tt.credential.ExpiresWithin(now, 60*time.Second))
		})
	}
}

func TestCredentialRefreshability(t *testing.T) {
	expired := timePtr(now.Add(-1 * time.Minute))

	refreshable := Credential{ExpiresAt: expired, RefreshToken: strPtr("rt-1")}
	assert.True(t, refreshable.HasRefreshToken())
	assert.True(t, refreshable.IsRefreshableExpired(now))
	assert.False(t, refreshable.IsTerminalExpired(now))

	terminal := Credential{ExpiresAt: expired}
	assert.False(t, terminal.HasRefreshToken())
	assert.False(t, terminal.IsRefreshableExpired(now))
	assert.True(t, terminal.IsTerminalExpired(now))

	// Refresh token presente mas vazio conta como ausente
	blank := Credential{ExpiresAt: expired, RefreshToken: strPtr("")}
	assert.False(t, blank.HasRefreshToken())
	assert.True(t, blank.IsTerminalExpired(now))
}

func TestParsePlatform(t *testing.T) {
	for _, p := range AllPlatforms {
		parsed, err := ParsePlatform(string(p))
		assert.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := ParsePlatform("orkut")
	assert.Error(t, err)

	// A comparação é sensível a maiúsculas: o valor canônico é minúsculo
	_, err = ParsePlatform("GOOGLE")
	assert.Error(t, err)
}

func TestParseSyncType(t *testing.T) {
	full, ok := ParseSyncType("FULL")
	assert.True(t, ok)
	assert.Equal(t, SyncTypeFull, full)

	incremental, ok := ParseSyncType("incremental")
	assert.True(t, ok)
	assert.Equal(t, SyncTypeIncremental, incremental)

	_, ok = ParseSyncType("TURBO")
	assert.False(t, ok)
}
