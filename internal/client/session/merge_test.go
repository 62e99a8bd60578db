package session

import (
	"testing"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestMergeUser(t *testing.T) {
	ident := models.Identity{UID: "u1", Email: "a@x.com", DisplayName: "Google Name", PhotoURL: "g.png"}

	tests := []struct {
		name    string
		ident   models.Identity
		backend *models.User
		want    models.User
	}{
		{
			name:    "backend wins for name and avatar",
			ident:   ident,
			backend: &models.User{ID: "other", Email: "b@x.com", Name: "Backend", AvatarURL: "b.png", Wallet: 40, Semester: "3", Branch: "CSE"},
			want:    models.User{ID: "u1", Email: "a@x.com", Name: "Backend", AvatarURL: "b.png", Wallet: 40, Semester: "3", Branch: "CSE"},
		},
		{
			name:    "identity fills blanks",
			ident:   ident,
			backend: &models.User{Wallet: 100},
			want:    models.User{ID: "u1", Email: "a@x.com", Name: "Google Name", AvatarURL: "g.png", Wallet: 100},
		},
		{
			name:    "nil backend",
			ident:   ident,
			backend: nil,
			want:    models.User{ID: "u1", Email: "a@x.com", Name: "Google Name", AvatarURL: "g.png"},
		},
		{
			name:    "backend id used when identity has none",
			ident:   models.Identity{},
			backend: &models.User{ID: "b1", Email: "b@x.com"},
			want:    models.User{ID: "b1", Email: "b@x.com"},
		},
		{
			name:    "admin gets operator avatar",
			ident:   ident,
			backend: &models.User{Name: "Root", AvatarURL: "b.png", IsAdmin: true},
			want:    models.User{ID: "u1", Email: "a@x.com", Name: "Root", AvatarURL: "op.png", IsAdmin: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeUser(tt.ident, tt.backend, "op.png")
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestMergeUser_DoesNotAliasBackendStats(t *testing.T) {
	backend := &models.User{Stats: &models.UserStats{Uploads: 1}}
	got := MergeUser(models.Identity{UID: "u1"}, backend, "")
	got.Stats.Uploads = 9
	assert.Equal(t, 1, backend.Stats.Uploads)
}

func TestMergeProfileUpdate(t *testing.T) {
	prev := &models.User{ID: "u1", Email: "a@x.com", Name: "Alice", AvatarURL: "old.png", Wallet: 100, Semester: "1", Branch: "CSE"}

	tests := []struct {
		name  string
		patch *models.UserPatch
		live  string
		want  models.User
	}{
		{
			name:  "nil patch keeps prev",
			patch: nil,
			want:  *prev,
		},
		{
			name:  "sent fields override",
			patch: &models.UserPatch{Name: ptr("Al"), Semester: ptr("4"), Branch: ptr("ECE"), Wallet: ptr(80)},
			want:  models.User{ID: "u1", Email: "a@x.com", Name: "Al", AvatarURL: "old.png", Wallet: 80, Semester: "4", Branch: "ECE"},
		},
		{
			name:  "empty name is ignored",
			patch: &models.UserPatch{Name: ptr("")},
			want:  *prev,
		},
		{
			name:  "live photo beats response avatar",
			patch: &models.UserPatch{AvatarURL: ptr("resp.png")},
			live:  "live.png",
			want:  models.User{ID: "u1", Email: "a@x.com", Name: "Alice", AvatarURL: "live.png", Wallet: 100, Semester: "1", Branch: "CSE"},
		},
		{
			name:  "response avatar beats prev",
			patch: &models.UserPatch{AvatarURL: ptr("resp.png")},
			want:  models.User{ID: "u1", Email: "a@x.com", Name: "Alice", AvatarURL: "resp.png", Wallet: 100, Semester: "1", Branch: "CSE"},
		},
		{
			name:  "admin flag forces operator avatar",
			patch: &models.UserPatch{IsAdmin: ptr(true)},
			live:  "live.png",
			want:  models.User{ID: "u1", Email: "a@x.com", Name: "Alice", AvatarURL: "op.png", IsAdmin: true, Wallet: 100, Semester: "1", Branch: "CSE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeProfileUpdate(prev, tt.patch, tt.live, "op.png")
			assert.Equal(t, tt.want, *got)
		})
	}
	assert.Equal(t, "Alice", prev.Name, "prev must not be mutated")
}
