package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdmin(t *testing.T) (AdminService, *fakeBackend, *fakeTokens) {
	t.Helper()
	be := &fakeBackend{}
	ts := &fakeTokens{Token: "tok"}
	return NewAdminService(be, ts, logging.Nop()), be, ts
}

func dashboard() *Dashboard {
	return &Dashboard{
		Stats: models.Stats{TotalUsers: 2, TotalNotes: 9, PendingNotes: 3, ApprovedNotes: 5},
		Notes: []models.Note{
			{ID: "p1", Title: "Graph Theory", Description: "BFS and DFS", Status: models.NoteStatusPending},
			{ID: "a1", Title: "Compilers", Description: "LR parsing", Status: models.NoteStatusApproved},
			{ID: "r1", Title: "Old notes", Description: "graph drawings", Status: models.NoteStatusRejected},
		},
		Users: []models.AdminUser{
			{ID: "u1", Name: "Alice", Email: "alice@x.com", Wallet: 10},
			{ID: "u2", Name: "Bob", Email: "bob@y.com", Wallet: 0},
		},
	}
}

func TestAdmin_LoadDashboard(t *testing.T) {
	svc, be, ts := newAdmin(t)
	want := dashboard()
	be.Stats, be.Notes, be.Users = want.Stats, want.Notes, want.Users

	got, err := svc.LoadDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.ElementsMatch(t, []string{"stats", "notes", "users"}, be.Calls)
	assert.Equal(t, 3, ts.Calls, "one token per call")
}

func TestAdmin_LoadDashboardFailsAsAWhole(t *testing.T) {
	svc, be, _ := newAdmin(t)
	be.UsersErr = &client.RequestError{Status: 403, Message: "Admin only"}

	d, err := svc.LoadDashboard(context.Background())
	assert.Nil(t, d)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, "Admin only", client.Message(err))
}

func TestAdmin_TokenFailureSendsNothing(t *testing.T) {
	svc, be, ts := newAdmin(t)
	ts.Err = errors.New("not signed in")
	d := dashboard()

	err := svc.Approve(context.Background(), d, "p1")
	assert.ErrorIs(t, err, ts.Err)
	assert.Empty(t, be.Calls)
	assert.Equal(t, dashboard(), d)
}

func TestAdmin_Approve(t *testing.T) {
	svc, be, _ := newAdmin(t)
	d := dashboard()

	require.NoError(t, svc.Approve(context.Background(), d, "p1"))

	assert.Equal(t, []string{"approve p1"}, be.Calls)
	assert.Equal(t, []string{"tok"}, be.Tokens)
	assert.Equal(t, models.NoteStatusApproved, d.Notes[0].Status)
	assert.Equal(t, 2, d.Stats.PendingNotes)
	assert.Equal(t, 6, d.Stats.ApprovedNotes)
	assert.Equal(t, 9, d.Stats.TotalNotes)
}

func TestAdmin_ApproveMovesCountersForUnlistedAndApprovedNotes(t *testing.T) {
	svc, _, _ := newAdmin(t)
	d := dashboard()

	require.NoError(t, svc.Approve(context.Background(), d, "missing"))
	require.NoError(t, svc.Approve(context.Background(), d, "a1"))

	assert.Equal(t, dashboard().Notes, d.Notes)
	assert.Equal(t, 1, d.Stats.PendingNotes)
	assert.Equal(t, 7, d.Stats.ApprovedNotes)
}

func TestAdmin_RejectUnlistedNoteStillDecrementsPending(t *testing.T) {
	svc, _, _ := newAdmin(t)
	d := dashboard()

	require.NoError(t, svc.Reject(context.Background(), d, "missing"))

	assert.Len(t, d.Notes, 3)
	assert.Equal(t, 2, d.Stats.PendingNotes)
}

func TestAdmin_Reject(t *testing.T) {
	svc, _, _ := newAdmin(t)
	d := dashboard()

	require.NoError(t, svc.Reject(context.Background(), d, "p1"))

	assert.Len(t, d.Notes, 2)
	assert.Equal(t, "a1", d.Notes[0].ID)
	assert.Equal(t, 2, d.Stats.PendingNotes)
	assert.Equal(t, 5, d.Stats.ApprovedNotes)
}

func TestAdmin_DeleteNoteAdjustsCountersByPriorStatus(t *testing.T) {
	tests := []struct {
		id   string
		want models.Stats
	}{
		{"p1", models.Stats{TotalUsers: 2, TotalNotes: 8, PendingNotes: 2, ApprovedNotes: 5}},
		{"a1", models.Stats{TotalUsers: 2, TotalNotes: 8, PendingNotes: 3, ApprovedNotes: 4}},
		{"r1", models.Stats{TotalUsers: 2, TotalNotes: 8, PendingNotes: 3, ApprovedNotes: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			svc, _, _ := newAdmin(t)
			d := dashboard()

			require.NoError(t, svc.DeleteNote(context.Background(), d, tt.id))

			assert.Equal(t, tt.want, d.Stats)
			assert.Len(t, d.Notes, 2)
			assert.Equal(t, -1, d.noteIndex(tt.id))
		})
	}
}

func TestAdmin_DeleteNoteNotListed(t *testing.T) {
	svc, be, _ := newAdmin(t)
	d := dashboard()

	err := svc.DeleteNote(context.Background(), d, "missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.Empty(t, be.Calls)
}

func TestAdmin_FailedModerationLeavesSnapshot(t *testing.T) {
	svc, be, _ := newAdmin(t)
	be.ModerateErr = &client.RequestError{Status: 500}
	ctx := context.Background()
	d := dashboard()

	assert.Error(t, svc.Approve(ctx, d, "p1"))
	assert.Error(t, svc.Reject(ctx, d, "p1"))
	assert.Error(t, svc.DeleteNote(ctx, d, "a1"))
	assert.Error(t, svc.DeleteUser(ctx, d, "u1"))

	assert.Equal(t, dashboard(), d)
}

func TestAdmin_DeleteUserReloads(t *testing.T) {
	svc, be, _ := newAdmin(t)
	d := dashboard()
	be.Stats = models.Stats{TotalUsers: 1}
	be.Users = []models.AdminUser{{ID: "u2", Name: "Bob"}}

	require.NoError(t, svc.DeleteUser(context.Background(), d, "u1"))

	assert.Equal(t, "delete-user u1", be.Calls[0])
	assert.Equal(t, 1, be.StatsCalls)
	assert.Equal(t, 1, d.Stats.TotalUsers)
	assert.Equal(t, be.Users, d.Users)
}

func TestAdmin_RestoreWalletAdoptsServerValue(t *testing.T) {
	svc, be, _ := newAdmin(t)
	be.RestoredWallet = 100
	d := dashboard()

	require.NoError(t, svc.RestoreWallet(context.Background(), d, "u2"))
	assert.Equal(t, 100, d.Users[1].Wallet)
	assert.Equal(t, 10, d.Users[0].Wallet)

	be.WalletErr = client.ErrUnavailable
	be.RestoredWallet = 0
	assert.ErrorIs(t, svc.RestoreWallet(context.Background(), d, "u2"), client.ErrUnavailable)
	assert.Equal(t, 100, d.Users[1].Wallet)
}

func TestAdmin_NilSnapshot(t *testing.T) {
	svc, _, _ := newAdmin(t)
	assert.ErrorIs(t, svc.Approve(context.Background(), nil, "p1"), ErrNilSnapshot)
}

func TestDashboard_Filter(t *testing.T) {
	d := dashboard()

	ids := func(ns []models.Note) []string {
		out := []string{}
		for _, n := range ns {
			out = append(out, n.ID)
		}
		return out
	}

	assert.Equal(t, []string{"p1", "a1", "r1"}, ids(d.Filter("", StatusAll)))
	assert.Equal(t, []string{"p1", "r1"}, ids(d.Filter("GRAPH", "")))
	assert.Equal(t, []string{"r1"}, ids(d.Filter("graph", "rejected")))
	assert.Equal(t, []string{"a1"}, ids(d.Filter("", "approved")))
	assert.Empty(t, d.Filter("nothing", StatusAll))
}

func TestDashboard_FilterUsers(t *testing.T) {
	d := dashboard()
	assert.Len(t, d.FilterUsers(""), 2)
	assert.Equal(t, "u2", d.FilterUsers("Y.COM")[0].ID)
	assert.Equal(t, "u1", d.FilterUsers("ali")[0].ID)
	assert.Empty(t, d.FilterUsers("carol"))
}
