package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/services"
	"github.com/dmitrijs2005/notehub/internal/client/session"
	"github.com/dmitrijs2005/notehub/internal/client/storage"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct{ st session.State }

func (f *fakeSession) Snapshot() session.State { return f.st }

type fakeAccount struct {
	sess       *fakeSession
	user       *models.User
	err        error
	signOuts   int
	lastEmail  string
	lastPass   string
	lastFields session.ProfileFields
	lastAvatar *storage.File
}

func (f *fakeAccount) SignInInteractive(ctx context.Context) (*models.User, error) {
	return f.user, f.err
}

func (f *fakeAccount) SignInWithCredential(ctx context.Context, email, password string) (*models.User, error) {
	f.lastEmail, f.lastPass = email, password
	return f.user, f.err
}

func (f *fakeAccount) SignOut(ctx context.Context) error {
	f.signOuts++
	return f.err
}

func (f *fakeAccount) UpdateProfile(ctx context.Context, fields session.ProfileFields, avatar *storage.File) (*models.User, error) {
	f.lastFields, f.lastAvatar = fields, avatar
	if f.err != nil {
		return nil, f.err
	}
	u := f.user.Clone()
	u.Name = fields.Name
	return u, nil
}

func (f *fakeAccount) AdoptWallet(wallet int) (*models.User, error) {
	if f.sess.st.User == nil {
		return nil, session.ErrNotSignedIn
	}
	u := f.sess.st.User.Clone()
	u.Wallet = wallet
	f.sess.st.User = u
	return u.Clone(), nil
}

type fakeNotes struct {
	services.NoteService
	site models.SiteStats
}

func (f *fakeNotes) SiteStats(context.Context) models.SiteStats { return f.site }

type fakePapers struct {
	services.PaperService
	catalog   *services.Catalog
	purchased []string
	err       error
}

func (f *fakePapers) List(ctx context.Context, _ models.PaperFilter) (*services.Catalog, error) {
	return f.catalog, f.err
}

func (f *fakePapers) Purchase(ctx context.Context, cat *services.Catalog, id string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.purchased = append(f.purchased, id)
	p, _ := cat.Find(id)
	cat.WalletBalance -= p.Price
	return cat.WalletBalance, nil
}

type fakeAdmin struct {
	services.AdminService
	dash    *services.Dashboard
	loads   int
	deleted []string
}

func (f *fakeAdmin) LoadDashboard(ctx context.Context) (*services.Dashboard, error) {
	f.loads++
	d := *f.dash
	d.Notes = append([]models.Note(nil), f.dash.Notes...)
	return &d, nil
}

func (f *fakeAdmin) DeleteNote(ctx context.Context, d *services.Dashboard, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestApp(t *testing.T, input string, user *models.User) (*App, *bytes.Buffer, *[]string) {
	t.Helper()
	lines := capturePrint(t)
	out := &bytes.Buffer{}
	sess := &fakeSession{st: session.State{User: user}}
	return &App{
		log:     logging.Nop(),
		session: sess,
		account: &fakeAccount{sess: sess, user: user},
		notes:   &fakeNotes{},
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     out,
	}, out, lines
}

func catalog() *services.Catalog {
	return &services.Catalog{
		WalletBalance: 100,
		Papers: []models.QuestionPaper{
			{ID: "p1", Title: "DBMS 2023", Branch: "CSE", Semester: "5", Price: 40},
			{ID: "p2", Title: "OS 2023", Branch: "CSE", Semester: "5", Price: 150},
			{ID: "p3", Title: "CN 2022", Branch: "ECE", Semester: "6", Price: 30, Purchased: true},
		},
	}
}

func TestApp_PurchaseConfirmed(t *testing.T) {
	a, _, lines := newTestApp(t, "y\n", student)
	fp := &fakePapers{catalog: catalog()}
	a.papers = fp
	a.catalog = fp.catalog

	require.NoError(t, a.purchase(context.Background(), []string{"p1"}))

	assert.Equal(t, []string{"p1"}, fp.purchased)
	assert.Equal(t, 60, a.catalog.WalletBalance)
	assert.Contains(t, (*lines)[len(*lines)-1], "₹60")
}

func TestApp_PurchaseUpdatesSessionWallet(t *testing.T) {
	u := &models.User{ID: "u1", Email: "a@x.com", Name: "Alice", Wallet: 100}
	a, out, _ := newTestApp(t, "y\n", u)
	fp := &fakePapers{catalog: &services.Catalog{
		WalletBalance: 100,
		Papers:        []models.QuestionPaper{{ID: "p1", Title: "DBMS 2023", Price: 80}},
	}}
	a.papers = fp
	a.catalog = fp.catalog
	require.Equal(t, "(Alice ₹100)", a.status())

	require.NoError(t, a.purchase(context.Background(), []string{"p1"}))

	assert.Equal(t, "(Alice ₹20)", a.status())
	assert.Equal(t, 20, a.user().Wallet)
	assert.Contains(t, out.String(), "Your wallet balance: ₹100")
	assert.NotContains(t, out.String(), "₹20")
}

func TestApp_PurchaseDeclined(t *testing.T) {
	a, _, lines := newTestApp(t, "n\n", student)
	fp := &fakePapers{catalog: catalog()}
	a.papers = fp
	a.catalog = fp.catalog

	require.NoError(t, a.purchase(context.Background(), []string{"p1"}))

	assert.Empty(t, fp.purchased)
	assert.Equal(t, []string{"Purchase cancelled"}, *lines)
}

func TestApp_PurchaseSoftGuards(t *testing.T) {
	a, out, lines := newTestApp(t, "", student)
	fp := &fakePapers{catalog: catalog()}
	a.papers = fp
	a.catalog = fp.catalog

	require.NoError(t, a.purchase(context.Background(), []string{"p2"}))
	require.NoError(t, a.purchase(context.Background(), []string{"p3"}))

	assert.Empty(t, fp.purchased)
	assert.Empty(t, out.String(), "no confirmation prompt")
	assert.Contains(t, (*lines)[0], "Insufficient balance")
	assert.Contains(t, (*lines)[1], "already own")
}

func TestApp_PurchaseNeedsCatalogAndID(t *testing.T) {
	a, _, _ := newTestApp(t, "", student)
	a.papers = &fakePapers{}

	assert.Error(t, a.purchase(context.Background(), nil))
	assert.Error(t, a.purchase(context.Background(), []string{"p1"}))

	a.catalog = catalog()
	assert.Error(t, a.purchase(context.Background(), []string{"nope"}))
}

func TestApp_ListPapersKeepsCatalog(t *testing.T) {
	a, out, lines := newTestApp(t, "", student)
	a.papers = &fakePapers{catalog: catalog()}

	require.NoError(t, a.listPapers(context.Background(), []string{"5"}))

	assert.NotNil(t, a.catalog)
	assert.Equal(t, "3 papers, 1 purchased, 2 branches, 2 semesters, wallet ₹100", (*lines)[0])
	assert.Contains(t, out.String(), "owned")
	assert.Contains(t, out.String(), "insufficient balance")
}

func dashboard() *services.Dashboard {
	return &services.Dashboard{
		Stats: models.Stats{TotalUsers: 2, TotalNotes: 2, PendingNotes: 1, ApprovedNotes: 1},
		Notes: []models.Note{
			{ID: "n1", Title: "Graphs", Status: models.NoteStatusPending},
			{ID: "n2", Title: "Trees", Status: models.NoteStatusApproved},
		},
		Users: []models.AdminUser{{ID: "u1", Name: "Alice", Email: "a@x.com", Wallet: 10}},
	}
}

func TestApp_AdminDashboardFilters(t *testing.T) {
	a, out, _ := newTestApp(t, "", admin)
	fa := &fakeAdmin{dash: dashboard()}
	a.admin = fa

	require.NoError(t, a.adminDashboard(context.Background(), []string{"Pending"}))

	assert.Contains(t, out.String(), "Graphs")
	assert.NotContains(t, out.String(), "Trees")

	out.Reset()
	require.NoError(t, a.adminDashboard(context.Background(), []string{"tre"}))
	assert.Contains(t, out.String(), "Trees")
	assert.NotContains(t, out.String(), "Graphs")
	assert.Equal(t, 2, fa.loads)
}

func TestApp_DeleteNoteAsksFirst(t *testing.T) {
	a, _, lines := newTestApp(t, "no\nyes\n", admin)
	fa := &fakeAdmin{dash: dashboard()}
	a.admin = fa

	require.NoError(t, a.deleteNote(context.Background(), []string{"n1"}))
	assert.Empty(t, fa.deleted)
	assert.Equal(t, []string{"Cancelled"}, *lines)

	require.NoError(t, a.deleteNote(context.Background(), []string{"n1"}))
	assert.Equal(t, []string{"n1"}, fa.deleted)
	assert.Equal(t, 1, fa.loads)

	assert.Error(t, a.deleteNote(context.Background(), nil))
}

func TestApp_LogoutDropsSnapshots(t *testing.T) {
	a, _, _ := newTestApp(t, "", student)
	a.catalog, a.dashboard, a.listed = catalog(), dashboard(), []models.Note{{ID: "n1"}}

	require.NoError(t, a.logout(context.Background(), nil))

	assert.Equal(t, 1, a.account.(*fakeAccount).signOuts)
	assert.Nil(t, a.catalog)
	assert.Nil(t, a.dashboard)
	assert.Nil(t, a.listed)
}

func TestApp_AdminLoginPassesCredentials(t *testing.T) {
	a, _, lines := newTestApp(t, "root@x.com\n", admin)
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	t.Cleanup(func() { readPassword = orig })

	require.NoError(t, a.adminLogin(context.Background(), nil))

	acc := a.account.(*fakeAccount)
	assert.Equal(t, "root@x.com", acc.lastEmail)
	assert.Equal(t, "s3cret", acc.lastPass)
	assert.Equal(t, []string{"Signed in as Root"}, *lines)
}

func TestApp_ProfileKeepsBlankAnswers(t *testing.T) {
	u := &models.User{ID: "u1", Email: "a@x.com", Name: "Alice", Semester: "3", Branch: "CSE"}
	a, _, _ := newTestApp(t, "Alice G\n\nIT\n\n", u)

	require.NoError(t, a.profile(context.Background(), nil))

	acc := a.account.(*fakeAccount)
	assert.Equal(t, session.ProfileFields{Name: "Alice G", Semester: "3", Branch: "IT"}, acc.lastFields)
	assert.Nil(t, acc.lastAvatar)
}

func TestApp_DownloadNeedsListedNote(t *testing.T) {
	a, _, _ := newTestApp(t, "", student)

	err := a.downloadNote(context.Background(), []string{"n9"})
	assert.ErrorIs(t, err, services.ErrNoteNotFound)
}

func TestApp_Status(t *testing.T) {
	a, _, _ := newTestApp(t, "", nil)
	sess := a.session.(*fakeSession)

	assert.Equal(t, "", a.status())

	sess.st = session.State{Loading: true}
	assert.Equal(t, "(loading)", a.status())

	sess.st = session.State{User: &models.User{Email: "a@x.com", Wallet: 25}}
	assert.Equal(t, "(a@x.com ₹25)", a.status())

	sess.st = session.State{User: admin}
	assert.Equal(t, "(Root admin)", a.status())
}

func TestApp_ShellGuardsAdminViews(t *testing.T) {
	a, _, lines := newTestApp(t, "", student)

	s := a.shell()
	s.dispatch(context.Background(), "approve", []string{"n1"})

	assert.Equal(t, "That view is for admins only", (*lines)[0])
	require.Len(t, *lines, 3)
	assert.Contains(t, (*lines)[2], "Hello Alice")
}

func TestApp_HomeShowsSiteStats(t *testing.T) {
	a, out, lines := newTestApp(t, "", nil)
	a.notes = &fakeNotes{site: models.SiteStats{TotalNotes: 12, TotalDownloads: 340, TotalUsers: 7, TotalQuestionPapers: 3}}

	require.NoError(t, a.home(context.Background(), nil))

	assert.Equal(t, "Notes: 12  Downloads: 340  Students: 7  Question papers: 3\n", out.String())
	assert.Contains(t, (*lines)[1], "sign in")
}
