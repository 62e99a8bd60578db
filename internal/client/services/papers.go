package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/storage"
	"github.com/dmitrijs2005/notehub/internal/client/validation"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

// Catalog is a listing of question papers together with the wallet balance
// the server reported alongside it.
type Catalog struct {
	Papers        []models.QuestionPaper
	WalletBalance int
}

// CanPurchase is the soft guard for the purchase prompt. The server makes
// the real decision.
func (c *Catalog) CanPurchase(p models.QuestionPaper) bool {
	return !p.Purchased && c.WalletBalance >= p.Price
}

// Find returns the paper with id, if listed.
func (c *Catalog) Find(id string) (models.QuestionPaper, bool) {
	i := c.index(id)
	if i < 0 {
		return models.QuestionPaper{}, false
	}
	return c.Papers[i], true
}

func (c *Catalog) index(id string) int {
	return slices.IndexFunc(c.Papers, func(p models.QuestionPaper) bool { return p.ID == id })
}

// CatalogStats are the counters shown above the catalog.
type CatalogStats struct {
	Total         int
	WalletBalance int
	Purchased     int
	Branches      int
	Semesters     int
}

func (c *Catalog) Stats() CatalogStats {
	branches := make(map[string]struct{})
	semesters := make(map[string]struct{})
	st := CatalogStats{Total: len(c.Papers), WalletBalance: c.WalletBalance}
	for _, p := range c.Papers {
		if p.Purchased {
			st.Purchased++
		}
		branches[p.Branch] = struct{}{}
		semesters[p.Semester] = struct{}{}
	}
	st.Branches, st.Semesters = len(branches), len(semesters)
	return st
}

// PaperService defines the question paper operations.
//
// Contract:
//   - List: the catalog for the filter and the current wallet balance;
//     works signed out.
//   - Purchase: buy a listed paper; the catalog adopts the wallet the server
//     returns and marks the paper purchased.
//   - MyPapers: the papers the user bought.
//   - DownloadURL: a download link for a purchased paper.
//   - Upload: publish a PDF paper (admin only).
type PaperService interface {
	List(ctx context.Context, filter models.PaperFilter) (*Catalog, error)
	Purchase(ctx context.Context, cat *Catalog, paperID string) (int, error)
	MyPapers(ctx context.Context) (*Catalog, error)
	DownloadURL(ctx context.Context, paperID string) (string, error)
	Upload(ctx context.Context, paper models.NewPaper, f *storage.File) error
}

type paperService struct {
	api       client.PapersAPI
	tokens    TokenSource
	validator *validation.Validator
	log       logging.Logger
}

func NewPaperService(api client.PapersAPI, tokens TokenSource, log logging.Logger) PaperService {
	return &paperService{api: api, tokens: tokens, validator: validation.New(), log: log.With("service", "papers")}
}

// List works signed out too: without a token the request is anonymous
// and the server reports no purchases and a zero wallet.
func (s *paperService) List(ctx context.Context, filter models.PaperFilter) (*Catalog, error) {
	tok, err := s.tokens.IDToken(ctx)
	if err != nil {
		s.log.Debug(ctx, "listing question papers anonymously", "reason", err)
		tok = ""
	}
	papers, wallet, err := s.api.ListPapers(ctx, tok, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing question papers: %w", err)
	}
	return &Catalog{Papers: papers, WalletBalance: wallet}, nil
}

func (s *paperService) Purchase(ctx context.Context, cat *Catalog, paperID string) (int, error) {
	if cat == nil {
		return 0, ErrNilSnapshot
	}
	p, ok := cat.Find(paperID)
	if !ok {
		return 0, ErrPaperNotFound
	}
	if p.Purchased {
		return cat.WalletBalance, ErrAlreadyPurchased
	}

	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return 0, err
	}
	wallet, err := s.api.PurchasePaper(ctx, tok, paperID)
	if err != nil {
		return 0, fmt.Errorf("error purchasing question paper %s: %w", paperID, err)
	}

	cat.WalletBalance = wallet
	if i := cat.index(paperID); i >= 0 {
		cat.Papers[i].Purchased = true
	}
	s.log.Info(ctx, "question paper purchased", "paper", paperID, "wallet", wallet)
	return wallet, nil
}

func (s *paperService) MyPapers(ctx context.Context) (*Catalog, error) {
	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return nil, err
	}
	papers, wallet, err := s.api.MyPapers(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("error listing purchased papers: %w", err)
	}
	return &Catalog{Papers: papers, WalletBalance: wallet}, nil
}

func (s *paperService) DownloadURL(ctx context.Context, paperID string) (string, error) {
	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return "", err
	}
	u, err := s.api.PaperDownloadURL(ctx, tok, paperID)
	if err != nil {
		return "", fmt.Errorf("error getting download link for %s: %w", paperID, err)
	}
	return u, nil
}

func (s *paperService) Upload(ctx context.Context, paper models.NewPaper, f *storage.File) error {
	if err := s.validator.Struct(paper); err != nil {
		return err
	}
	if err := storage.ValidatePDF(f); err != nil {
		return err
	}

	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return err
	}
	if err := s.api.UploadPaper(ctx, tok, paper, f.Name, f.ContentType, f.Data); err != nil {
		return fmt.Errorf("error uploading question paper: %w", err)
	}
	s.log.Info(ctx, "question paper uploaded", "title", paper.Title, "size", f.Size())
	return nil
}
