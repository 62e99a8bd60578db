package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/notehub/internal/client/models"
)

func (a *App) listPapers(ctx context.Context, args []string) error {
	var f models.PaperFilter
	if len(args) > 0 {
		f.Semester = args[0]
	}
	if len(args) > 1 {
		f.Branch = args[1]
	}
	cat, err := a.papers.List(ctx, f)
	if err != nil {
		return err
	}
	a.catalog = cat

	st := cat.Stats()
	if a.user() == nil {
		printlnFn(fmt.Sprintf("%d papers, sign in to buy", st.Total))
		printPapers(a.out, cat)
		return nil
	}
	a.adoptWallet(ctx, cat.WalletBalance)
	printlnFn(fmt.Sprintf("%d papers, %d purchased, %d branches, %d semesters, wallet ₹%d",
		st.Total, st.Purchased, st.Branches, st.Semesters, st.WalletBalance))
	printPapers(a.out, cat)
	return nil
}

func (a *App) myPapers(ctx context.Context, _ []string) error {
	cat, err := a.papers.MyPapers(ctx)
	if err != nil {
		return err
	}
	a.catalog = cat
	a.adoptWallet(ctx, cat.WalletBalance)
	printPapers(a.out, cat)
	return nil
}

// purchase asks for confirmation before buying. The affirmative answer is
// only offered when the wallet covers the price.
func (a *App) purchase(ctx context.Context, args []string) error {
	id, err := argument(args, "paper id")
	if err != nil {
		return err
	}
	if a.catalog == nil {
		return fmt.Errorf("run 'papers' first")
	}
	p, ok := a.catalog.Find(id)
	if !ok {
		return fmt.Errorf("question paper %s is not in the current list", id)
	}
	if p.Purchased {
		printlnFn("You already own", p.Title)
		return nil
	}
	if !a.catalog.CanPurchase(p) {
		printlnFn(fmt.Sprintf("Insufficient balance: %q costs ₹%d, your wallet has ₹%d",
			p.Title, p.Price, a.catalog.WalletBalance))
		return nil
	}

	ok, err = Confirm(a.reader, fmt.Sprintf("Buy %q for ₹%d? Your wallet balance: ₹%d",
		p.Title, p.Price, a.catalog.WalletBalance), a.out)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Purchase cancelled")
		return nil
	}

	wallet, err := a.papers.Purchase(ctx, a.catalog, id)
	if err != nil {
		return err
	}
	a.adoptWallet(ctx, wallet)
	printlnFn(fmt.Sprintf("Purchased %q, wallet balance ₹%d", p.Title, wallet))
	return nil
}

func (a *App) paperLink(ctx context.Context, args []string) error {
	id, err := argument(args, "paper id")
	if err != nil {
		return err
	}
	u, err := a.papers.DownloadURL(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(u)
	return nil
}

func (a *App) uploadPaper(ctx context.Context, _ []string) error {
	var paper models.NewPaper
	var err error
	if paper.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if paper.Semester, err = GetSimpleText(a.reader, "Semester (1-8)", a.out); err != nil {
		return err
	}
	if paper.Branch, err = GetSimpleText(a.reader, "Branch", a.out); err != nil {
		return err
	}
	price, err := GetSimpleText(a.reader, "Price", a.out)
	if err != nil {
		return err
	}
	if paper.Price, err = strconv.Atoi(price); err != nil {
		return fmt.Errorf("price must be a whole number: %w", err)
	}

	file, err := a.requiredFile("PDF path")
	if err != nil {
		return err
	}
	if err := a.papers.Upload(ctx, paper, file); err != nil {
		return err
	}
	printlnFn("Question paper uploaded")
	return nil
}

// adoptWallet pushes a server-reported balance into the session so the
// prompt and the dashboard agree with the catalog.
func (a *App) adoptWallet(ctx context.Context, wallet int) {
	if _, err := a.account.AdoptWallet(wallet); err != nil {
		a.log.Warn(ctx, "wallet not adopted", "error", err)
	}
}
