// Package commerce backs the order-creation and catalog/account read
// contracts with Postgres.
package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/pixelmart/order-agent/agent/contract"
)

type accountRow struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID       int64   `bun:"id,pk,autoincrement"`
	Title    string  `bun:"title,notnull"`
	Platform string  `bun:"platform,notnull"`
	Price    float64 `bun:"price,notnull"`
	Active   bool    `bun:"active,notnull"`
}

type productRow struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Name   string `bun:"name,notnull"`
	Active bool   `bun:"active,notnull"`
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID           int64     `bun:"id,pk,autoincrement"`
	AccountID    int64     `bun:"account_id,notnull"`
	PurchaseType string    `bun:"purchase_type,notnull"`
	Platform     string    `bun:"platform,notnull"`
	Phone        string    `bun:"phone,notnull"`
	Name         string    `bun:"name,nullzero"`
	Email        string    `bun:"email,nullzero"`
	Telegram     string    `bun:"telegram,nullzero"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

// Repo implements contract.OrderService and contract.CatalogReader.
type Repo struct {
	db  *bun.DB
	now func() time.Time
}

var (
	_ contractx.OrderService  = (*Repo)(nil)
	_ contractx.CatalogReader = (*Repo)(nil)
)

func NewRepo(db *bun.DB) *Repo {
	return &Repo{db: db, now: time.Now}
}

func (r *Repo) Create(ctx context.Context, args contractx.PlaceOrderArgs) (contractx.Order, error) {
	row := &orderRow{
		AccountID:    args.AccountID,
		PurchaseType: args.PurchaseType,
		Platform:     args.Platform,
		Phone:        args.Phone,
		Name:         args.Name,
		Email:        args.Email,
		Telegram:     args.Telegram,
		CreatedAt:    r.now().UTC(),
	}
	if _, err := r.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return contractx.Order{}, fmt.Errorf("create order: %w", err)
	}

	return contractx.Order{
		ID:           row.ID,
		AccountID:    row.AccountID,
		PurchaseType: row.PurchaseType,
		Platform:     row.Platform,
		Phone:        row.Phone,
		Name:         row.Name,
		Email:        row.Email,
		Telegram:     row.Telegram,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func (r *Repo) ListActiveAccounts(ctx context.Context) ([]contractx.Account, error) {
	var rows []accountRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("a.active = TRUE").
		OrderExpr("a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}

	accounts := make([]contractx.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, contractx.Account{
			ID:       row.ID,
			Title:    row.Title,
			Platform: row.Platform,
			Price:    row.Price,
			Active:   row.Active,
		})
	}
	return accounts, nil
}

func (r *Repo) ListActiveCatalogItems(ctx context.Context) ([]contractx.CatalogItem, error) {
	var rows []productRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("p.active = TRUE").
		OrderExpr("p.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active catalog items: %w", err)
	}

	items := make([]contractx.CatalogItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, contractx.CatalogItem{ID: row.ID, Name: row.Name})
	}
	return items, nil
}
