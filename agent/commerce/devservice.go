package commerce

import (
	"context"
	"sync"
	"time"

	contractx "github.com/pixelmart/order-agent/agent/contract"
)

// DevService is an in-process OrderService/CatalogReader used when no
// database is configured. Orders get sequential ids and live in memory.
type DevService struct {
	mu       sync.Mutex
	nextID   int64
	orders   []contractx.Order
	accounts []contractx.Account
	items    []contractx.CatalogItem
}

var (
	_ contractx.OrderService  = (*DevService)(nil)
	_ contractx.CatalogReader = (*DevService)(nil)
)

func NewDevService() *DevService {
	return &DevService{
		accounts: []contractx.Account{
			{ID: 42, Title: "EA Sports FC 25 + GTA V", Platform: "PS5", Price: 1199, Active: true},
			{ID: 43, Title: "God of War Ragnarok", Platform: "PS4", Price: 899, Active: true},
		},
		items: []contractx.CatalogItem{
			{ID: 1, Name: "EA Sports FC 25"},
			{ID: 2, Name: "GTA V"},
			{ID: 3, Name: "God of War Ragnarok"},
		},
	}
}

func (s *DevService) Create(_ context.Context, args contractx.PlaceOrderArgs) (contractx.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	order := contractx.Order{
		ID:           s.nextID,
		AccountID:    args.AccountID,
		PurchaseType: args.PurchaseType,
		Platform:     args.Platform,
		Phone:        args.Phone,
		Name:         args.Name,
		Email:        args.Email,
		Telegram:     args.Telegram,
		CreatedAt:    time.Now().UTC(),
	}
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *DevService) ListActiveAccounts(_ context.Context) ([]contractx.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]contractx.Account, len(s.accounts))
	copy(out, s.accounts)
	return out, nil
}

func (s *DevService) ListActiveCatalogItems(_ context.Context) ([]contractx.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]contractx.CatalogItem, len(s.items))
	copy(out, s.items)
	return out, nil
}
