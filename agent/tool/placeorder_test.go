package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/pixelmart/order-agent/agent/contract"
)

type fakeOrderService struct {
	created []contractx.PlaceOrderArgs
	order   contractx.Order
	err     error
}

func (f *fakeOrderService) Create(ctx context.Context, args contractx.PlaceOrderArgs) (contractx.Order, error) {
	f.created = append(f.created, args)
	if f.err != nil {
		return contractx.Order{}, f.err
	}
	return f.order, nil
}

type fakePublisher struct {
	topics []string
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	f.topics = append(f.topics, topic)
	return f.err
}

func TestExecuteCreatesOrderOnce(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderService{order: contractx.Order{ID: 77, Phone: "0671234567"}}
	events := &fakePublisher{}
	m := NewMediator(orders, events)

	reply := m.Execute(context.Background(),
		`{"accountId":42,"purchaseType":"P1","platform":"PS4","phone":"0671234567"}`)

	if len(orders.created) != 1 {
		t.Fatalf("Create called %d times, want 1", len(orders.created))
	}
	got := orders.created[0]
	want := contractx.PlaceOrderArgs{AccountID: 42, PurchaseType: "P1", Platform: "PS4", Phone: "0671234567"}
	if got != want {
		t.Fatalf("Create args = %#v, want %#v", got, want)
	}
	if !strings.Contains(reply, "#77") {
		t.Fatalf("reply %q does not name the order id", reply)
	}
	if len(events.topics) != 1 || events.topics[0] != "order.created" {
		t.Fatalf("events = %v, want one order.created", events.topics)
	}
}

func TestExecuteAcceptsStringAccountID(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderService{order: contractx.Order{ID: 5}}
	m := NewMediator(orders, nil)

	m.Execute(context.Background(),
		`{"accountId":"42","purchaseType":"p2ps5","platform":"ps5","phone":"0671234567"}`)

	if len(orders.created) != 1 {
		t.Fatalf("Create called %d times, want 1", len(orders.created))
	}
	if orders.created[0].AccountID != 42 {
		t.Fatalf("accountId = %d, want 42", orders.created[0].AccountID)
	}
	if orders.created[0].PurchaseType != "P2PS5" || orders.created[0].Platform != "PS5" {
		t.Fatalf("args not normalized: %#v", orders.created[0])
	}
}

func TestExecuteNamesMissingFieldsExactly(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderService{}
	m := NewMediator(orders, nil)

	reply := m.Execute(context.Background(), `{"accountId":42,"purchaseType":"P1"}`)

	if len(orders.created) != 0 {
		t.Fatal("Create must not run with missing fields")
	}
	if !strings.Contains(reply, "phone number, platform (PS4/PS5)") {
		t.Fatalf("reply %q must name phone number and platform in order", reply)
	}
	if strings.Contains(reply, "account ID") || strings.Contains(reply, "purchase type") {
		t.Fatalf("reply %q names fields that are present", reply)
	}
}

func TestExecuteRejectsUnknownPurchaseType(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderService{}
	m := NewMediator(orders, nil)

	reply := m.Execute(context.Background(),
		`{"accountId":42,"purchaseType":"P9","platform":"PS4","phone":"0671234567"}`)

	if len(orders.created) != 0 {
		t.Fatal("Create must not run with an invalid purchase type")
	}
	for _, token := range []string{"P1", "P2PS4", "P2PS5", "P3", "P3A"} {
		if !strings.Contains(reply, token) {
			t.Fatalf("reply %q must list valid token %s", reply, token)
		}
	}
}

func TestExecuteMalformedArguments(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderService{}
	m := NewMediator(orders, nil)

	reply := m.Execute(context.Background(), `{"accountId": not-json`)

	if len(orders.created) != 0 {
		t.Fatal("Create must not run on malformed arguments")
	}
	if reply != msgMalformedArgs {
		t.Fatalf("reply = %q, want the fixed corrective message", reply)
	}
}

func TestExecuteOrderFailureYieldsApology(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderService{err: errors.New("pq: connection refused")}
	m := NewMediator(orders, nil)

	reply := m.Execute(context.Background(),
		`{"accountId":42,"purchaseType":"P1","platform":"PS4","phone":"0671234567"}`)

	if reply != msgOrderFailed {
		t.Fatalf("reply = %q, want the fixed apology", reply)
	}
	if strings.Contains(reply, "pq:") {
		t.Fatalf("reply %q leaks the storage error", reply)
	}
}

func TestExecutePublishFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderService{order: contractx.Order{ID: 9}}
	events := &fakePublisher{err: errors.New("qstash down")}
	m := NewMediator(orders, events)

	reply := m.Execute(context.Background(),
		`{"accountId":42,"purchaseType":"P1","platform":"PS4","phone":"0671234567"}`)

	if !strings.Contains(reply, "#9") {
		t.Fatalf("reply = %q, order should still confirm when publish fails", reply)
	}
}
