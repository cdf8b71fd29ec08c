// Package tool declares the single place_order tool and mediates its
// invocations. The reasoning provider is an untrusted structured-data
// source: every argument set is fully validated before any side effect, and
// every failure becomes a corrective chat message instead of an error.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/pixelmart/order-agent/agent/contract"
	extractx "github.com/pixelmart/order-agent/agent/extract"
	sessionx "github.com/pixelmart/order-agent/agent/session"
)

const ToolPlaceOrder = "place_order"

const orderCreatedTopic = "order.created"

// Corrective and confirmation texts. The end user never sees a raw error.
const (
	msgMalformedArgs = "I could not read the order details. Please tell me the account ID, purchase type, platform and phone number once more."
	msgOrderFailed   = "Sorry, something went wrong while placing your order. Please try again in a moment."
)

// FieldLabels maps slot keys to the human-readable labels used in
// corrective messages.
var FieldLabels = map[string]string{
	sessionx.SlotAccountID:    "account ID",
	sessionx.SlotPhone:        "phone number",
	sessionx.SlotPlatform:     "platform (PS4/PS5)",
	sessionx.SlotPurchaseType: "purchase type",
}

// requiredFields in the order they are named when missing.
var requiredFields = []string{
	sessionx.SlotAccountID,
	sessionx.SlotPhone,
	sessionx.SlotPlatform,
	sessionx.SlotPurchaseType,
}

// PlaceOrderInfo declares the tool schema handed to the reasoning provider.
func PlaceOrderInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolPlaceOrder,
		Desc: "Place a purchase order once the account ID, purchase type, platform and phone number are all known.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"accountId": {
				Type:     schema.Integer,
				Desc:     "Numeric ID of the account the customer wants to buy",
				Required: true,
			},
			"purchaseType": {
				Type:     schema.String,
				Desc:     "Purchase type code",
				Enum:     extractx.PurchaseTypes,
				Required: true,
			},
			"platform": {
				Type:     schema.String,
				Desc:     "Target console platform",
				Enum:     []string{"PS4", "PS5"},
				Required: true,
			},
			"phone": {
				Type:     schema.String,
				Desc:     "Customer phone number in national format (0XXXXXXXXX)",
				Required: true,
			},
			"name":     {Type: schema.String, Desc: "Customer name"},
			"email":    {Type: schema.String, Desc: "Customer email"},
			"telegram": {Type: schema.String, Desc: "Customer telegram handle"},
		}),
	}
}

// Mediator validates tool arguments and drives order creation.
type Mediator struct {
	orders contractx.OrderService
	events contractx.EventPublisher
}

func NewMediator(orders contractx.OrderService, events contractx.EventPublisher) *Mediator {
	return &Mediator{orders: orders, events: events}
}

// Execute turns one raw tool invocation into chat text. It never returns an
// error: malformed or incomplete arguments yield a corrective message that
// steers the provider, and order-creation failures yield a fixed apology.
func (m *Mediator) Execute(ctx context.Context, rawArgs string) string {
	args, err := parseArgs(rawArgs)
	if err != nil {
		log.Warn().Err(err).Str("args", rawArgs).Msg("malformed place_order arguments")
		return msgMalformedArgs
	}

	if missing := missingFields(args); len(missing) > 0 {
		labels := make([]string, 0, len(missing))
		for _, field := range missing {
			labels = append(labels, FieldLabels[field])
		}
		return fmt.Sprintf("I still need the following to place the order: %s.", strings.Join(labels, ", "))
	}

	if !extractx.IsPurchaseType(args.PurchaseType) {
		return fmt.Sprintf("Purchase type %q is not valid. It must be one of: %s.",
			args.PurchaseType, strings.Join(extractx.PurchaseTypes, ", "))
	}
	args.PurchaseType = strings.ToUpper(strings.TrimSpace(args.PurchaseType))
	args.Platform = strings.ToUpper(strings.TrimSpace(args.Platform))

	order, err := m.orders.Create(ctx, args)
	if err != nil {
		log.Error().Err(err).Int64("account_id", args.AccountID).Msg("order creation failed")
		return msgOrderFailed
	}

	m.publishCreated(ctx, order)

	log.Info().Int64("order_id", order.ID).Int64("account_id", order.AccountID).Msg("order placed")
	return fmt.Sprintf("Done! Your order #%d has been placed. Our manager will contact you at %s shortly.", order.ID, order.Phone)
}

func (m *Mediator) publishCreated(ctx context.Context, order contractx.Order) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(ctx, orderCreatedTopic, order); err != nil {
		log.Warn().Err(err).Int64("order_id", order.ID).Msg("publish order event failed")
	}
}

func parseArgs(rawArgs string) (contractx.PlaceOrderArgs, error) {
	var loose map[string]any
	if err := json.Unmarshal([]byte(rawArgs), &loose); err != nil {
		return contractx.PlaceOrderArgs{}, fmt.Errorf("unmarshal tool args: %w", err)
	}

	args := contractx.PlaceOrderArgs{
		AccountID:    coerceInt(loose["accountId"]),
		PurchaseType: coerceString(loose["purchaseType"]),
		Platform:     coerceString(loose["platform"]),
		Phone:        coerceString(loose["phone"]),
		Name:         coerceString(loose["name"]),
		Email:        coerceString(loose["email"]),
		Telegram:     coerceString(loose["telegram"]),
	}
	return args, nil
}

func missingFields(args contractx.PlaceOrderArgs) []string {
	present := map[string]bool{
		sessionx.SlotAccountID:    args.AccountID > 0,
		sessionx.SlotPhone:        strings.TrimSpace(args.Phone) != "",
		sessionx.SlotPlatform:     strings.TrimSpace(args.Platform) != "",
		sessionx.SlotPurchaseType: strings.TrimSpace(args.PurchaseType) != "",
	}

	var missing []string
	for _, field := range requiredFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

func coerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// coerceInt tolerates the provider sending numbers as JSON numbers or
// digit strings.
func coerceInt(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
