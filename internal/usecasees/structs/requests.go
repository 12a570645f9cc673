package structs

import (
	"fmt"
	"regexp"

	"tradesim/models"
)

const (
	MinQuantity = 1
	MaxQuantity = 10000
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,20}$`)

type PlaceOrderRequest struct {
	Symbol      string   `json:"symbol"`
	Quantity    int64    `json:"quantity"`
	Price       *float64 `json:"price,omitempty"`
	OrderType   string   `json:"orderType"`
	OrderSide   string   `json:"orderSide"`
	ProductType string   `json:"productType"`
	StopLoss    *float64 `json:"stopLoss,omitempty"`
	Target      *float64 `json:"target,omitempty"`
}

// Validate checks structural validity only; margin and position sizing are
// business checks done against the ledger.
func (r *PlaceOrderRequest) Validate() error {
	if !symbolPattern.MatchString(r.Symbol) {
		return fmt.Errorf("%w: symbol must match %s", models.ErrValidation, symbolPattern.String())
	}

	if r.Quantity < MinQuantity || r.Quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity must be between %d and %d", models.ErrValidation, MinQuantity, MaxQuantity)
	}

	if r.Price != nil && *r.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", models.ErrValidation)
	}

	switch r.OrderType {
	case models.OrderTypeMarket:
	case models.OrderTypeLimit:
		if r.Price == nil {
			return fmt.Errorf("%w: price required for limit orders", models.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown order type %q", models.ErrValidation, r.OrderType)
	}

	if r.OrderSide != models.SideBuy && r.OrderSide != models.SideSell {
		return fmt.Errorf("%w: unknown order side %q", models.ErrValidation, r.OrderSide)
	}

	if r.ProductType == "" {
		r.ProductType = models.ProductIntraday
	}
	if r.ProductType != models.ProductIntraday && r.ProductType != models.ProductDelivery {
		return fmt.Errorf("%w: unknown product type %q", models.ErrValidation, r.ProductType)
	}

	if r.StopLoss != nil && *r.StopLoss <= 0 {
		return fmt.Errorf("%w: stopLoss must be positive", models.ErrValidation)
	}
	if r.Target != nil && *r.Target <= 0 {
		return fmt.Errorf("%w: target must be positive", models.ErrValidation)
	}

	return nil
}

const (
	OrderActionCancel = "cancel"
	OrderActionModify = "modify"

	PositionActionClose          = "close"
	PositionActionUpdateStopLoss = "update_stop_loss"
	PositionActionUpdateTarget   = "update_target"
)

type OrderActionRequest struct {
	Action   string   `json:"action"`
	Price    *float64 `json:"price,omitempty"`
	Quantity int64    `json:"quantity,omitempty"`
}

type PositionActionRequest struct {
	Action   string   `json:"action"`
	StopLoss *float64 `json:"stopLoss,omitempty"`
	Target   *float64 `json:"target,omitempty"`
}
