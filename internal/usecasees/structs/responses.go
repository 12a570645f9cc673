package structs

import (
	"time"

	"tradesim/models"
)

type PlaceOrderResponse struct {
	Success        bool    `json:"success"`
	OrderID        string  `json:"orderId"`
	Message        string  `json:"message"`
	EstimatedPrice float64 `json:"estimatedPrice"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type OrdersResponse struct {
	Orders     []models.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

type Quote struct {
	Symbol        string  `json:"symbol"`
	LTP           float64 `json:"ltp"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

type PositionView struct {
	models.Position
	CurrentPrice         float64 `json:"currentPrice"`
	ChangePercent        float64 `json:"changePercent"`
	InvestedValue        float64 `json:"investedValue"`
	MarketValue          float64 `json:"marketValue"`
	UnrealizedPnLPercent float64 `json:"unrealizedPnLPercent"`
	DayPnLPercent        float64 `json:"dayPnLPercent"`
	PositionType         string  `json:"positionType"`
}

type PerformerRef struct {
	Symbol               string  `json:"symbol"`
	UnrealizedPnLPercent float64 `json:"unrealizedPnLPercent"`
}

type PositionsSummary struct {
	TotalInvested      float64       `json:"totalInvested"`
	TotalMarketValue   float64       `json:"totalMarketValue"`
	TotalUnrealizedPnL float64       `json:"totalUnrealizedPnL"`
	TotalDayPnL        float64       `json:"totalDayPnL"`
	TotalPositions     int           `json:"totalPositions"`
	TotalReturnPercent float64       `json:"totalReturnPercent"`
	DayReturnPercent   float64       `json:"dayReturnPercent"`
	BestPerformer      *PerformerRef `json:"bestPerformer"`
	WorstPerformer     *PerformerRef `json:"worstPerformer"`
}

type PositionsResponse struct {
	Positions   []PositionView   `json:"positions"`
	Summary     PositionsSummary `json:"summary"`
	IsNewUser   bool             `json:"isNewUser"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

type AccountView struct {
	Balance             float64 `json:"balance"`
	AvailableMargin     float64 `json:"availableMargin"`
	UsedMargin          float64 `json:"usedMargin"`
	TotalPortfolioValue float64 `json:"totalPortfolioValue"`
	MarginUtilization   float64 `json:"marginUtilization"`
}

type OrdersBlock struct {
	Pending []models.Order `json:"pending"`
	Recent  []models.Order `json:"recent"`
	Total   int            `json:"total"`
}

type PortfolioResponse struct {
	Account     AccountView      `json:"account"`
	Summary     PositionsSummary `json:"portfolio"`
	Positions   []PositionView   `json:"positions"`
	Orders      OrdersBlock      `json:"orders"`
	IsNewUser   bool             `json:"isNewUser"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
}
