package usecasees

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tradesim/internal/repository"
	"tradesim/internal/usecasees/structs"
	"tradesim/models"
)

//go:generate mockery --case=snake --name=Quoter

// Quoter supplies the last traded price for a symbol. Placement of a MARKET
// order fails when no quote can be obtained; there is no stale-price
// fallback.
type Quoter interface {
	LastPrice(symbol string) (*structs.Quote, error)
}

var _ Quoter = (*QuoteUseCase)(nil)

// QuoteUseCase simulates a market data feed: a bounded random walk around
// each instrument's base price. Every generated tick is persisted so the
// first tick of the day anchors day-change numbers.
type QuoteUseCase struct {
	priceRepo repository.PriceRepo

	bases      map[string]float64
	volatility float64

	rndMu sync.Mutex
	rnd   *rand.Rand

	logger *logrus.Logger
}

func NewQuoteUseCase(
	instruments []models.Instrument,
	priceRepo repository.PriceRepo,
	seed int64,
	logger *logrus.Logger,
) *QuoteUseCase {
	bases := make(map[string]float64, len(instruments))
	for _, instrument := range instruments {
		if instrument.Status == models.InstrumentDisabled {
			continue
		}
		bases[instrument.Symbol] = instrument.BasePrice
	}

	return &QuoteUseCase{
		priceRepo:  priceRepo,
		bases:      bases,
		volatility: 0.02,
		rnd:        rand.New(rand.NewSource(seed)),
		logger:     logger,
	}
}

func (u *QuoteUseCase) LastPrice(symbol string) (*structs.Quote, error) {
	base, ok := u.bases[symbol]
	if !ok {
		return nil, models.ErrQuoteUnavailable
	}

	u.rndMu.Lock()
	walk := (u.rnd.Float64() - 0.5) * u.volatility
	u.rndMu.Unlock()

	ltp := base * (1 + walk)

	if err := u.priceRepo.Store(&models.Price{
		Symbol: symbol,
		Price:  ltp,
	}); err != nil {
		u.logger.WithError(err).WithField("symbol", symbol).Debug("price tick not recorded")
	}

	quote := &structs.Quote{
		Symbol: symbol,
		LTP:    ltp,
	}

	dayOpen, err := u.priceRepo.GetDayOpen(symbol, time.Now().UTC())
	if err == nil && dayOpen.Price > 0 {
		quote.Change = ltp - dayOpen.Price
		quote.ChangePercent = quote.Change / dayOpen.Price * 100
	}

	return quote, nil
}

// Quotes resolves a batch, skipping symbols without a quote.
func (u *QuoteUseCase) Quotes(symbols []string) []structs.Quote {
	out := make([]structs.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		quote, err := u.LastPrice(symbol)
		if err != nil {
			u.logger.WithField("symbol", symbol).Debug("quote unavailable")
			continue
		}
		out = append(out, *quote)
	}

	return out
}
