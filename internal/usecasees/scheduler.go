package usecasees

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tradesim/internal/controllers"
	"tradesim/internal/repository"
	"tradesim/internal/usecasees/structs"
	"tradesim/models"
)

// ExecutionScheduler simulates the exchange side of the pipeline. Every placed
// order gets a one-shot timer with a random delay; on expiry the order is
// filled at the reference price perturbed by slippage, all through a single
// ledger transaction guarded by the PENDING status.
type ExecutionScheduler struct {
	orderRepo  repository.OrderRepo
	ledgerRepo repository.LedgerRepo

	tgmController controllers.TgmCtrl

	metrics structs.Metrics

	delayMin time.Duration
	delayMax time.Duration
	slippage float64

	rndMu sync.Mutex
	rnd   *rand.Rand

	timersMu sync.Mutex
	timers   map[string]*time.Timer

	logger *logrus.Logger
}

func NewExecutionScheduler(
	orderRepo repository.OrderRepo,
	ledgerRepo repository.LedgerRepo,
	tgmController controllers.TgmCtrl,
	metrics structs.Metrics,
	delayMin, delayMax time.Duration,
	slippage float64,
	seed int64,
	logger *logrus.Logger,
) *ExecutionScheduler {
	if delayMax < delayMin {
		delayMax = delayMin
	}

	return &ExecutionScheduler{
		orderRepo:     orderRepo,
		ledgerRepo:    ledgerRepo,
		tgmController: tgmController,
		metrics:       metrics,
		delayMin:      delayMin,
		delayMax:      delayMax,
		slippage:      slippage,
		rnd:           rand.New(rand.NewSource(seed)),
		timers:        make(map[string]*time.Timer),
		logger:        logger,
	}
}

// Schedule arms the fill timer for a freshly placed order.
func (s *ExecutionScheduler) Schedule(order *models.Order, refPrice float64) {
	delay := s.randomDelay()
	orderID := order.ID

	s.timersMu.Lock()
	s.timers[orderID] = time.AfterFunc(delay, func() {
		s.Forget(orderID)
		s.Execute(orderID, refPrice)
	})
	s.timersMu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"delay":    delay.String(),
	}).Debug("execution scheduled")
}

// Execute fills the order at refPrice plus slippage. A lost race with a
// concurrent cancel is a normal outcome, any other failure cancels the order
// so its reservation is returned.
func (s *ExecutionScheduler) Execute(orderID string, refPrice float64) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.WithField("order_id", orderID).Debug("order gone before execution")
			return
		}
		s.fail(orderID, err)
		return
	}

	if order.Status != models.OrderStatusPending {
		s.logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"status":   order.Status,
		}).Debug("order no longer pending, skipping execution")
		return
	}

	price := refPrice
	if order.Price != nil {
		price = *order.Price
	}

	execPrice := price * (1 + s.randomSlip())

	filled, err := s.ledgerRepo.CompleteOrder(orderID, execPrice, time.Now().UTC())
	if err != nil {
		if errors.Is(err, models.ErrOrderNotPending) {
			s.logger.WithField("order_id", orderID).Debug("order cancelled during execution")
			return
		}
		s.fail(orderID, err)
		return
	}

	s.metrics.Inc(structs.MetricOrderFilled)

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"symbol":   filled.Symbol,
		"price":    execPrice,
	}).Info("order executed")

	s.notify(fmt.Sprintf("[ Executed ]\n%s %s x%d @ %.2f",
		filled.Symbol, filled.Side, filled.Quantity, execPrice))
}

// fail cancels the order so the reservation flows back to the account. If the
// cancel itself fails the order stays PENDING and the inconsistency is logged
// for operator attention.
func (s *ExecutionScheduler) fail(orderID string, execErr error) {
	s.logger.WithError(execErr).WithField("order_id", orderID).Error("order execution failed")

	s.metrics.Inc(structs.MetricOrderExecutionFailed)

	if _, err := s.ledgerRepo.CancelOrder(orderID); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("failsafe cancel failed")
		return
	}

	s.notify(fmt.Sprintf("[ Execution failed ]\norder %s cancelled, margin released", orderID))
}

// Forget disarms the pending timer, if any. The ledger's status guard makes
// this advisory: an already-fired timer still cannot fill a cancelled order.
func (s *ExecutionScheduler) Forget(orderID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if timer, ok := s.timers[orderID]; ok {
		timer.Stop()
		delete(s.timers, orderID)
	}
}

// Stop disarms all timers. Used on shutdown; in-flight executions finish on
// their own.
func (s *ExecutionScheduler) Stop() {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	for orderID, timer := range s.timers {
		timer.Stop()
		delete(s.timers, orderID)
	}
}

func (s *ExecutionScheduler) randomDelay() time.Duration {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()

	span := s.delayMax - s.delayMin
	if span <= 0 {
		return s.delayMin
	}

	return s.delayMin + time.Duration(s.rnd.Int63n(int64(span)))
}

func (s *ExecutionScheduler) randomSlip() float64 {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()

	return (s.rnd.Float64() - 0.5) * s.slippage
}

func (s *ExecutionScheduler) notify(text string) {
	if s.tgmController == nil {
		return
	}
	if err := s.tgmController.Send(text); err != nil {
		s.logger.WithError(err).Debug("telegram notification failed")
	}
}
