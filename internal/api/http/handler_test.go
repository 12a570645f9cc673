package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "tradesim/internal/api/http"
	"tradesim/internal/repository/sqlite"
	"tradesim/internal/usecasees"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	conn, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, sqlite.Migrate(conn))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	accountRepo := sqlite.NewAccountRepository(conn)
	orderRepo := sqlite.NewOrderRepository(conn)
	positionRepo := sqlite.NewPositionRepository(conn)
	priceRepo := sqlite.NewPriceRepository(conn)
	ledgerRepo := sqlite.NewLedgerRepository(conn)

	instruments := usecasees.DefaultInstruments()

	quoteUseCase := usecasees.NewQuoteUseCase(instruments, priceRepo, 1, logger)

	scheduler := usecasees.NewExecutionScheduler(
		orderRepo, ledgerRepo, nil, nil,
		time.Hour, time.Hour, 0.001, 1, logger)
	t.Cleanup(scheduler.Stop)

	accountUseCase := usecasees.NewAccountUseCase(
		accountRepo, orderRepo, positionRepo, quoteUseCase, 1000000, logger)

	orderUseCase := usecasees.NewOrderUseCase(
		accountUseCase, accountRepo, orderRepo, positionRepo, ledgerRepo,
		usecasees.NewMarginCalculator(instruments),
		quoteUseCase, scheduler, nil, nil, logger)

	positionUseCase := usecasees.NewPositionUseCase(
		accountUseCase, orderUseCase, accountRepo, positionRepo, quoteUseCase, logger)

	f := fiber.New()
	httpapi.RegisterHTTPEndpoints(f, accountUseCase, orderUseCase, positionUseCase, quoteUseCase, logger)

	return f
}

func doJSON(t *testing.T, app *fiber.App, method, target, user string, body interface{}) *nethttp.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	return resp
}

func decode(t *testing.T, resp *nethttp.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHandler(t *testing.T) {
	app := newTestApp(t)

	t.Run("healthcheck is open", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodGet, "/api/healthcheck", "", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("v1 requires identity", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodGet, "/api/v1/portfolio", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	var orderID string

	t.Run("place order", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodPost, "/api/v1/orders", "alice", fiber.Map{
			"symbol":    "NIFTY",
			"quantity":  10,
			"price":     22500,
			"orderType": "LIMIT",
			"orderSide": "BUY",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var body struct {
			Success bool   `json:"success"`
			OrderID string `json:"orderId"`
		}
		decode(t, resp, &body)
		assert.True(t, body.Success)
		require.NotEmpty(t, body.OrderID)
		orderID = body.OrderID
	})

	t.Run("invalid order rejected", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodPost, "/api/v1/orders", "alice", fiber.Map{
			"symbol":    "nifty",
			"quantity":  10,
			"orderType": "MARKET",
			"orderSide": "BUY",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("get order", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodGet, "/api/v1/orders/"+orderID, "alice", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("foreign order forbidden", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodGet, "/api/v1/orders/"+orderID, "mallory", nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown order not found", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodGet, "/api/v1/orders/nope", "alice", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("list orders", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodGet, "/api/v1/orders?status=PENDING", "alice", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Orders []struct {
				ID string `json:"id"`
			} `json:"orders"`
		}
		decode(t, resp, &body)
		require.Len(t, body.Orders, 1)
		assert.Equal(t, orderID, body.Orders[0].ID)
	})

	t.Run("cancel order", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodPatch, "/api/v1/orders/"+orderID, "alice", fiber.Map{
			"action": "cancel",
		})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("second cancel conflicts", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodPatch, "/api/v1/orders/"+orderID, "alice", fiber.Map{
			"action": "cancel",
		})
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown action rejected", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodPatch, "/api/v1/orders/"+orderID, "alice", fiber.Map{
			"action": "boost",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("positions", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodGet, "/api/v1/positions", "alice", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Positions []interface{} `json:"positions"`
		}
		decode(t, resp, &body)
		assert.Empty(t, body.Positions)
	})

	t.Run("portfolio", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodGet, "/api/v1/portfolio", "alice", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Account struct {
				Balance float64 `json:"balance"`
			} `json:"account"`
		}
		decode(t, resp, &body)
		assert.Equal(t, 1000000.0, body.Account.Balance)
	})

	t.Run("quotes", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodGet, "/api/v1/quotes?symbols=NIFTY,tcs", "alice", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Quotes []struct {
				Symbol string  `json:"symbol"`
				LTP    float64 `json:"ltp"`
			} `json:"quotes"`
		}
		decode(t, resp, &body)
		require.Len(t, body.Quotes, 2)
		assert.Equal(t, "NIFTY", body.Quotes[0].Symbol)
		assert.Equal(t, "TCS", body.Quotes[1].Symbol)
	})

	t.Run("quotes without symbols rejected", func(t *testing.T) {
		resp := doJSON(t, app, nethttp.MethodGet, "/api/v1/quotes", "alice", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
