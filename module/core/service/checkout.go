package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database"
)

type TestCheckoutRequest struct {
	UserID       string
	CheckoutTime time.Time
	Items        []string
	Quantities   []int
	Prices       []float64
	Shipping     domain.ShippingDetails
	IsTest       bool
}

type TestCheckoutResult struct {
	Attendance  *domain.AttendanceRecord `json:"attendance"`
	Transaction *domain.Transaction      `json:"transaction"`
}

type TransactionList struct {
	Transactions []domain.Transaction `json:"data"`
	Count        int                  `json:"count"`
	TestCount    int                  `json:"testCount"`
}

// CheckoutService records purchase transactions against an open
// attendance record and closes it.
type CheckoutService struct {
	attendance   database.AttendanceRepository
	transactions database.TransactionRepository
	logger       zerolog.Logger
}

func NewCheckoutService(attendance database.AttendanceRepository, transactions database.TransactionRepository, logger zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		attendance:   attendance,
		transactions: transactions,
		logger:       logger.With().Str("component", "checkout").Logger(),
	}
}

func (s *CheckoutService) TestCheckout(ctx context.Context, req TestCheckoutRequest) (*TestCheckoutResult, error) {
	tx := &domain.Transaction{
		UserID:          req.UserID,
		Items:           req.Items,
		Quantities:      req.Quantities,
		Prices:          req.Prices,
		ShippingDetails: req.Shipping,
		IsTest:          req.IsTest,
		TransactionDate: req.CheckoutTime,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	open, err := s.attendance.GetOpen(ctx, req.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoActiveCheckIn
	}
	if err != nil {
		return nil, fmt.Errorf("find open check-in: %w", err)
	}

	tx.AttendanceID = open.ID
	tx.TotalAmount = tx.Total()
	if err := s.transactions.Insert(ctx, tx); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	rec, err := s.attendance.CloseCheckout(ctx, open.ID, req.CheckoutTime, req.IsTest)
	if err != nil {
		return nil, fmt.Errorf("close check-in: %w", err)
	}

	s.logger.Info().
		Str("user_id", req.UserID).
		Str("attendance_id", open.ID).
		Str("transaction_id", tx.ID).
		Float64("total", tx.TotalAmount).
		Msg("test checkout recorded")

	return &TestCheckoutResult{Attendance: rec, Transaction: tx}, nil
}

// Transactions lists test transactions, plus regular ones when
// includeRegular is set.
func (s *CheckoutService) Transactions(ctx context.Context, includeRegular bool) (*TransactionList, error) {
	txs, err := s.transactions.List(ctx, includeRegular)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}

	list := &TransactionList{Transactions: txs, Count: len(txs)}
	for _, tx := range txs {
		if tx.IsTest {
			list.TestCount++
		}
	}
	return list, nil
}
