// Package payments wraps the backend's payment endpoints.
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/greengrocer-web/pkg/enums"
	"github.com/angelmondragon/greengrocer-web/pkg/pagination"
	"github.com/angelmondragon/greengrocer-web/pkg/types"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultMaxRetries = 5
	DefaultRetryDelay = 2 * time.Second
)

var (
	// ErrStatusTimeout is returned once every status check came back pending.
	ErrStatusTimeout = errors.New("Payment status check timeout")
	// ErrNoPaymentURL means an online payment was initialized without a gateway URL.
	ErrNoPaymentURL = errors.New("Payment URL not provided")
	// ErrInitFailed means the backend answered the init call with success=false.
	ErrInitFailed = errors.New("Payment initialization failed")

	errStillPending = errors.New("payment still pending")
)

// initError carries the backend's own explanation for a refused init.
type initError struct {
	msg string
}

func (e *initError) Error() string { return e.msg }

func (e *initError) Is(target error) bool { return target == ErrInitFailed }

type apiClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// HistoryFilter selects a page of the shopper's payments.
type HistoryFilter struct {
	Page   int
	Limit  int
	Status string
}

// Service exposes payment initialization and status lookups.
type Service interface {
	Init(ctx context.Context, req types.InitPaymentRequest) (*types.InitPaymentResponse, error)
	Status(ctx context.Context, paymentID int64) (*types.PaymentStatus, error)
	History(ctx context.Context, filter HistoryFilter) (*types.PaymentHistory, error)
	CheckWithRetry(ctx context.Context, paymentID int64, maxRetries int, delay time.Duration) (*types.PaymentStatus, error)
}

type service struct {
	api apiClient
}

func NewService(api apiClient) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("backend client required")
	}
	return &service{api: api}, nil
}

// Init asks the backend to start a payment. A response flagged unsuccessful is an error.
func (s *service) Init(ctx context.Context, req types.InitPaymentRequest) (*types.InitPaymentResponse, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, fmt.Errorf("unsupported payment method %q", req.PaymentMethod)
	}
	var resp types.InitPaymentResponse
	if err := s.api.Post(ctx, "/payments/init", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		if msg := strings.TrimSpace(resp.Message); msg != "" {
			return nil, &initError{msg: msg}
		}
		return nil, ErrInitFailed
	}
	return &resp, nil
}

func (s *service) Status(ctx context.Context, paymentID int64) (*types.PaymentStatus, error) {
	var status types.PaymentStatus
	path := "/payments/" + strconv.FormatInt(paymentID, 10) + "/status"
	if err := s.api.Get(ctx, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// History lists the shopper's payments, 20 per page unless told otherwise.
func (s *service) History(ctx context.Context, filter HistoryFilter) (*types.PaymentHistory, error) {
	query := pagination.Normalize(filter.Page, filter.Limit, pagination.DefaultLimit).Query()
	if status, err := enums.ParsePaymentStatus(filter.Status); err == nil {
		query.Set("status", status.String())
	}
	var history types.PaymentHistory
	if err := s.api.Get(ctx, "/payments/history", query, &history); err != nil {
		return nil, err
	}
	if history.Payments == nil {
		history.Payments = []types.PaymentHistoryItem{}
	}
	return &history, nil
}

// CheckWithRetry polls the status until it leaves pending. Errors before the
// last attempt are retried; the last attempt's error is returned unchanged.
func (s *service) CheckWithRetry(ctx context.Context, paymentID int64, maxRetries int, delay time.Duration) (*types.PaymentStatus, error) {
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	var settled *types.PaymentStatus
	backoff := retry.WithMaxRetries(uint64(maxRetries-1), retry.NewConstant(delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		status, err := s.Status(ctx, paymentID)
		if err != nil {
			return retry.RetryableError(err)
		}
		if status.Status == enums.PaymentStatusPending {
			return retry.RetryableError(errStillPending)
		}
		settled = status
		return nil
	})
	switch {
	case err == nil:
		return settled, nil
	case errors.Is(err, errStillPending):
		return nil, ErrStatusTimeout
	default:
		return nil, err
	}
}
