// Package checkout validates the contact form, maps a cart to the vendor
// order schema and drives one session's submission state machine.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/biztalbox/avaya-food-ordering/internal/cart"
	"github.com/biztalbox/avaya-food-ordering/internal/enum"
	"github.com/biztalbox/avaya-food-ordering/internal/profile"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Errors returned by Checkout.Submit.
var (
	ErrSubmissionInProgress = errors.New("an order is already being submitted")
	ErrEmptyCart            = errors.New("cart is empty")
)

// Submitter sends a built order to the vendor. Satisfied by *Client.
type Submitter interface {
	Submit(ctx context.Context, order *SaveOrderRequest) (json.RawMessage, error)
}

// ProfileSource supplies the restaurant identity. Satisfied by
// *profile.Resolver.
type ProfileSource interface {
	Resolve(ctx context.Context) profile.Profile
}

// Options configures a Service. Zero values get defaults.
type Options struct {
	Credentials  Credentials
	ConfirmDelay time.Duration
	Now          func() time.Time
	OrderIDs     func() string
}

// Service holds what every session's checkout shares.
type Service struct {
	submitter    Submitter
	profiles     ProfileSource
	credentials  Credentials
	confirmDelay time.Duration
	now          func() time.Time
	orderID      func() string
	logger       *zap.Logger
}

func NewService(submitter Submitter, profiles ProfileSource, opts Options, logger *zap.Logger) *Service {
	s := &Service{
		submitter:    submitter,
		profiles:     profiles,
		credentials:  opts.Credentials,
		confirmDelay: opts.ConfirmDelay,
		now:          opts.Now,
		orderID:      opts.OrderIDs,
		logger:       logger,
	}
	if s.confirmDelay <= 0 {
		s.confirmDelay = 2 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.orderID == nil {
		s.orderID = NewOrderIDs().Next
	}
	return s
}

// Status is the observable checkout state of one session.
type Status struct {
	State   string `json:"state"`
	OrderID string `json:"order_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Receipt describes a submitted order.
type Receipt struct {
	OrderID  string          `json:"order_id"`
	Total    decimal.Decimal `json:"total"`
	Response json.RawMessage `json:"response,omitempty"`
}

// Checkout is one session's submission state machine:
// IDLE → SUBMITTING → SUCCESS → IDLE, or SUBMITTING → FAILED → IDLE.
type Checkout struct {
	svc     *Service
	cart    *cart.Cart
	tableNo string

	mu       sync.Mutex
	status   Status
	timer    *time.Timer
	onChange func(Status)
}

// New creates an idle Checkout for c. tableNo is sent as the order's
// table number.
func (s *Service) New(c *cart.Cart, tableNo string) *Checkout {
	return &Checkout{
		svc:     s,
		cart:    c,
		tableNo: tableNo,
		status:  Status{State: enum.CheckoutIdle},
	}
}

// OnChange registers fn to be called after every state transition. fn runs
// without the checkout lock held.
func (c *Checkout) OnChange(fn func(Status)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Checkout) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Submit validates form, builds the order from the current cart and posts
// it. An invalid form or empty cart is refused without any network call.
// On success the ordered lines and the coupon leave the cart, and the state
// returns to IDLE after the confirmation delay. Anything added while the
// order was in flight stays in the cart. On failure the cart is kept and
// the state returns to IDLE at once, so the same form can be resubmitted.
func (c *Checkout) Submit(ctx context.Context, form Form) (*Receipt, error) {
	c.mu.Lock()
	if c.status.State != enum.CheckoutIdle {
		c.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	if err := form.Validate(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	lines, totals, taxes := c.cart.Priced()
	if len(lines) == 0 {
		c.mu.Unlock()
		return nil, ErrEmptyCart
	}
	orderID := c.svc.orderID()
	notify := c.setLocked(Status{State: enum.CheckoutSubmitting, OrderID: orderID})
	c.mu.Unlock()
	notify()

	order := BuildPayload(PayloadInput{
		Credentials: c.svc.credentials,
		Restaurant:  c.svc.profiles.Resolve(ctx),
		Form:        form,
		TableNo:     c.tableNo,
		Lines:       lines,
		Totals:      totals,
		Taxes:       taxes,
		OrderID:     orderID,
		Now:         c.svc.now(),
	})

	resp, err := c.svc.submitter.Submit(ctx, order)
	if err != nil {
		c.svc.logger.Error("submit order",
			zap.String("order_id", orderID),
			zap.String("table_no", c.tableNo),
			zap.Error(err))
		c.finish(Status{State: enum.CheckoutFailed, OrderID: orderID, Error: err.Error()})
		c.finish(Status{State: enum.CheckoutIdle, Error: err.Error()})
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}

	c.svc.logger.Info("order submitted",
		zap.String("order_id", orderID),
		zap.String("table_no", c.tableNo),
		zap.String("total", totals.GrandTotal.StringFixed(2)),
		zap.Int("items", totals.TotalItems))

	c.cart.Settle(lines)
	c.finish(Status{State: enum.CheckoutSuccess, OrderID: orderID})

	c.mu.Lock()
	c.timer = time.AfterFunc(c.svc.confirmDelay, func() {
		c.mu.Lock()
		if c.status.State != enum.CheckoutSuccess {
			c.mu.Unlock()
			return
		}
		notify := c.setLocked(Status{State: enum.CheckoutIdle})
		c.mu.Unlock()
		notify()
	})
	c.mu.Unlock()

	return &Receipt{OrderID: orderID, Total: totals.GrandTotal, Response: resp}, nil
}

// Close stops a pending return to IDLE.
func (c *Checkout) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Checkout) finish(s Status) {
	c.mu.Lock()
	notify := c.setLocked(s)
	c.mu.Unlock()
	notify()
}

// setLocked must be called with c.mu held. The returned func delivers the
// change notification and must be called after unlocking.
func (c *Checkout) setLocked(s Status) func() {
	c.status = s
	fn := c.onChange
	return func() {
		if fn != nil {
			fn(s)
		}
	}
}
