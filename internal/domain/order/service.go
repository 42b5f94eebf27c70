package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
)

const instrumentationName = "github.com/DianaBudova/AdvertisingAgency/internal/domain/order"

// ErrEmptyOrder is returned when an order is requested without lines.
var ErrEmptyOrder = apperr.Validation("order must contain at least one service")

// CreateRequest holds the input for placing an order.
type CreateRequest struct {
	UserID int64
	Lines  []LineRequest
}

// Options configures optional Service dependencies. Zero values fall back
// to no-op implementations.
type Options struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Service implements order placement, status transitions and repricing.
//
// Each operation runs in its own Session and commits exactly once on
// success. Any failure rolls the session back.
type Service struct {
	uow       UnitOfWork
	publisher Publisher
	now       func() time.Time

	tracer          trace.Tracer
	created         metric.Int64Counter
	statusChanged   metric.Int64Counter
	discountApplied metric.Int64Counter
}

// NewService creates an order Service.
func NewService(uow UnitOfWork, publisher Publisher, opts Options) (*Service, error) {
	if opts.TracerProvider == nil {
		opts.TracerProvider = tracenoop.NewTracerProvider()
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = metricnoop.NewMeterProvider()
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}

	meter := opts.MeterProvider.Meter(instrumentationName)
	s := &Service{
		uow:       uow,
		publisher: publisher,
		now:       time.Now,
		tracer:    opts.TracerProvider.Tracer(instrumentationName),
	}

	var err error
	if s.created, err = meter.Int64Counter("agency.orders.created",
		metric.WithDescription("Orders placed"),
	); err != nil {
		return nil, errors.Wrap(err, "orders created counter")
	}
	if s.statusChanged, err = meter.Int64Counter("agency.orders.status_changed",
		metric.WithDescription("Order status transitions"),
	); err != nil {
		return nil, errors.Wrap(err, "status changed counter")
	}
	if s.discountApplied, err = meter.Int64Counter("agency.orders.discounts_applied",
		metric.WithDescription("Discounts applied to existing orders"),
	); err != nil {
		return nil, errors.Wrap(err, "discounts applied counter")
	}

	return s, nil
}

// CreateOrder prices the requested lines with the discounts active now and
// stores the order in progress. Only registered customers may place orders.
func (s *Service) CreateOrder(ctx context.Context, req CreateRequest) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.CreateOrder",
		trace.WithAttributes(attribute.Int64("user.id", req.UserID)),
	)
	defer func() { endSpan(span, rerr) }()

	sess, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin session")
	}
	defer func() { _ = sess.Rollback(ctx) }()

	user, err := lookupActor(ctx, sess.Users(), req.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Role.CanPlaceOrders() {
		return nil, apperr.Forbidden("only registered users can place orders")
	}
	if len(req.Lines) == 0 {
		return nil, ErrEmptyOrder
	}

	fetched, err := sess.Services().GetByIDs(ctx, requestedIDs(req.Lines))
	if err != nil {
		return nil, errors.Wrap(err, "get services")
	}

	// Discounts are loaded once per order.
	all, err := sess.Discounts().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list discounts")
	}
	now := s.now()

	lines, total, err := PriceLines(req.Lines, catalog.Index(fetched), discount.Active(all, now), now)
	if err != nil {
		return nil, err
	}

	o := &Order{
		UserID:    req.UserID,
		CreatedAt: now,
		Total:     total,
		Status:    StatusInProgress,
		Lines:     lines,
	}
	if err := sess.Orders().Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	if err := sess.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	s.created.Add(ctx, 1)
	zctx.From(ctx).Info("Order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", o.UserID),
		zap.Int("lines", len(o.Lines)),
		zap.Stringer("total", o.Total),
	)
	s.publish(ctx, o, EventCreated, 0)

	return o, nil
}

// GetOrder returns a single order. Actors without elevated rights may only
// read their own orders.
func (s *Service) GetOrder(ctx context.Context, orderID, actorID int64) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.GetOrder",
		trace.WithAttributes(attribute.Int64("order.id", orderID)),
	)
	defer func() { endSpan(span, rerr) }()

	sess, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin session")
	}
	defer func() { _ = sess.Rollback(ctx) }()

	o, err := sess.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", orderID)
	}
	actor, err := lookupActor(ctx, sess.Users(), actorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessOrderOf(o.UserID) {
		return nil, apperr.Forbidden("cannot view others' orders")
	}

	return o, nil
}

// GetUserOrders lists the orders of userID. Actors without elevated rights
// may only list their own.
func (s *Service) GetUserOrders(ctx context.Context, userID, actorID int64) (_ []Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.GetUserOrders",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer func() { endSpan(span, rerr) }()

	sess, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin session")
	}
	defer func() { _ = sess.Rollback(ctx) }()

	actor, err := lookupActor(ctx, sess.Users(), actorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessOrderOf(userID) {
		return nil, apperr.Forbidden("cannot view others' orders")
	}

	orders, err := sess.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "list orders of user %d", userID)
	}
	return orders, nil
}

// ChangeOrderStatus moves an order to the named status. Lines and total are
// left untouched.
func (s *Service) ChangeOrderStatus(ctx context.Context, orderID int64, statusName string, actorID int64) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.ChangeOrderStatus",
		trace.WithAttributes(
			attribute.Int64("order.id", orderID),
			attribute.String("order.status", statusName),
		),
	)
	defer func() { endSpan(span, rerr) }()

	sess, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin session")
	}
	defer func() { _ = sess.Rollback(ctx) }()

	o, err := sess.Orders().GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", orderID)
	}
	actor, err := lookupActor(ctx, sess.Users(), actorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessOrderOf(o.UserID) {
		return nil, apperr.Forbidden("cannot change status of others' orders")
	}
	status, ok := ParseStatus(statusName)
	if !ok {
		return nil, apperr.Validation("invalid status value")
	}

	prev := o.Status
	o.Status = status
	if err := sess.Orders().Update(ctx, o); err != nil {
		return nil, errors.Wrapf(err, "update order %d", orderID)
	}
	if err := sess.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	s.statusChanged.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	zctx.From(ctx).Info("Order status changed",
		zap.Int64("order_id", o.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(status)),
		zap.Int64("actor_id", actorID),
	)
	s.publish(ctx, o, EventStatusChanged, 0)

	return o, nil
}

// ApplyDiscountToOrder reprices the lines of an in-progress order targeted
// by the discount. See Order.ApplyDiscount for the pricing rules. Failures
// are reported in this order: missing order, order not in progress, missing
// discount, inactive discount, then actor permission.
func (s *Service) ApplyDiscountToOrder(ctx context.Context, orderID, discountID, actorID int64) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.ApplyDiscountToOrder",
		trace.WithAttributes(
			attribute.Int64("order.id", orderID),
			attribute.Int64("discount.id", discountID),
		),
	)
	defer func() { endSpan(span, rerr) }()

	sess, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin session")
	}
	defer func() { _ = sess.Rollback(ctx) }()

	o, err := sess.Orders().GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", orderID)
	}
	if o.Status != StatusInProgress {
		return nil, errNotPending
	}
	d, err := sess.Discounts().GetByID(ctx, discountID)
	if err != nil {
		return nil, errors.Wrapf(err, "get discount %d", discountID)
	}
	now := s.now()
	if !d.IsActiveAt(now) {
		return nil, errDiscountInactive
	}

	// Ownership is checked only once the order and discount would accept
	// the change.
	actor, err := lookupActor(ctx, sess.Users(), actorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessOrderOf(o.UserID) {
		return nil, apperr.Forbidden("cannot apply discounts to others' orders")
	}

	repriced, err := o.ApplyDiscount(*d, now)
	if err != nil {
		return nil, err
	}

	if err := sess.Orders().Update(ctx, o); err != nil {
		return nil, errors.Wrapf(err, "update order %d", orderID)
	}
	if err := sess.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	s.discountApplied.Add(ctx, 1)
	zctx.From(ctx).Info("Discount applied to order",
		zap.Int64("order_id", o.ID),
		zap.Int64("discount_id", d.ID),
		zap.Int("repriced_lines", repriced),
		zap.Stringer("total", o.Total),
	)
	s.publish(ctx, o, EventDiscountApplied, d.ID)

	return o, nil
}

func (s *Service) publish(ctx context.Context, o *Order, typ EventType, discountID int64) {
	e := Event{
		Type:       typ,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.Total,
		DiscountID: discountID,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		zctx.From(ctx).Warn("Publish order event",
			zap.String("type", string(typ)),
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}
}

// lookupActor resolves the acting user. An unknown actor is a permission
// failure, not a missing resource.
func lookupActor(ctx context.Context, users identity.Repository, id int64) (*identity.User, error) {
	u, err := users.GetUser(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Forbidden("user not found")
		}
		return nil, errors.Wrapf(err, "get user %d", id)
	}
	return u, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
