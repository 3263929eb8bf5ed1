package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/cache"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
	"github.com/smallbiznis/invoicedesk/internal/invoice/schema"
	obslogger "github.com/smallbiznis/invoicedesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"github.com/smallbiznis/invoicedesk/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log         *zap.Logger
	Repo        domain.Repository
	Clock       clock.Clock
	Revalidator cache.Revalidator
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

// Service is the invoice mutation orchestrator.
type Service struct {
	log         *zap.Logger
	repo        domain.Repository
	clock       clock.Clock
	revalidator cache.Revalidator
	metrics     *obsmetrics.Metrics
	tracer      trace.Tracer
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:         p.Log.Named("invoice.service"),
		repo:        p.Repo,
		clock:       p.Clock,
		revalidator: p.Revalidator,
		metrics:     p.Metrics,
		tracer:      otel.Tracer("invoicedesk/invoice"),
	}
}

func (s *Service) Create(ctx context.Context, input domain.FormInput) (domain.MutationResult, error) {
	ctx, span, log, done := s.begin(ctx, domain.OperationCreate)
	defer span.End()

	res := schema.Validate(input)
	if !res.OK() {
		return domain.MutationResult{}, done(s.invalid(log, domain.OperationCreate, res.Errors))
	}

	id, err := s.repo.Insert(ctx, domain.InsertParams{
		CustomerID:       res.Record.CustomerID,
		AmountMinorUnits: format.ToMinorUnits(res.Record.Amount),
		Status:           res.Record.Status,
		Date:             clock.Today(s.clock),
	})
	if err != nil {
		return domain.MutationResult{}, done(s.persistenceFailure(log, domain.OperationCreate, err))
	}

	log.Info("invoice created", zap.String("invoice_id", id.String()))
	return s.commit(ctx, log, id, 1, true), done(nil)
}

func (s *Service) Update(ctx context.Context, rawID string, input domain.FormInput) (domain.MutationResult, error) {
	ctx, span, log, done := s.begin(ctx, domain.OperationUpdate)
	defer span.End()

	id, err := parseID(rawID)
	if err != nil {
		return domain.MutationResult{}, done(err)
	}
	log = log.With(zap.String("invoice_id", id.String()))

	res := schema.Validate(input)
	if !res.OK() {
		return domain.MutationResult{}, done(s.invalid(log, domain.OperationUpdate, res.Errors))
	}

	rows, err := s.repo.Update(ctx, id, domain.UpdateParams{
		CustomerID:       res.Record.CustomerID,
		AmountMinorUnits: format.ToMinorUnits(res.Record.Amount),
		Status:           res.Record.Status,
	})
	if err != nil {
		return domain.MutationResult{}, done(s.persistenceFailure(log, domain.OperationUpdate, err))
	}
	if rows == 0 {
		log.Info("invoice update matched no rows")
	}

	span.SetAttributes(attribute.Int64("invoice.rows_affected", rows))
	return s.commit(ctx, log, id, rows, true), done(nil)
}

func (s *Service) Delete(ctx context.Context, rawID string) (domain.MutationResult, error) {
	ctx, span, log, done := s.begin(ctx, domain.OperationDelete)
	defer span.End()

	id, err := parseID(rawID)
	if err != nil {
		return domain.MutationResult{}, done(err)
	}
	log = log.With(zap.String("invoice_id", id.String()))

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return domain.MutationResult{}, done(s.persistenceFailure(log, domain.OperationDelete, err))
	}
	if rows == 0 {
		log.Info("invoice delete matched no rows")
	}

	span.SetAttributes(attribute.Int64("invoice.rows_affected", rows))
	return s.commit(ctx, log, id, rows, false), done(nil)
}

// begin tags ctx with a correlation id and starts the span. The returned done
// records the outcome of err on the span and the mutation metrics.
func (s *Service) begin(ctx context.Context, op domain.Operation) (context.Context, trace.Span, *zap.Logger, func(error) error) {
	start := time.Now()
	ctx, correlationID := correlation.EnsureCorrelationID(ctx)
	ctx, span := s.tracer.Start(ctx, "invoice."+string(op),
		trace.WithAttributes(attribute.String("invoice.operation", string(op))))
	log := obslogger.WithContext(ctx, s.log).With(
		zap.String("operation", string(op)),
		zap.String("correlation_id", correlationID),
	)

	done := func(err error) error {
		outcome := outcomeOf(err)
		span.SetAttributes(attribute.String("invoice.outcome", outcome))
		if outcome != obsmetrics.OutcomeSuccess && outcome != obsmetrics.OutcomeValidation {
			span.SetStatus(codes.Error, outcome)
		}
		s.metrics.RecordMutation(ctx, string(op), outcome, time.Since(start))
		return err
	}
	return ctx, span, log, done
}

func (s *Service) invalid(log *zap.Logger, op domain.Operation, errs domain.FieldErrors) error {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	log.Debug("invoice form rejected", zap.Strings("fields", fields))
	return &domain.FormError{State: domain.FormState{
		Errors:  errs,
		Message: domain.MissingFieldsMessage(op),
	}}
}

func (s *Service) persistenceFailure(log *zap.Logger, op domain.Operation, err error) error {
	kind := db.Classify(err)
	log.Error("invoice persistence failed", zap.String("kind", kind), zap.Error(err))
	return &domain.PersistenceError{
		Op:      op,
		Kind:    kind,
		Message: domain.DatabaseErrorMessage(op),
		Err:     err,
	}
}

// commit runs only after the gateway reported success. A failed invalidation
// does not undo the mutation; it is logged and counted.
func (s *Service) commit(ctx context.Context, log *zap.Logger, id snowflake.ID, rows int64, redirect bool) domain.MutationResult {
	paths := []string{domain.InvoicesPath}
	if s.revalidator != nil {
		if err := s.revalidator.Revalidate(ctx, paths...); err != nil {
			log.Warn("cache revalidation failed", zap.Strings("paths", paths), zap.Error(err))
			s.metrics.RecordRevalidation(ctx, obsmetrics.OutcomeFailed)
		} else {
			s.metrics.RecordRevalidation(ctx, obsmetrics.OutcomeSuccess)
		}
	}

	result := domain.MutationResult{
		InvoiceID:    id,
		RowsAffected: rows,
		Revalidate:   paths,
	}
	if redirect {
		result.RedirectTo = domain.InvoicesPath
	}
	return result
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func outcomeOf(err error) string {
	var (
		formErr    *domain.FormError
		persistErr *domain.PersistenceError
	)
	switch {
	case err == nil:
		return obsmetrics.OutcomeSuccess
	case errors.As(err, &formErr):
		return obsmetrics.OutcomeValidation
	case errors.As(err, &persistErr):
		return obsmetrics.OutcomeDatabase
	case errors.Is(err, domain.ErrInvalidID):
		return obsmetrics.OutcomeInvalidID
	default:
		return obsmetrics.OutcomeFailed
	}
}
