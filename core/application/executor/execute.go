package executor

import (
	"context"
	"net/http"
	"time"

	"github.com/hyperterse/druidfamiliar/core/domain/interfaces"
	"github.com/hyperterse/druidfamiliar/core/infrastructure/logging"
	"github.com/hyperterse/druidfamiliar/core/observability"
	ctxutil "github.com/hyperterse/druidfamiliar/core/shared/context"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

// ExecuteQuery runs one query round-trip through e: it validates params,
// generates the query, sends exactly one request and hands the response to
// handler. Every failure is returned unchanged to the caller; nothing is
// retried or cached.
func ExecuteQuery[T any](
	ctx context.Context,
	e *Executor,
	generator interfaces.QueryGenerator,
	params interfaces.QueryParameters,
	handler interfaces.ResponseHandler[T],
) (result T, err error) {
	log := logging.New("executor")
	method := e.method
	start := time.Now()

	ctx, span := observability.StartQuerySpan(ctx, method, e.BaseURL())
	defer func() {
		observability.EndQuerySpan(span, err)
		e.metrics.ObserveQuery(method, err, time.Since(start))
	}()

	if generator == nil || params == nil || handler == nil {
		return result, errors.Validation("query generator, parameters and response handler are required", nil)
	}

	resp, err := e.send(ctx, generator, params)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	observability.RecordStatus(span, resp.StatusCode)
	e.metrics.ObserveStatus(resp.StatusCode)

	log.Debugf("Handling response (status %d)", resp.StatusCode)
	result, err = handler.HandleResponse(resp)
	if err != nil {
		log.Debugf("Response handling failed: %v", err)
		return result, err
	}

	log.Debugf("Query completed in %s", time.Since(start))
	return result, nil
}

// Execute is ExecuteQuery for handlers that produce untyped results
func (e *Executor) Execute(
	ctx context.Context,
	generator interfaces.QueryGenerator,
	params interfaces.QueryParameters,
	handler interfaces.ResponseHandler[any],
) (any, error) {
	return ExecuteQuery(ctx, e, generator, params, handler)
}

// send performs validation, generation and the HTTP exchange. The caller owns
// the returned response body.
func (e *Executor) send(ctx context.Context, generator interfaces.QueryGenerator, params interfaces.QueryParameters) (*http.Response, error) {
	log := logging.New("executor")
	if queryID := ctxutil.GetQueryID(ctx); queryID != "" {
		log.Debugf("Query ID: %s", queryID)
	}

	log.Debugf("Validating query parameters")
	if err := params.Validate(); err != nil {
		log.Debugf("Parameter validation failed: %v", err)
		if errors.IsValidationError(err) {
			return nil, err
		}
		return nil, errors.Validation("query parameters failed validation", err)
	}

	log.Debugf("Generating query")
	query, err := generator.GenerateQuery(params)
	if err != nil {
		log.Debugf("Query generation failed: %v", err)
		if errors.IsGenerationError(err) {
			return nil, err
		}
		return nil, errors.WrapError(errors.ErrCodeGenerationError, "query generation failed", err)
	}

	req, err := e.CreateRequest(ctx, query)
	if err != nil {
		log.Debugf("Failed to build request: %v", err)
		return nil, err
	}

	log.Debugf("Sending %s %s", req.Method, req.URL.Redacted())
	resp, err := e.client.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		log.Debugf("Query execution failed: %v", err)
		return nil, errors.NewQueryExecutionError(req, err)
	}
	return resp, nil
}
