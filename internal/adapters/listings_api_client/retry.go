package listings_api_client

import (
	"context"
	"errors"
	"fmt"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrContractViolation - ответ API не совпадает с ожидаемой JSON-схемой.
var ErrContractViolation = errors.New("response violates contract")

func contractError(err error) error {
	return fmt.Errorf("%w: %w: %v", domain.ErrRemoteCall, ErrContractViolation, err)
}

func statusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// isPermanent - повтор не поможет: ошибка клиента или битый контракт.
func isPermanent(err error) bool {
	if code := statusCode(err); code >= 400 && code < 500 {
		return true
	}
	return errors.Is(err, ErrContractViolation)
}

// withReadRetry повторяет операцию чтения с постоянным интервалом, не более retryMax раз.
// Запросы на запись через этот хелпер не проходят.
func (c *Client) withReadRetry(ctx context.Context, logger port.LoggerPort, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryInterval), c.retryMax),
		ctx,
	)

	attempt := 0
	operation := func() error {
		attempt++
		err := op()
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("Read request failed, retrying", port.Fields{
			"attempt":  attempt,
			"retry_in": next.String(),
			"error":    err.Error(),
		})
	}

	return backoff.RetryNotify(operation, policy, notify)
}
