package payment

import (
	"context"
	"errors"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
)

// ProcessNotification applies one authenticated, decoded provider
// callback. The delivery layer has already verified the signature over
// the raw body; anything that reaches this point is genuine.
//
// An unknown out-trade-no is acknowledged without any mutation: it is
// not worth the provider retrying indefinitely. A terminal payment is
// likewise acknowledged as a replay no-op.
func (uc *DefaultPaymentUsecase) ProcessNotification(ctx context.Context, provider domain.PaymentMethod, result *domain.NotifyResult) error {
	record, err := uc.PaymentRepo.GetPaymentByOutTradeNo(result.OutTradeNo)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		uc.Metrics.RecordCallback(string(provider), "unknown")
		return nil
	}
	if err != nil {
		return err
	}

	if record.Status.IsTerminal() {
		uc.Metrics.RecordCallback(string(provider), "replay")
		return nil
	}

	if err := uc.applyTradeStatus(record, result.Status, result.TransactionID); err != nil {
		return err
	}

	uc.Metrics.RecordCallback(string(provider), string(result.Status))
	return nil
}
