package user

import (
	"context"

	"go.uber.org/zap"
)

// OTPSender delivers a one-time password to a phone number.
type OTPSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// LogOTPSender writes codes to the log. It stands in until an SMS gateway is configured.
type LogOTPSender struct {
	logger *zap.Logger
}

func NewLogOTPSender(logger *zap.Logger) *LogOTPSender {
	return &LogOTPSender{logger: logger.Named("OTPSender")}
}

func (s *LogOTPSender) SendOTP(_ context.Context, phone, code string) error {
	s.logger.Info("OTP issued", zap.String("phone", phone), zap.String("otp", code))
	return nil
}
