package jobs

import (
	"context"

	"smartkheti_backend/internal/config"

	"go.uber.org/zap"
)

// OTPPurger deletes expired password reset codes.
type OTPPurger interface {
	PurgeExpiredOTPs(ctx context.Context) (int64, error)
}

// OTPPurgeJob removes OTP requests older than the OTP expiry window.
type OTPPurgeJob struct {
	users  OTPPurger
	spec   string
	logger *zap.Logger
}

func NewOTPPurgeJob(users OTPPurger, cfg *config.Config, logger *zap.Logger) *OTPPurgeJob {
	return &OTPPurgeJob{users: users, spec: cfg.OTPPurgeJobSchedule, logger: logger.Named("OTPPurgeJob")}
}

func (j *OTPPurgeJob) Name() string { return "otp-purge" }
func (j *OTPPurgeJob) Spec() string { return j.spec }

func (j *OTPPurgeJob) Run(ctx context.Context) error {
	n, err := j.users.PurgeExpiredOTPs(ctx)
	if err != nil {
		return err
	}
	j.logger.Info("Expired OTPs purged", zap.Int64("otps_purged", n))
	return nil
}
