package services

import (
	"context"
	"fmt"
	"log/slog"

	"tablereservations/internal/domain"
)

// Template names double as notification kinds in logs and metrics.
const (
	TemplateReservationConfirmation = "reservation_confirmation"
	TemplateReservationCancellation = "reservation_cancellation"
	TemplateReservationUpdated      = "reservation_updated"
	TemplateAdminNewReservation     = "admin_new_reservation"
)

type notificationService struct {
	mailer       domain.Mailer
	renderer     domain.EmailTemplateRenderer
	adminAddress string
	logger       *slog.Logger
}

// NewNotificationService returns a ReservationNotifier that renders templates and sends them with mailer.
// Admin alerts are skipped when adminAddress is empty.
func NewNotificationService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, adminAddress string, logger *slog.Logger) domain.ReservationNotifier {
	return &notificationService{
		mailer:       mailer,
		renderer:     renderer,
		adminAddress: adminAddress,
		logger:       logger,
	}
}

func (s *notificationService) SendReservationConfirmation(ctx context.Context, data *domain.ReservationEmailData) error {
	return s.send(ctx, TemplateReservationConfirmation, data, data.Email)
}

func (s *notificationService) SendReservationCancellation(ctx context.Context, data *domain.ReservationEmailData) error {
	return s.send(ctx, TemplateReservationCancellation, data, data.Email)
}

func (s *notificationService) SendReservationUpdate(ctx context.Context, data *domain.ReservationEmailData) error {
	return s.send(ctx, TemplateReservationUpdated, data, data.Email)
}

func (s *notificationService) SendAdminNewReservation(ctx context.Context, data *domain.ReservationEmailData) error {
	if s.adminAddress == "" {
		return nil
	}
	return s.send(ctx, TemplateAdminNewReservation, data, s.adminAddress)
}

func (s *notificationService) send(ctx context.Context, template string, data *domain.ReservationEmailData, to string) error {
	if data == nil {
		return fmt.Errorf("%s data is nil", template)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "reservation_id", data.ReservationID)
	return nil
}
