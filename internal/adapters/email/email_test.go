package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablereservations/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleData() *domain.ReservationEmailData {
	return &domain.ReservationEmailData{
		ReservationID:  "res-1",
		CustomerName:   "Ada <Lovelace>",
		Email:          "ada@example.com",
		TimeSlot:       time.Date(2030, 3, 4, 18, 30, 0, 0, time.UTC),
		FormattedTime:  "March 04, 2030 at 06:30 PM",
		TableNumber:    12,
		NumberOfGuests: 4,
	}
}

func TestTemplateRenderer_RendersEveryTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	for _, name := range []string{
		"reservation_confirmation",
		"reservation_cancellation",
		"reservation_updated",
		"admin_new_reservation",
	} {
		t.Run(name, func(t *testing.T) {
			subject, html, text, err := r.Render(name, sampleData())
			require.NoError(t, err)
			assert.NotEmpty(t, subject)
			assert.NotContains(t, subject, "\n")
			assert.Contains(t, text, "res-1")
			assert.Contains(t, html, "res-1")
			assert.Contains(t, html, "Ada &lt;Lovelace&gt;", "html body must escape customer input")
		})
	}
}

func TestTemplateRenderer_AdminPhoneFallback(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, _, text, err := r.Render("admin_new_reservation", sampleData())
	require.NoError(t, err)
	assert.Contains(t, text, "Phone: not provided")

	data := sampleData()
	data.Phone = "555-0100"
	_, _, text, err = r.Render("admin_new_reservation", data)
	require.NoError(t, err)
	assert.Contains(t, text, "Phone: 555-0100")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)
	_, _, _, err = r.Render("does_not_exist", sampleData())
	assert.Error(t, err)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, MailerConfig{FromAddress: "noreply@example.com", FromName: "Cafe"}, discardLogger())

	err := m.Send(context.Background(), "ada@example.com", "Hello", "<p>hi</p>", "")
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "Cafe <noreply@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"ada@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hello", aws.ToString(client.input.Message.Subject.Data))
	require.NotNil(t, client.input.Message.Body.Html)
	assert.Nil(t, client.input.Message.Body.Text)
}

func TestSESMailer_SendError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	m := newSESMailer(client, MailerConfig{FromAddress: "noreply@example.com"}, discardLogger())

	err := m.Send(context.Background(), "ada@example.com", "Hello", "", "hi")
	require.Error(t, err)
	assert.Equal(t, "noreply@example.com", aws.ToString(client.input.Source))
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, discardLogger())
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), "a@b.co", "s", "", "t"))

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)

	_, err = NewMailer(MailerConfig{Provider: "ses"}, discardLogger())
	assert.Error(t, err, "ses without a from address")

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "noreply@example.com", SES: SESConfig{Region: "us-east-1"}}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}
