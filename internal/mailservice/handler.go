package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/blogstack/internal/common"
	"golang.org/x/exp/rand"
)

const welcomeTemplate = "welcome_email.html"

type Option func(*MailService)

// WithResultHook registers fn to be called with OutcomeSent or OutcomeFailed for every event.
func WithResultHook(fn func(outcome string)) Option {
	return func(s *MailService) {
		s.onResult = fn
	}
}

func NewMailService(mb common.MessageConsumer, cfg Config, logger MailLogger, opts ...Option) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &MailService{
		mb:        mb,
		m:         NewMailer(cfg, NewTemplate()),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		baseDelay: defaultBaseDelay,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SendWelcomeEmail consumes user.created events in the background and mails every new
// account a welcome message. It returns once the consumer is registered.
func (s *MailService) SendWelcomeEmail() error {
	msgs, err := s.mb.Consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue)
	if err != nil {
		return err
	}

	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handle(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping SendWelcomeEmail due to context cancellation")
				return
			}
		}
	}()

	return nil
}

// handle acks every processed delivery: a malformed body or an exhausted retry budget must
// not block the queue. A delivery interrupted by shutdown is requeued instead.
func (s *MailService) handle(msg amqp.Delivery) {
	if !s.process(msg.Body) {
		if err := msg.Nack(false, true); err != nil {
			s.logger.Error("could not requeue message", slog.String("error", err.Error()))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		s.logger.Error("could not ack message", slog.String("error", err.Error()))
	}
}

// process reports false when shutdown interrupted it before an outcome was reached.
func (s *MailService) process(body []byte) bool {
	var event common.UserCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		s.result(OutcomeFailed)
		return true
	}

	payload := welcomeData{
		Fullname:   event.Fullname,
		Username:   event.Username,
		GoogleAuth: event.GoogleAuth,
	}

	// exponential backoff with jitter
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := s.m.send(event.Email, payload, welcomeTemplate)
		if err == nil {
			s.logger.Info("welcome email sent", slog.String("email", event.Email))
			s.result(OutcomeSent)
			return true
		}

		if attempt == maxRetries-1 {
			break
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying welcome email", slog.String("email", event.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			s.logger.Info("welcome email interrupted by shutdown", slog.String("email", event.Email))
			return false
		}
	}

	s.logger.Error("could not send welcome email", slog.String("email", event.Email))
	s.result(OutcomeFailed)
	return true
}

func (s *MailService) result(outcome string) {
	if s.onResult != nil {
		s.onResult(outcome)
	}
}

// Close stops the consumer and waits for it to exit.
func (s *MailService) Close() {
	s.cancel()
	if s.done != nil {
		<-s.done
	}
}
