package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/usecase"
)

const defaultTimeout = 15 * time.Second

// 注文の通知はリクエストから切り離して裏で送る。
// 失敗はログに出して捨てる。
type Dispatcher struct {
	log        *slog.Logger
	mailer     Mailer
	publisher  Publisher
	adminEmail string
	timeout    time.Duration
	wg         sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, mailer Mailer, publisher Publisher, adminEmail string) *Dispatcher {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Dispatcher{
		log:        log,
		mailer:     mailer,
		publisher:  publisher,
		adminEmail: adminEmail,
		timeout:    defaultTimeout,
	}
}

func (d *Dispatcher) OrderPlaced(ctx context.Context, ev usecase.OrderPlacedEvent) {
	d.goDetached(ctx, func(ctx context.Context) {
		if mail, err := orderConfirmationMail(ev); err != nil {
			d.log.Warn("render order confirmation failed", "order_number", ev.OrderNumber, "err", err)
		} else if err := d.mailer.Send(ctx, mail); err != nil {
			d.log.Warn("send order confirmation failed", "order_number", ev.OrderNumber, "err", err)
		}

		if err := d.publisher.Publish(ctx, Event{Type: EventOrderPlaced, Key: ev.OrderNumber, Payload: ev}); err != nil {
			d.log.Warn("publish order.placed failed", "order_number", ev.OrderNumber, "err", err)
		}
	})
}

func (d *Dispatcher) OrderStatusChanged(ctx context.Context, ev usecase.OrderStatusChangedEvent) {
	d.goDetached(ctx, func(ctx context.Context) {
		if ev.Email != "" {
			if mail, err := statusChangedMail(ev); err != nil {
				d.log.Warn("render status mail failed", "order_number", ev.OrderNumber, "err", err)
			} else if err := d.mailer.Send(ctx, mail); err != nil {
				d.log.Warn("send status mail failed", "order_number", ev.OrderNumber, "err", err)
			}
		}

		if err := d.publisher.Publish(ctx, Event{Type: EventOrderStatusChanged, Key: ev.OrderNumber, Payload: ev}); err != nil {
			d.log.Warn("publish order.status_changed failed", "order_number", ev.OrderNumber, "err", err)
		}
	})
}

// 問い合わせは同期で送る（送れなかったら呼び出し側に返す）
func (d *Dispatcher) ContactReceived(ctx context.Context, msg usecase.ContactMessage) error {
	mails, err := contactMails(d.adminEmail, msg)
	if err != nil {
		return err
	}
	for _, m := range mails {
		if m.To == "" {
			continue
		}
		if err := d.mailer.Send(ctx, m); err != nil {
			d.log.Error("send contact mail failed", "to", m.To, "err", err)
			return err
		}
	}
	return nil
}

// 送信中の通知を待つ（shutdownとテスト用）
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) goDetached(parent context.Context, fn func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("notification panic", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.timeout)
		defer cancel()
		fn(ctx)
	}()
}
