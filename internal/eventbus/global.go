package eventbus

import "context"

var globalBus EventBus

// Init устанавливает глобальную шину.
func Init(bus EventBus) { globalBus = bus }

// Publish отправляет событие в глобальную шину, если она инициализирована.
func Publish(ctx context.Context, ev *Envelope) error {
	if globalBus == nil {
		return nil
	}
	return globalBus.Publish(ctx, ev)
}

// Subscribe подписывает обработчик через глобальную шину.
// Без инициализированной шины возвращает nil-подписку.
func Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	if globalBus == nil {
		return noopSub{}, nil
	}
	return globalBus.Subscribe(ctx, f, h)
}

type noopSub struct{}

func (noopSub) Unsubscribe() {}
