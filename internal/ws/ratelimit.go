package ws

import (
	"sync"
	"time"
)

type limiterEntry struct {
	count   int
	resetAt time.Time
}

// MessageLimiter — счетчик сообщений с фиксированным окном на соединение.
// Владеет шлюз одного процесса: все соединения с данным ключом живут здесь,
// поэтому счетчик осмыслен. При горизонтальном масштабировании его место
// занял бы распределенный стор за тем же интерфейсом.
type MessageLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string]*limiterEntry

	now func() time.Time // подменяется в тестах
}

func NewMessageLimiter(window time.Duration, max int) *MessageLimiter {
	return &MessageLimiter{
		window:  window,
		max:     max,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

// Allow увеличивает счетчик ключа и сообщает, уложилось ли событие в лимит.
// Окно сбрасывается при первой проверке после истечения предыдущего.
func (l *MessageLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &limiterEntry{resetAt: now.Add(l.window)}
		l.entries[key] = entry
	}

	entry.count++
	return entry.count <= l.max
}

// Forget выбрасывает состояние ключа (при разрыве соединения)
func (l *MessageLimiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}
