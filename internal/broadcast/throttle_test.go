package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// capturePublisher registra as cargas publicadas, em ordem.
type capturePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *capturePublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, append([]byte(nil), payload...))
	return nil
}

func (p *capturePublisher) published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.payloads))
	copy(out, p.payloads)
	return out
}

// mutableSource simula o estado corrente de odds que muda entre
// notificações.
type mutableSource struct {
	mu      sync.Mutex
	current []byte
}

func (s *mutableSource) set(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = []byte(v)
}

func (s *mutableSource) read(context.Context, string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

func newTestThrottler(window time.Duration) (*Throttler, *capturePublisher, *mutableSource) {
	pub := &capturePublisher{}
	src := &mutableSource{current: []byte("v0")}
	th := NewThrottler(zap.NewNop(), NewMemoryLease(), pub, src.read, window)
	return th, pub, src
}

func TestThrottlerPublishesImmediatelyWhenIdle(t *testing.T) {
	th, pub, _ := newTestThrottler(time.Second)

	th.Notify(context.Background(), "race-1")

	got := pub.published()
	require.Len(t, got, 1)
	assert.Equal(t, "v0", string(got[0]))
}

// N mudanças dentro de uma janela: exatamente 1 publicação imediata e 1
// atrasada, e a atrasada reflete o estado do momento do disparo.
func TestThrottlerCoalescesBurstIntoTrailingPublish(t *testing.T) {
	const window = 80 * time.Millisecond
	th, pub, src := newTestThrottler(window)
	ctx := context.Background()

	th.Notify(ctx, "race-1") // IDLE -> publica v0, abre janela
	for i := 0; i < 5; i++ {
		src.set("stale")
		th.Notify(ctx, "race-1") // THROTTLED/THROTTLED_PENDING
	}
	src.set("final")

	// ainda dentro da janela: só a publicação imediata saiu
	assert.Len(t, pub.published(), 1)

	// após o fim da janela a publicação atrasada dispara uma única vez
	assert.Eventually(t, func() bool {
		return len(pub.published()) == 2
	}, time.Second, 5*time.Millisecond)

	got := pub.published()
	require.Len(t, got, 2)
	assert.Equal(t, "v0", string(got[0]))
	assert.Equal(t, "final", string(got[1]), "trailing publish must re-read the latest state")

	// nada mais depois: era exatamente uma atrasada
	time.Sleep(2 * window)
	assert.Len(t, pub.published(), 2)
}

// Após a publicação atrasada a janela reabre: nova mudança agenda outra
// atrasada em vez de publicar na hora.
func TestThrottlerReopensWindowAfterTrailingFire(t *testing.T) {
	const window = 60 * time.Millisecond
	th, pub, src := newTestThrottler(window)
	ctx := context.Background()

	th.Notify(ctx, "race-1")
	th.Notify(ctx, "race-1")

	require.Eventually(t, func() bool {
		return len(pub.published()) == 2
	}, time.Second, 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond) // deixa o disparo renovar a janela

	src.set("after-trailing")
	th.Notify(ctx, "race-1") // janela renovada pelo disparo atrasado

	// publicação imediata não acontece dentro da janela renovada
	assert.Len(t, pub.published(), 2)

	require.Eventually(t, func() bool {
		return len(pub.published()) == 3
	}, time.Second, 5*time.Millisecond)
	got := pub.published()
	assert.Equal(t, "after-trailing", string(got[2]))
}

func TestThrottlerIsolatesRaces(t *testing.T) {
	th, pub, _ := newTestThrottler(time.Second)
	ctx := context.Background()

	th.Notify(ctx, "race-1")
	th.Notify(ctx, "race-2") // outra corrida, janela própria

	assert.Len(t, pub.published(), 2)
}

func TestPublishNowBypassesThrottle(t *testing.T) {
	th, pub, _ := newTestThrottler(time.Second)
	ctx := context.Background()

	th.Notify(ctx, "race-1")
	require.NoError(t, th.PublishNow(ctx, []byte(`{"type":"RACE_CLOSED","raceId":"race-1"}`)))

	assert.Len(t, pub.published(), 2)
}

func TestMemoryLease(t *testing.T) {
	l := NewMemoryLease()
	ctx := context.Background()

	ok, err := l.Acquire(ctx, "k", 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = l.Acquire(ctx, "k", 50*time.Millisecond)
	assert.False(t, ok, "second acquire within TTL must fail")

	d, _ := l.RemainingTTL(ctx, "k")
	assert.Greater(t, d, time.Duration(0))

	require.NoError(t, l.Release(ctx, "k"))
	ok, _ = l.Acquire(ctx, "k", 50*time.Millisecond)
	assert.True(t, ok, "acquire after release must succeed")

	// expira sozinho via TTL
	time.Sleep(60 * time.Millisecond)
	ok, _ = l.Acquire(ctx, "k", 50*time.Millisecond)
	assert.True(t, ok)
}
