package cache

import (
	"context"
	"time"
)

// Cache abstrai o armazenamento compartilhado de curta duração usado pelo
// ciclo de vida dos tokens: leitura rápida de tokens válidos e o lock
// distribuído que garante um único refresh por credencial.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// AcquireLock tenta adquirir o lock via SETNX. Retorna o token de posse
	// quando adquirido; ok=false significa que outro processo detém o lock.
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// ReleaseLock libera o lock apenas se o token de posse ainda for o nosso,
	// evitando apagar um lock que expirou e foi readquirido por outro processo.
	ReleaseLock(ctx context.Context, key, token string) error
}
