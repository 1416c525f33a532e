package authinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/go-redis/redis/v8"
	"github.com/nexaedu/campus/iam/auth"
	"github.com/nexaedu/campus/pkg/kernel"
)

const sessionKeyPrefix = "sessao:"

// RedisSessionStore implementação de SessionStore sobre Redis. Cada sessão
// é um hash com TTL; o identificador viaja assinado no cookie.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore cria um novo store de sessões em Redis
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) auth.SessionStore {
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
	}
}

// Load carrega a sessão pelo identificador. ID vazio ou hash inexistente
// produzem uma sessão nova.
func (s *RedisSessionStore) Load(ctx context.Context, id kernel.SessionID) (*auth.Session, error) {
	if id.IsEmpty() {
		return auth.NewEmptySession(), nil
	}

	values, err := s.client.HGetAll(ctx, sessionKeyPrefix+id.String()).Result()
	if err != nil {
		return nil, errx.Wrap(err, "failed to load session", errx.TypeInternal).
			WithDetail("session_id", id.String())
	}
	if len(values) == 0 {
		// Sessão expirada ou desconhecida: começa do zero
		return auth.NewEmptySession(), nil
	}

	return auth.NewSession(id, values), nil
}

// Commit descarrega a sessão para o Redis. A escrita é atômica via
// pipeline: a chave antiga de uma rotação é removida junto.
func (s *RedisSessionStore) Commit(ctx context.Context, sess *auth.Session) error {
	key := sessionKeyPrefix + sess.ID().String()

	pipe := s.client.TxPipeline()
	if stale := sess.StaleID(); !stale.IsEmpty() {
		pipe.Del(ctx, sessionKeyPrefix+stale.String())
	}
	pipe.Del(ctx, key)
	if values := sess.Values(); len(values) > 0 {
		payload := make(map[string]interface{}, len(values))
		for k, v := range values {
			payload[k] = v
		}
		pipe.HSet(ctx, key, payload)
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errx.Wrap(err, "failed to commit session", errx.TypeInternal).
			WithDetail("session_id", sess.ID().String())
	}

	sess.ClearDirty()
	return nil
}

// Destroy remove a sessão do Redis
func (s *RedisSessionStore) Destroy(ctx context.Context, sess *auth.Session) error {
	keys := []string{sessionKeyPrefix + sess.ID().String()}
	if stale := sess.StaleID(); !stale.IsEmpty() {
		keys = append(keys, sessionKeyPrefix+stale.String())
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errx.Wrap(err, "failed to destroy session", errx.TypeInternal).
			WithDetail("session_id", sess.ID().String())
	}
	return nil
}
