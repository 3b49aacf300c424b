package infra_session_cache

import (
	"encoding/json"
	"time"

	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"github.com/playwrist/core/internal/model"
)

// Driver stores token -> player sessions under a shared key prefix.
type Driver struct {
	client *redis.Client
	key    string
}

func New(
	client *redis.Client,
	key string,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
	}
}

type sessionDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (d *Driver) SaveSession(token string, user model.User, ttl time.Duration) error {
	raw, err := json.Marshal(sessionDTO{
		ID:   user.ID.String(),
		Name: user.Name,
	})
	if err != nil {
		return err
	}

	return d.client.Set(d.getFullKey(token), raw, ttl).Err()
}

// SessionByToken returns the stored user and whether the token is known.
func (d *Driver) SessionByToken(token string) (model.User, bool, error) {
	raw, err := d.client.Get(d.getFullKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return model.User{}, false, nil
		}
		return model.User{}, false, err
	}

	var dto sessionDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return model.User{}, false, err
	}

	user, err := dtoToUser(dto)
	if err != nil {
		return model.User{}, false, err
	}
	return user, true, nil
}

func dtoToUser(dto sessionDTO) (model.User, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:   id,
		Name: dto.Name,
	}, nil
}

func (d *Driver) getFullKey(key string) string {
	if d.key != "" {
		return d.key + ":" + key
	}
	return key
}
