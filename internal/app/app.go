package app

import (
	"github.com/playwrist/core/internal/config"
	http_auth "github.com/playwrist/core/internal/delivery/http/auth"
	http_game "github.com/playwrist/core/internal/delivery/http/game"
	http_init "github.com/playwrist/core/internal/delivery/http/init"
	http_auth_middleware "github.com/playwrist/core/internal/delivery/http/middleware/auth"
	http_room "github.com/playwrist/core/internal/delivery/http/room"
	ws_room "github.com/playwrist/core/internal/delivery/ws/room"
	infra_memory_room "github.com/playwrist/core/internal/infra/memory/room"
	infra_pg_init "github.com/playwrist/core/internal/infra/postgres/init"
	infra_postgres_room "github.com/playwrist/core/internal/infra/postgres/room"
	infra_redis_init "github.com/playwrist/core/internal/infra/redis/init"
	infra_session_cache "github.com/playwrist/core/internal/infra/redis/session"
	"github.com/playwrist/core/internal/lock"
	service_simple_auth "github.com/playwrist/core/internal/service/auth/simple"
	usecase_game "github.com/playwrist/core/internal/usecase/game"
	usecase_room "github.com/playwrist/core/internal/usecase/room"
)

func Go(cfg *config.Config) {
	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)

	// Rooms are ephemeral sessions; postgres is opt-in via DB_HOST.
	var roomRepository usecase_room.RoomRepository
	if cfg.Postgres.Host != "" {
		pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
		roomRepository = infra_postgres_room.New(pgConn)
	} else {
		roomRepository = infra_memory_room.New()
	}

	hub := ws_room.NewHub(nil)
	locks := lock.NewKeyed()

	gameUC := usecase_game.New(roomRepository, hub, locks)
	roomUC := usecase_room.New(roomRepository, hub, locks, gameUC)

	sessionCache := infra_session_cache.New(redisConn, "session_cache")
	authService := service_simple_auth.New(sessionCache, nil)
	authMiddleware := http_auth_middleware.New(authService)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_auth.New(authService, authMiddleware))
	controllerPool.Add(http_room.New(roomUC, authMiddleware))
	controllerPool.Add(http_game.New(gameUC, authMiddleware))
	controllerPool.Add(ws_room.NewController(hub, roomUC, authService))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}
