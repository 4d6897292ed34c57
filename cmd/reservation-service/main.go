package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/CarLinkRental/CarLinkRental/internal/catalog"
	"github.com/CarLinkRental/CarLinkRental/internal/common/config"
	"github.com/CarLinkRental/CarLinkRental/internal/common/db"
	"github.com/CarLinkRental/CarLinkRental/internal/common/logger"
	"github.com/CarLinkRental/CarLinkRental/internal/common/server"
	"github.com/CarLinkRental/CarLinkRental/internal/common/tracing"
	"github.com/CarLinkRental/CarLinkRental/internal/integrity"
	"github.com/CarLinkRental/CarLinkRental/internal/reservation"
	"github.com/CarLinkRental/CarLinkRental/internal/user"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
)

var (
	configPath = flag.String("config", "configs/reservation-service.json", "配置文件路径")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(&reservation.Reservation{}, &reservation.Slot{}); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	reservations := reservation.NewRepo(gormDB)
	cars := catalog.NewCarRepo(gormDB)
	users := user.NewRepo(gormDB)

	refs := integrity.NewChecker()
	refs.Register(integrity.KindUser, users.Exists)
	refs.Register(integrity.KindCar, cars.Exists)

	// 车辆快照适配：调度只需要日租价和可用标记
	carInfo := reservation.CarCatalogFunc(func(ctx context.Context, id string) (*reservation.CarInfo, error) {
		c, err := cars.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &reservation.CarInfo{
			ID:         c.ID,
			PriceByDay: c.PriceByDay,
			Available:  c.Available,
		}, nil
	})

	// 预订写入的串行化点：单实例用进程内按车锁，
	// 多实例部署改用 Redis 锁（SET NX + TTL）
	var locks reservation.Locker = reservation.NewKeyLocker()
	if cfg.Reservation.UseRedisLock {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		locks = reservation.NewRedisLocker(rdb, time.Duration(cfg.Reservation.LockTTLSeconds)*time.Second)
	}

	reservationSvc := reservation.NewService(reservations, carInfo, refs, locks)
	_ = reservationSvc

	// 启动统一的 gRPC 服务模板
	if err := server.RunGRPCServer(cfg, log, func(s *grpc.Server) error {
		// TODO: 在这里注册 reservation-service 的业务 gRPC 服务
		// pb.RegisterReservationServiceServer(s, reservation.NewGRPCServer(reservationSvc))
		return nil
	}); err != nil {
		log.Fatalf("reservation-service exited with error: %v", err)
	}
}
