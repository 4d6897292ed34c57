package main

import (
	"flag"
	"fmt"

	"github.com/CarLinkRental/CarLinkRental/internal/catalog"
	"github.com/CarLinkRental/CarLinkRental/internal/common/config"
	"github.com/CarLinkRental/CarLinkRental/internal/common/db"
	"github.com/CarLinkRental/CarLinkRental/internal/common/logger"
	"github.com/CarLinkRental/CarLinkRental/internal/common/server"
	"github.com/CarLinkRental/CarLinkRental/internal/common/tracing"
	"github.com/CarLinkRental/CarLinkRental/internal/integrity"
	"github.com/CarLinkRental/CarLinkRental/internal/reservation"
	"github.com/CarLinkRental/CarLinkRental/internal/user"
	"google.golang.org/grpc"
)

var (
	configPath = flag.String("config", "configs/catalog-service.json", "配置文件路径")
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
	if err := gormDB.AutoMigrate(
		&catalog.State{},
		&catalog.City{},
		&catalog.Location{},
		&catalog.Car{},
		&reservation.Reservation{},
		&reservation.Slot{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	states := catalog.NewStateRepo(gormDB)
	cities := catalog.NewCityRepo(gormDB)
	locations := catalog.NewLocationRepo(gormDB)
	cars := catalog.NewCarRepo(gormDB)
	users := user.NewRepo(gormDB)
	reservations := reservation.NewRepo(gormDB)

	// 引用校验器：目录实体 + 用户 + 预订的存在性探测
	refs := integrity.NewChecker()
	refs.Register(integrity.KindUser, users.Exists)
	refs.Register(integrity.KindReservation, reservations.Exists)

	// 级联依赖表：state -> city -> location -> car -> reservation，
	// 删除从叶向根执行
	cascade := integrity.NewCascader(
		integrity.Level{
			Kind:   integrity.KindState,
			Delete: states.DeleteByIDs,
		},
		integrity.Level{
			Kind:     integrity.KindCity,
			ChildIDs: cities.IDsByStateIDs,
			Delete:   cities.DeleteByIDs,
		},
		integrity.Level{
			Kind:     integrity.KindLocation,
			ChildIDs: locations.IDsByCityIDs,
			Delete:   locations.DeleteByIDs,
		},
		integrity.Level{
			Kind:     integrity.KindCar,
			ChildIDs: cars.IDsByLocationIDs,
			Delete:   cars.DeleteByIDs,
		},
		integrity.Level{
			Kind:     integrity.KindReservation,
			ChildIDs: reservations.IDsByCarIDs,
			Delete:   reservations.DeleteByIDs,
		},
	)

	catalogSvc := catalog.NewService(states, cities, locations, cars, refs, cascade)
	catalogSvc.RegisterProbes(refs)
	_ = catalogSvc

	// 启动统一的 gRPC 服务模板
	if err := server.RunGRPCServer(cfg, log, func(s *grpc.Server) error {
		// TODO: 在这里注册 catalog-service 的业务 gRPC 服务
		// pb.RegisterCatalogServiceServer(s, catalog.NewGRPCServer(catalogSvc))
		return nil
	}); err != nil {
		log.Fatalf("catalog-service exited with error: %v", err)
	}
}
