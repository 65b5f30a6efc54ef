package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/jjt256723/couple-space-app/global"
	"github.com/jjt256723/couple-space-app/logger"
	mid "github.com/jjt256723/couple-space-app/middleware"
	"github.com/jjt256723/couple-space-app/module/couple"
	"github.com/jjt256723/couple-space-app/module/diary"
	"github.com/jjt256723/couple-space-app/module/message"
	"github.com/jjt256723/couple-space-app/module/photo"
	"github.com/jjt256723/couple-space-app/module/todo"
	"github.com/jjt256723/couple-space-app/module/user"
	"github.com/jjt256723/couple-space-app/service/chat"
	"github.com/jjt256723/couple-space-app/service/mgo"
	"github.com/jjt256723/couple-space-app/service/storage"
	"github.com/jjt256723/couple-space-app/service/storage/files"
	rds "github.com/jjt256723/couple-space-app/service/storage/redis"
	"github.com/jjt256723/couple-space-app/tools/safe"
)

func main() {
	cfg := global.Config()
	ctx := context.Background()

	// 1) Postgres：主存储，起不来直接退
	if err := storage.InitPg(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("postgres init failed: %v", err)
	}
	defer storage.ClosePg()
	if err := storage.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema failed: %v", err)
	}

	// 2) Redis：presence 镜像，连不上降级为纯进程内状态
	if err := rds.InitRedis(rds.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); err != nil {
		logger.Warnf("redis unavailable, presence mirror off: %v", err)
	}
	defer func() { _ = rds.CloseRedis() }()

	// 3) Mongo：登录会话落库，旁路异步连
	safe.Go(func() {
		mgo.StartAsync(ctx, mgo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	})

	// 4) 文件存储
	disk, err := files.NewDiskStorage(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir init failed: %v", err)
	}
	photoHandlers := &photo.Handlers{Files: disk}

	// 5) 实时服务
	rt := chat.NewServer(chat.JWTResolver{}, chat.PgStore{}, chat.Config{})

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mid.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.Static("/uploads", disk.BaseDir())

	// WebSocket 入口：ws://host/ws/chat?token=<access token>
	r.GET("/ws/chat", rt.HandleWS)

	api := r.Group("/api/v1")

	mid.POST(api, "/auth/register", user.HandlerRegister, mid.RouteOpt{IsAuth: false})
	mid.POST(api, "/auth/login", user.HandlerLogin, mid.RouteOpt{IsAuth: false})
	mid.POST(api, "/auth/refresh", user.HandlerRefresh, mid.RouteOpt{IsAuth: false})

	mid.GET(api, "/users/me", user.HandlerMe, mid.RouteOpt{IsAuth: true})
	mid.PUT(api, "/users/me", user.HandlerUpdateMe, mid.RouteOpt{IsAuth: true})

	mid.POST(api, "/couples", couple.HandlerCreate, mid.RouteOpt{IsAuth: true})
	mid.POST(api, "/couples/bind", couple.HandlerBind, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/couples/me", couple.HandlerGet, mid.RouteOpt{IsAuth: true})
	mid.PUT(api, "/couples/anniversary", couple.HandlerAnniversary, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/couples/partner", couple.HandlerPartner, mid.RouteOpt{IsAuth: true})

	mid.POST(api, "/messages", message.HandlerSend, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/messages", message.HandlerList, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/messages/:id", message.HandlerGet, mid.RouteOpt{IsAuth: true})

	mid.POST(api, "/diaries", diary.HandlerCreate, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/diaries", diary.HandlerList, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/diaries/:id", diary.HandlerGet, mid.RouteOpt{IsAuth: true})
	mid.PUT(api, "/diaries/:id", diary.HandlerUpdate, mid.RouteOpt{IsAuth: true})
	mid.DELETE(api, "/diaries/:id", diary.HandlerDelete, mid.RouteOpt{IsAuth: true})

	mid.POST(api, "/todos", todo.HandlerCreate, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/todos", todo.HandlerList, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/todos/:id", todo.HandlerGet, mid.RouteOpt{IsAuth: true})
	mid.PUT(api, "/todos/:id", todo.HandlerUpdate, mid.RouteOpt{IsAuth: true})
	mid.DELETE(api, "/todos/:id", todo.HandlerDelete, mid.RouteOpt{IsAuth: true})

	mid.POST(api, "/photos", photoHandlers.HandlerUpload, mid.RouteOpt{IsAuth: true})
	mid.GET(api, "/photos", photoHandlers.HandlerList, mid.RouteOpt{IsAuth: true})
	mid.DELETE(api, "/photos/:id", photoHandlers.HandlerDelete, mid.RouteOpt{IsAuth: true})

	logger.Infof("[HTTP] listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
