package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/metrics"
	"rollcall/internal/queue"
	"rollcall/internal/store"
	"rollcall/internal/student"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	var (
		students student.Repository
		ledger   attendance.Ledger
		db       *store.DB
	)
	if cfg.StoreBackend == "memory" {
		students = student.NewMemRepository()
		ledger = attendance.NewMemLedger()
		log.Println("using in-memory store")
	} else {
		var err error
		db, err = store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := db.EnsureSchema(context.Background()); err != nil {
			return err
		}
		students = student.NewPGRepository(db.Client)
		ledger = attendance.NewPGLedger(db.Client)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rollcall:marks")
	}

	studentSvc := student.NewService(students, cfg.BcryptCost)
	attendanceSvc := attendance.NewService(students, ledger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db == nil || db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/register", func(c *gin.Context) {
		var req struct {
			Number   string   `form:"student_number" json:"student_number" binding:"required"`
			Name     string   `form:"name" json:"name" binding:"required"`
			Password string   `form:"password" json:"password" binding:"required,min=8"`
			Days     []string `form:"days" json:"days" binding:"required"`
		}
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		days, err := student.ParseWeekdays(req.Days)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		accounts, err := studentSvc.Register(c.Request.Context(), req.Number, req.Name, req.Password, days)
		if err != nil {
			var dup *student.DuplicateEnrollmentError
			if errors.As(err, &dup) {
				c.JSON(http.StatusConflict, gin.H{"error": dup.Error(), "day": string(dup.Day)})
				return
			}
			log.Printf("register failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "registration unavailable"})
			return
		}

		metrics.Registrations.Inc()
		c.JSON(http.StatusCreated, gin.H{"student_number": req.Number, "accounts": accounts})
	})

	r.POST("/login", func(c *gin.Context) {
		var req struct {
			Number   string `form:"student_number" json:"student_number" binding:"required"`
			Password string `form:"password" json:"password" binding:"required"`
		}
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		account, err := studentSvc.Authenticate(c.Request.Context(), req.Number, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, student.ErrUnknownIdentifier):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown student number"})
			case errors.Is(err, student.ErrInvalidCredentials):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
			default:
				log.Printf("login failed: %v", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "login unavailable"})
			}
			return
		}

		session, err := auth.Establish(account.Number, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.SessionTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session issue failed"})
			return
		}

		metrics.Logins.Inc()
		maxAge := int(time.Until(session.ExpiresAt).Seconds())
		c.SetCookie(auth.SessionCookie, session.Token, maxAge, "/", "", cfg.CookieSecure, true)
		c.JSON(http.StatusOK, gin.H{
			"token":      session.Token,
			"expires_at": session.ExpiresAt.Unix(),
			"name":       account.Name,
		})
	})

	r.POST("/attendance/:period", func(c *gin.Context) {
		var req struct {
			Day string `form:"day" json:"day" binding:"required"`
		}
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		identifier, _ := auth.Identify(c, cfg.JWTSigningKey, cfg.JWTIssuer)

		res, err := attendanceSvc.Mark(c.Request.Context(), identifier, req.Day, c.Param("period"))
		if err != nil {
			log.Printf("attendance failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "attendance unavailable"})
			return
		}

		switch res.Outcome {
		case attendance.OutcomeUnauthenticated:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "login required", "login": "/login"})
		case attendance.OutcomeInvalidPeriod:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period"})
		case attendance.OutcomeNotEnrolled:
			c.JSON(http.StatusBadRequest, gin.H{"error": "no enrollment for this day"})
		case attendance.OutcomeAlreadyMarked:
			// The mark already exists, so the student's goal is met.
			c.JSON(http.StatusOK, gin.H{"status": "already_marked"})
		case attendance.OutcomeRecorded:
			if err := q.Publish(c.Request.Context(), queue.MarkEvent{
				MarkID:        res.Mark.ID,
				StudentNumber: identifier,
				Day:           string(res.Mark.Day),
				Period:        string(res.Mark.Period),
				Date:          res.Mark.Date.Format(time.DateOnly),
			}); err != nil {
				log.Printf("queue publish failed: %v", err)
			}
			c.JSON(http.StatusCreated, gin.H{"status": "recorded", "mark": res.Mark})
		}
	})

	authGroup := r.Group("/me", auth.RequireStudent(cfg.JWTSigningKey, cfg.JWTIssuer))

	authGroup.GET("/attendance", func(c *gin.Context) {
		marks, err := attendanceSvc.History(c.Request.Context(), auth.StudentNumber(c))
		if err != nil {
			log.Printf("history failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"marks": marks})
	})

	r.GET("/roll/today", func(c *gin.Context) {
		day, err := student.ParseWeekday(c.Query("day"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		date := attendance.DateOf(time.Now()).Format(time.DateOnly)
		counts := gin.H{}
		for _, p := range []attendance.Period{attendance.PeriodFirst, attendance.PeriodSecond} {
			n, err := redisClient.RollCount(c.Request.Context(), date, string(day), string(p))
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "roll counts unavailable"})
				return
			}
			counts[string(p)] = n
		}
		c.JSON(http.StatusOK, gin.H{"date": date, "day": day, "counts": counts})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
