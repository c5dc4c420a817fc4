package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"busbooking/internal/cache"
	intconfig "busbooking/internal/config"
	router "busbooking/internal/http"
	h "busbooking/internal/http/handlers"
	"busbooking/internal/realtime"
	"busbooking/internal/repositories"
	"busbooking/internal/services"
	"busbooking/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		log.Printf("warning: database unavailable, serving default layouts only: %v", err)
	}
	defer intconfig.CloseDB()

	journeys := repositories.JourneyRepo{DB: db}
	layouts := repositories.SeatLayoutRepo{DB: db}
	bookings := repositories.BookingRepo{DB: db, Now: env.Now}

	var rdb *redis.Client
	if env.RedisAddr != "" {
		rdb, err = cache.Connect(cache.Config{Address: env.RedisAddr, Password: env.RedisPassword, DB: env.RedisDB})
		if err != nil {
			log.Printf("warning: redis unavailable, layout cache disabled: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}
	cached := cache.NewLayoutCache(layouts, rdb, env.LayoutCacheTTL)

	// The refresh loop polls the real-time seat service when configured and
	// the stored layout otherwise.
	var poll session.SeatSource = cached
	if env.RealtimeSeatURL != "" {
		poll = realtime.NewClient(env.RealtimeSeatURL, env.PollTimeout)
	}

	// Seats sold per journey run are laid over the bus layout.
	var booked session.BookedSource
	if db != nil {
		booked = bookings
	}

	sessions := session.NewManager(session.ManagerOptions{
		Journeys: journeys,
		Layouts:  cached,
		Poll:     poll,
		Booked:   booked,
		Config: session.Config{
			Interval:         env.RefreshInterval,
			PollTimeout:      env.PollTimeout,
			FailureThreshold: env.PollFailureThreshold,
			Clock:            env.Now,
		},
		IdleTTL: env.SessionIdle,
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sessions.RunSweeper(sweepCtx, time.Minute)

	bookingSvc := services.BookingService{Bookings: bookings, Journeys: journeys}
	a := &h.API{
		Sessions: sessions,
		Journeys: journeys,
		Layouts:  layouts,
		Checkout: services.CheckoutService{
			Bookings:   bookings,
			GatewayURL: env.PaymentGatewayURL,
		},
		Bookings:      bookingSvc,
		Docs:          services.DocsService{Bookings: bookingSvc},
		OnLayoutSaved: cached.Invalidate,
		Location:      env.Location,
	}
	if db != nil {
		a.DBPing = intconfig.EnsureDB
	}

	r := router.NewRouter(env, a)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
	stopSweep()
	sessions.Shutdown()

	log.Println("server stopped cleanly")
}
