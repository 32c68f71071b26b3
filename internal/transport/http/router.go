package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/go-shop-nosql/internal/application/auth"
	"github.com/go-shop-nosql/internal/application/cart"
	"github.com/go-shop-nosql/internal/application/image"
	"github.com/go-shop-nosql/internal/application/otp"
	"github.com/go-shop-nosql/internal/application/product"
	"github.com/go-shop-nosql/internal/config"
	"github.com/go-shop-nosql/internal/pkg/clock"
	"github.com/go-shop-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-shop-nosql/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
// SMSSender is optional.
type Deps struct {
	UserRepo    UserRepository
	ProductRepo ProductRepository
	ObjectStore ObjectStore
	Mailer      Mailer
	SMSSender   SMSSender
	JWTProvider TokenProvider
	Hasher      PasswordHasher
	Clock       clock.Clocker
}

// NewRouter builds and returns the application router. Background work started
// by the router stops when ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, per client IP on the credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10, cfg.TrustedProxies...)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:  deps.UserRepo,
		Hasher:    deps.Hasher,
		OTP:       otp.NewManager(cfg.OTPTTL),
		JWTSigner: deps.JWTProvider,
		Mailer:    deps.Mailer,
		SMSSender: deps.SMSSender,
		Clock:     deps.Clock,
	})
	imageSvc := image.NewService(deps.ObjectStore, deps.Clock)
	productSvc := product.NewService(product.ServiceDeps{
		ProductRepo:  deps.ProductRepo,
		ImageService: imageSvc,
		Clock:        deps.Clock,
		MaxImages:    cfg.MaxProductImages,
	})
	ledger := cart.NewLedger(cfg.EURToINRRate)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(productSvc, cfg.MaxProductImages)
	cartH := handler.NewCartHandler(ledger)
	uploadH := handler.NewUploadHandler(imageSvc)

	r.Get("/health-check/{action}", healthH.Ping)
	r.Get("/uploads/*", uploadH.Serve)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/register", authH.Register)
			r.With(sensitiveRL.Limit).Post("/signup", authH.Register)
			r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.With(sensitiveRL.Limit).Post("/signin", authH.Login)
			r.With(authMw).Get("/me", authH.Me)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", productH.Create)
			r.Get("/", productH.List)
			r.Get("/{id}", productH.Get)
			r.Put("/{id}", productH.Update)
			r.Delete("/{id}", productH.Delete)
			r.Get("/{id}/images", productH.Images)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartH.List)
			r.Post("/", cartH.Add)
			r.Get("/subtotal", cartH.Subtotal)
			r.Post("/price", cartH.Price)
			r.Put("/{id}", cartH.Update)
			r.Delete("/{id}", cartH.Remove)
		})
	})

	return r
}
