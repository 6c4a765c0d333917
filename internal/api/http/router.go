package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/gxmovies/storefront-client/internal/api/http/handlers"
	"github.com/gxmovies/storefront-client/internal/auth"
	"github.com/gxmovies/storefront-client/internal/domain"
	"github.com/gxmovies/storefront-client/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Session  *handlers.SessionHandler
	Notices  *handlers.NoticeHandler
	Shopper  *handlers.ShopperHandler
	Admin    *handlers.AdminHandler
	Identity auth.IdentitySource
	Location Navigator
	Metrics  *observability.Metrics
}

// RegisterRoutes wires the console routes. Guarded groups consult the live
// session on every request.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	track := trackLocation(cfg.Location)

	app.Get("/", track, cfg.Session.LoginView)
	app.Post("/login", cfg.Session.Login)
	app.Post("/logout", cfg.Session.Logout)
	app.Get("/admin/login", track, cfg.Session.AdminLoginView)
	app.Post("/admin/login", cfg.Session.AdminLogin)
	app.Get("/user/register", track, cfg.Session.RegisterView)
	app.Post("/user/register/otp", cfg.Session.SendOTP)
	app.Post("/user/register", cfg.Session.Register)
	app.Get("/forbidden", track, cfg.Session.Forbidden)
	app.Get("/session", cfg.Session.State)

	app.Get("/notices", cfg.Notices.List)
	app.Post("/notices/:id/ack", cfg.Notices.Ack)

	// Guards are attached per route: a prefix-less group middleware would also
	// run for paths registered after it, including the admin views.
	asUser := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{auth.RequireRole(cfg.Identity, domain.RoleUser), track, h}
	}
	asAdmin := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{auth.RequireRole(cfg.Identity, domain.RoleAdmin), track, h}
	}

	app.Get("/user/home", asUser(cfg.Shopper.Home)...)
	app.Get("/about", asUser(cfg.Shopper.About)...)
	app.Get("/movies/:id", asUser(cfg.Shopper.Movie)...)
	app.Post("/movies/:id/reviews", asUser(cfg.Shopper.AddReview)...)
	app.Post("/reviews/:id/report", asUser(cfg.Shopper.ReportReview)...)
	app.Get("/movie/watch/:id", asUser(cfg.Shopper.Watch)...)
	app.Get("/user/profile", asUser(cfg.Shopper.Profile)...)
	app.Put("/user/profile", asUser(cfg.Shopper.UpdateProfile)...)
	app.Get("/user/favorites", asUser(cfg.Shopper.Favorites)...)
	app.Post("/user/favorites/:movieId", asUser(cfg.Shopper.AddFavorite)...)
	app.Delete("/user/favorites/:movieId", asUser(cfg.Shopper.RemoveFavorite)...)
	app.Get("/user/cart", asUser(cfg.Shopper.Cart)...)
	app.Post("/user/cart/remove", asUser(cfg.Shopper.RemoveSelected)...)
	app.Post("/user/cart/:movieId", asUser(cfg.Shopper.AddToCart)...)
	app.Delete("/user/cart/:movieId", asUser(cfg.Shopper.RemoveFromCart)...)
	app.Delete("/user/cart", asUser(cfg.Shopper.ClearCart)...)
	app.Post("/user/checkout", asUser(cfg.Shopper.Checkout)...)
	app.Get("/user/orders", asUser(cfg.Shopper.Orders)...)
	app.Get("/user/orders/:id", asUser(cfg.Shopper.OrderDetails)...)
	app.Get("/user/orders/:id/invoice", asUser(cfg.Shopper.Invoice)...)
	app.Get("/user/library", asUser(cfg.Shopper.Library)...)

	app.Get("/admin/dashboard", asAdmin(cfg.Admin.Dashboard)...)
	app.Get("/admin/movies", asAdmin(cfg.Admin.Movies)...)
	app.Post("/admin/movies", asAdmin(cfg.Admin.AddMovie)...)
	app.Put("/admin/movies/:id", asAdmin(cfg.Admin.UpdateMovie)...)
	app.Delete("/admin/movies/:id", asAdmin(cfg.Admin.DeleteMovie)...)
	app.Get("/admin/reviews", asAdmin(cfg.Admin.Reviews)...)
	app.Delete("/admin/reviews/:id", asAdmin(cfg.Admin.DeleteReview)...)
	app.Get("/admin/users", asAdmin(cfg.Admin.Users)...)
	app.Patch("/admin/users/:id/block", asAdmin(cfg.Admin.BlockUser)...)
	app.Patch("/admin/users/:id/unblock", asAdmin(cfg.Admin.UnblockUser)...)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"view": "not-found", "path": c.Path()})
	})
}
