package handlers

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gxmovies/storefront-client/internal/api/dto"
	"github.com/gxmovies/storefront-client/internal/domain"
	"github.com/gxmovies/storefront-client/internal/service"
	"github.com/gxmovies/storefront-client/internal/session"
	apperrors "github.com/gxmovies/storefront-client/pkg/util"
)

// ShopperHandler serves the USER views.
type ShopperHandler struct {
	svc     *service.Services
	session *session.Manager
}

// NewShopperHandler constructs handler.
func NewShopperHandler(svc *service.Services, manager *session.Manager) *ShopperHandler {
	return &ShopperHandler{svc: svc, session: manager}
}

// Home handles GET /user/home. An optional genre adds recommendations.
func (h *ShopperHandler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	movies, err := h.svc.Movies.Available(ctx)
	if err != nil {
		return err
	}
	data := fiber.Map{"movies": movies}
	if genre := c.Query("genre"); genre != "" {
		recommended, err := h.svc.Movies.Recommended(ctx, genre)
		if err != nil {
			return err
		}
		data["recommended"] = recommended
	}
	return view(c, "home", data)
}

// About handles GET /about.
func (h *ShopperHandler) About(c *fiber.Ctx) error {
	return view(c, "about", nil)
}

// Movie handles GET /movies/:id, loading the movie and the user's relation to it in parallel.
func (h *ShopperHandler) Movie(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	movieID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var (
		movie                       *domain.Movie
		reviews                     []domain.Review
		favorite, inCart, purchased bool
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() (err error) {
		movie, err = h.svc.Movies.Get(ctx, movieID)
		return err
	})
	g.Go(func() (err error) {
		reviews, err = h.svc.Reviews.ForMovie(ctx, movieID)
		return err
	})
	g.Go(func() (err error) {
		favorite, err = h.svc.Favorites.IsFavorite(ctx, userID, movieID)
		return err
	})
	g.Go(func() (err error) {
		inCart, err = h.svc.Carts.Contains(ctx, userID, movieID)
		return err
	})
	g.Go(func() (err error) {
		purchased, err = h.svc.Purchases.IsPurchased(ctx, userID, movieID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return view(c, "movie", fiber.Map{
		"movie":     movie,
		"reviews":   reviews,
		"favorite":  favorite,
		"in_cart":   inCart,
		"purchased": purchased,
	})
}

// Watch handles GET /movie/watch/:id. Only purchased movies play.
func (h *ShopperHandler) Watch(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	movieID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	purchased, err := h.svc.Purchases.IsPurchased(ctx, userID, movieID)
	if err != nil {
		return err
	}
	if !purchased {
		return apperrors.NewDomainError("NOT_PURCHASED", "movie not purchased", http.StatusForbidden, nil)
	}
	movie, err := h.svc.Movies.Get(ctx, movieID)
	if err != nil {
		return err
	}
	return view(c, "player", movie)
}

// Profile handles GET /user/profile.
func (h *ShopperHandler) Profile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Users.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return view(c, "profile", user)
}

// UpdateProfile handles PUT /user/profile and refreshes the cached display name.
func (h *ShopperHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req dto.UserUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.FullName == "" || req.Email == "" {
		return apperrors.NewValidationError("fullName and email required", nil)
	}
	user, err := h.svc.Users.Update(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	h.session.RefreshDisplayName(c.UserContext())
	return view(c, "profile", user)
}

// Favorites handles GET /user/favorites.
func (h *ShopperHandler) Favorites(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	favs, err := h.svc.Favorites.ListForUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return view(c, "favorites", favs)
}

// AddFavorite handles POST /user/favorites/:movieId.
func (h *ShopperHandler) AddFavorite(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	movieID, err := paramID(c, "movieId")
	if err != nil {
		return err
	}
	fav, err := h.svc.Favorites.Add(c.UserContext(), dto.FavoriteRequest{UserID: userID, MovieID: movieID})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fav})
}

// RemoveFavorite handles DELETE /user/favorites/:movieId.
func (h *ShopperHandler) RemoveFavorite(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	movieID, err := paramID(c, "movieId")
	if err != nil {
		return err
	}
	if err := h.svc.Favorites.RemoveForUser(c.UserContext(), userID, movieID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Cart handles GET /user/cart.
func (h *ShopperHandler) Cart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.Carts.ListForUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return view(c, "cart", fiber.Map{"items": items, "total": cartTotal(items)})
}

// AddToCart handles POST /user/cart/:movieId.
func (h *ShopperHandler) AddToCart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	movieID, err := paramID(c, "movieId")
	if err != nil {
		return err
	}
	item, err := h.svc.Carts.Add(c.UserContext(), dto.CartRequest{UserID: userID, MovieID: movieID})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": item})
}

// RemoveFromCart handles DELETE /user/cart/:movieId.
func (h *ShopperHandler) RemoveFromCart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	movieID, err := paramID(c, "movieId")
	if err != nil {
		return err
	}
	if err := h.svc.Carts.RemoveForUser(c.UserContext(), userID, movieID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveSelected handles POST /user/cart/remove.
func (h *ShopperHandler) RemoveSelected(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req dto.MovieIDsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if len(req.MovieIDs) == 0 {
		return apperrors.NewValidationError("movieIds required", nil)
	}
	if err := h.svc.Carts.RemoveMany(c.UserContext(), userID, req.MovieIDs); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearCart handles DELETE /user/cart.
func (h *ShopperHandler) ClearCart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Carts.Clear(c.UserContext(), userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout handles POST /user/checkout: buys every movie in the cart, then empties it.
func (h *ShopperHandler) Checkout(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req dto.CheckoutRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.PaymentMethod == "" {
		return apperrors.NewValidationError("paymentMethod required", nil)
	}

	ctx := c.UserContext()
	items, err := h.svc.Carts.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return apperrors.NewValidationError("cart is empty", nil)
	}
	movieIDs := make([]int, 0, len(items))
	for _, item := range items {
		movieIDs = append(movieIDs, item.MovieID)
	}

	purchase, err := h.svc.Purchases.Create(ctx, dto.PurchaseRequest{
		UserID:        userID,
		MovieIDs:      movieIDs,
		TotalPrice:    cartTotal(items),
		TransactionID: uuid.NewString(),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return err
	}
	if err := h.svc.Carts.Clear(ctx, userID); err != nil {
		return err
	}
	return redirect(c, "/user/orders", purchase)
}

// Orders handles GET /user/orders.
func (h *ShopperHandler) Orders(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	purchases, err := h.svc.Purchases.ListForUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return view(c, "orders", purchases)
}

// OrderDetails handles GET /user/orders/:id.
func (h *ShopperHandler) OrderDetails(c *fiber.Ctx) error {
	purchaseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	details, err := h.svc.PurchaseDetails.ForPurchase(c.UserContext(), purchaseID)
	if err != nil {
		return err
	}
	return view(c, "order-details", details)
}

// Invoice handles GET /user/orders/:id/invoice?transactionId=.
func (h *ShopperHandler) Invoice(c *fiber.Ctx) error {
	purchaseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	transactionID := c.Query("transactionId")
	if transactionID == "" {
		return apperrors.NewValidationError("transactionId required", nil)
	}

	var buf bytes.Buffer
	if _, err := h.svc.Purchases.DownloadInvoice(c.UserContext(), purchaseID, transactionID, &buf); err != nil {
		return err
	}
	c.Attachment(service.InvoiceFileName(transactionID))
	c.Type("pdf")
	return c.Send(buf.Bytes())
}

// Library handles GET /user/library.
func (h *ShopperHandler) Library(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	movies, err := h.svc.Purchases.MoviesForUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return view(c, "library", movies)
}

// AddReview handles POST /movies/:id/reviews.
func (h *ShopperHandler) AddReview(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	movieID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReviewTextRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.ReviewText == "" {
		return apperrors.NewValidationError("reviewText required", nil)
	}
	review, err := h.svc.Reviews.Add(c.UserContext(), dto.ReviewRequest{UserID: userID, MovieID: movieID, ReviewText: req.ReviewText})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": review})
}

// ReportReview handles POST /reviews/:id/report.
func (h *ShopperHandler) ReportReview(c *fiber.Ctx) error {
	reviewID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	msg, err := h.svc.Reviews.Report(c.UserContext(), reviewID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": msg})
}

func cartTotal(items []domain.CartItem) float64 {
	var total float64
	for _, item := range items {
		if item.Movie != nil {
			total += item.Movie.Price
		}
	}
	return total
}
