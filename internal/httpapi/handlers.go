// Package httpapi exposes the product and cart services over a chi router.
// The handlers are deliberately thin: decode, delegate, map the service
// error taxonomy onto status codes.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stDean/prod-ecom-backend/shop"
	"github.com/stDean/prod-ecom-backend/store"
)

// ProductAPI is the product surface the handlers delegate to.
// *shop.ProductService satisfies it.
type ProductAPI interface {
	Get(ctx context.Context, rawID string) (*store.Product, error)
	List(ctx context.Context, params shop.ListParams) (*shop.ProductListing, error)
	Create(ctx context.Context, in shop.ProductInput) (*store.Product, error)
	Update(ctx context.Context, rawID string, patch store.ProductPatch) (*store.Product, error)
	Delete(ctx context.Context, rawID string) error
}

// CartAPI is the cart surface the handlers delegate to. *shop.CartService
// satisfies it.
type CartAPI interface {
	AddItem(ctx context.Context, owner shop.Owner, in shop.AddItemInput) (*shop.ItemSnapshot, error)
	Items(ctx context.Context, owner shop.Owner) (*shop.Cart, error)
	Increment(ctx context.Context, owner shop.Owner, rawProductID string) (*shop.QuantityResult, error)
	Decrement(ctx context.Context, owner shop.Owner, rawProductID string) (*shop.QuantityResult, error)
	RemoveItem(ctx context.Context, owner shop.Owner, rawProductID string) error
	Clear(ctx context.Context, owner shop.Owner) error
	Total(ctx context.Context, owner shop.Owner) (*shop.CartTotal, error)
	Merge(ctx context.Context, target shop.Owner) (*shop.MergeResult, error)
}

// Handler carries the services and the logger shared by all routes.
type Handler struct {
	products ProductAPI
	carts    CartAPI
	log      *zap.Logger
}

// NewHandler wires the HTTP handler set. A nil logger falls back to a no-op
// logger.
func NewHandler(products ProductAPI, carts CartAPI, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{products: products, carts: carts, log: log}
}

// Router mounts every route on a fresh chi router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.getProduct)
		r.Patch("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Delete("/", h.clearCart)
		r.Get("/items", h.cartItems)
		r.Post("/items", h.addCartItem)
		r.Get("/total", h.cartTotal)
		r.Post("/merge", h.mergeCart)
		r.Post("/items/{productID}/increment", h.incrementCartItem)
		r.Post("/items/{productID}/decrement", h.decrementCartItem)
		r.Delete("/items/{productID}", h.removeCartItem)
	})

	return r
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := shop.ListParams{
		Page:      intQuery(q.Get("page")),
		Limit:     intQuery(q.Get("limit")),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Category:  q.Get("category"),
	}

	listing, err := h.products.List(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, listing)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in shop.ProductInput
	if !h.decode(w, r, &in) {
		return
	}

	product, err := h.products.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var patch store.ProductPatch
	if !h.decode(w, r, &patch) {
		return
	}

	product, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var in shop.AddItemInput
	if !h.decode(w, r, &in) {
		return
	}

	snap, err := h.carts.AddItem(r.Context(), owner, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) cartItems(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.Items(r.Context(), owner)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) cartTotal(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	total, err := h.carts.Total(r.Context(), owner)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, total)
}

func (h *Handler) incrementCartItem(w http.ResponseWriter, r *http.Request) {
	h.changeCartQuantity(w, r, h.carts.Increment)
}

func (h *Handler) decrementCartItem(w http.ResponseWriter, r *http.Request) {
	h.changeCartQuantity(w, r, h.carts.Decrement)
}

func (h *Handler) changeCartQuantity(w http.ResponseWriter, r *http.Request, op func(context.Context, shop.Owner, string) (*shop.QuantityResult, error)) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	res, err := op(r.Context(), owner, chi.URLParam(r, "productID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	if err := h.carts.RemoveItem(r.Context(), owner, chi.URLParam(r, "productID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	if err := h.carts.Clear(r.Context(), owner); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mergeCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	res, err := h.carts.Merge(r.Context(), owner)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// owner resolves the cart owner from the userId query parameter: absent
// means guest.
func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (shop.Owner, bool) {
	owner, err := shop.ParseOwner(r.URL.Query().Get("userId"))
	if err != nil {
		h.writeError(w, err)
		return shop.Owner{}, false
	}
	return owner, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	return true
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the service error taxonomy onto status codes: validation
// errors are 400, missing resources 404, everything else 500 with the
// detail kept out of the response body.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case shop.IsValidation(err):
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, shop.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		h.log.Error("request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("response encode failed", zap.Error(err))
	}
}

func intQuery(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
