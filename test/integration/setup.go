package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"tableside/internal/backend"
	"tableside/internal/cart"
	"tableside/internal/checkout"
	"tableside/internal/handler"
	"tableside/internal/model"
	"tableside/internal/pricing"
	"tableside/internal/router"
	"tableside/internal/selection"
	"tableside/internal/session"
	"tableside/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const testAPIKey = "test-api-key"

// FakeBackend is an in-memory stand-in for the ordering backend's REST API.
// It owns the catalogue, validates coupons and records invoices, orders and
// table state changes for assertions.
type FakeBackend struct {
	mu sync.Mutex

	Items   map[string]model.MenuItem
	Coupons map[string]model.Coupon

	Invoices    map[string]*model.Invoice
	Orders      []model.OrderSubmission
	TableStates map[string]string

	nextInvoice int
	Server      *httptest.Server
}

// NewFakeBackend starts the fake backend with a seeded catalogue.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	maxDiscount := int64(50_000)
	f := &FakeBackend{
		Items: map[string]model.MenuItem{
			"I001": {
				ID:         "I001",
				Name:       "Pho Bo",
				BasePrice:  50_000,
				Available:  true,
				CategoryID: "CAT-1",
				OptionGroups: []model.OptionGroup{
					{
						ID:       "G-SIZE",
						Name:     "Size",
						Category: "size",
						Mode:     model.SelectionSingle,
						Options: []model.Option{
							{ID: "SIZE-M", Name: "Size M", IsDefault: true},
							{ID: "SIZE-L", Name: "Size L", AdditionalPrice: 15_000},
						},
					},
					{
						ID:   "G-TOP",
						Name: "Toppings",
						Mode: model.SelectionMulti,
						Options: []model.Option{
							{ID: "TOP-1", Name: "Extra beef", AdditionalPrice: 10_000},
						},
					},
				},
			},
			"I002": {ID: "I002", Name: "Ca Phe Sua Da", BasePrice: 30_000, Available: true, CategoryID: "CAT-2"},
		},
		Coupons: map[string]model.Coupon{
			"SAVE10": {
				ID:          "C1",
				Code:        "SAVE10",
				Type:        model.DiscountPercent,
				Value:       10,
				MaxDiscount: &maxDiscount,
				Active:      true,
				StartDate:   time.Now().Add(-time.Hour),
				EndDate:     time.Now().Add(time.Hour),
			},
		},
		Invoices:    make(map[string]*model.Invoice),
		TableStates: map[string]string{"T1": model.TableStateAvailable},
	}

	r := mux.NewRouter()
	r.HandleFunc("/items", f.listItems).Methods(http.MethodGet)
	r.HandleFunc("/items/{id}", f.getItem).Methods(http.MethodGet)
	r.HandleFunc("/categories", f.listCategories).Methods(http.MethodGet)
	r.HandleFunc("/tables", f.listTables).Methods(http.MethodGet)
	r.HandleFunc("/tables/{id}", f.setTableState).Methods(http.MethodPut)
	r.HandleFunc("/coupons/validate", f.validateCoupon).Methods(http.MethodPost)
	r.HandleFunc("/invoices", f.createInvoice).Methods(http.MethodPost)
	r.HandleFunc("/invoices/pending-by-table/{id}", f.pendingInvoice).Methods(http.MethodGet)
	r.HandleFunc("/orders", f.submitOrder).Methods(http.MethodPost)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// PendingFor opens an unpaid invoice for a table directly, simulating a prior
// ordering round.
func (f *FakeBackend) PendingFor(tableID string, finalTotal int64) *model.Invoice {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextInvoice++
	inv := &model.Invoice{
		ID:         "INV-" + strconv.Itoa(f.nextInvoice),
		TableID:    tableID,
		Total:      finalTotal,
		FinalTotal: finalTotal,
	}
	f.Invoices[inv.ID] = inv
	return inv
}

// RemoveItem drops an item from the catalogue, simulating a stale client.
func (f *FakeBackend) RemoveItem(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Items, id)
}

func (f *FakeBackend) listItems(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]model.MenuItem, 0, len(f.Items))
	for _, item := range f.Items {
		items = append(items, item)
	}
	respond(w, http.StatusOK, items)
}

func (f *FakeBackend) getItem(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.Items[mux.Vars(r)["id"]]
	if !ok {
		respondError(w, http.StatusNotFound, backend.CodeItemNotFound, "item not found")
		return
	}
	respond(w, http.StatusOK, item)
}

func (f *FakeBackend) listCategories(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, []model.Category{
		{ID: "CAT-1", Name: "Noodles", DisplayOrder: 1},
		{ID: "CAT-2", Name: "Drinks", DisplayOrder: 2},
	})
}

func (f *FakeBackend) listTables(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tables := make([]model.Table, 0, len(f.TableStates))
	for id, state := range f.TableStates {
		tables = append(tables, model.Table{ID: id, Name: "Table " + id, State: state})
	}
	respond(w, http.StatusOK, tables)
}

func (f *FakeBackend) setTableState(w http.ResponseWriter, r *http.Request) {
	var body struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "invalid body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TableStates[mux.Vars(r)["id"]] = body.State
	respond(w, http.StatusOK, map[string]string{"state": body.State})
}

func (f *FakeBackend) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code        string `json:"code"`
		TotalAmount int64  `json:"total_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	coupon, ok := f.Coupons[body.Code]
	if !ok {
		respondError(w, http.StatusNotFound, "COUPON_NOT_FOUND", "coupon does not exist")
		return
	}
	if err := pricing.CouponUsable(coupon, time.Now()); err != nil {
		respondError(w, http.StatusBadRequest, "COUPON_NOT_APPLICABLE", "coupon cannot be used")
		return
	}
	discount, err := pricing.CouponDiscount(body.TotalAmount, coupon)
	if err != nil {
		respondError(w, http.StatusBadRequest, "COUPON_NOT_APPLICABLE", "order total below coupon minimum")
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"coupon": coupon, "discount": discount})
}

func (f *FakeBackend) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req backend.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextInvoice++
	inv := &model.Invoice{
		ID:         "INV-" + strconv.Itoa(f.nextInvoice),
		TableID:    req.TableID,
		CouponID:   req.CouponID,
		Total:      req.Total,
		Discount:   req.Discount,
		FinalTotal: req.FinalTotal,
	}
	f.Invoices[inv.ID] = inv
	respond(w, http.StatusCreated, map[string]string{"invoice_id": inv.ID})
}

func (f *FakeBackend) pendingInvoice(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tableID := mux.Vars(r)["id"]
	for _, inv := range f.Invoices {
		if inv.TableID == tableID && !inv.Paid {
			respond(w, http.StatusOK, inv)
			return
		}
	}
	respondError(w, http.StatusNotFound, "INVOICE_NOT_FOUND", "no pending invoice for table")
}

func (f *FakeBackend) submitOrder(w http.ResponseWriter, r *http.Request) {
	var sub model.OrderSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range sub.Items {
		if _, ok := f.Items[item.ItemID]; !ok {
			respondError(w, http.StatusNotFound, backend.CodeItemNotFound, "item "+item.ItemID+" not found")
			return
		}
	}
	f.Orders = append(f.Orders, sub)
	respond(w, http.StatusCreated, model.Order{
		ID:        "O-" + strconv.Itoa(len(f.Orders)),
		InvoiceID: sub.InvoiceID,
		TableID:   sub.TableID,
		State:     "pending",
		Items:     sub.Items,
	})
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respond(w, status, map[string]string{"error": code, "message": message})
}

// setupTestServer wires the full stack against redis-backed storage and the
// fake backend, the same way main does.
func setupTestServer(t *testing.T, fake *FakeBackend) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	kv := storage.NewRedis(client, 4*time.Hour)

	backendClient := backend.NewClient(fake.Server.URL, "backend-key", 5*time.Second, logger)

	cartStore := cart.NewStore(kv, 4*time.Hour, logger)
	sessions := session.NewStore(kv, logger)
	composer := checkout.NewComposer(cartStore, sessions, backendClient, logger)
	verifier := checkout.NewCouponVerifier(backendClient, logger)

	catalogHandler := handler.NewCatalogHandler(backendClient, logger)
	cartHandler := handler.NewCartHandler(cartStore, backendClient, selection.DefaultPolicy(), logger)
	checkoutHandler := handler.NewCheckoutHandler(composer, verifier, cartStore, sessions, logger)
	sessionHandler := handler.NewSessionHandler(sessions, logger)

	return router.New(catalogHandler, cartHandler, checkoutHandler, sessionHandler, testAPIKey, logger)
}
