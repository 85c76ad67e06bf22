package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/frozify/storefront/pkg/enums"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: rt})}, opts...)
	client, err := NewClient("http://api.test/api/", opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

type recorderStub struct {
	calls  map[string][]bool
	states []int
}

func (r *recorderStub) IncUpstream(op string, success bool) {
	if r.calls == nil {
		r.calls = map[string][]bool{}
	}
	r.calls[op] = append(r.calls[op], success)
}

func (r *recorderStub) SetBreakerState(_ string, state int) {
	r.states = append(r.states, state)
}

func TestListProducts(t *testing.T) {
	var capturedURL string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return jsonResponse(http.StatusOK, `{"success":true,"data":[{"_id":"p1","name":"Chicken Nuggets","price":850,"image":"/uploads/n.jpg"}]}`), nil
	})

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if capturedURL != "http://api.test/api/products" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("unexpected products %+v", products)
	}
	if !products[0].Price.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("unexpected price %s", products[0].Price)
	}
}

func TestGetProductNotFound(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"success":false,"error":"Product not found"}`), nil
	})

	_, err := client.GetProduct(context.Background(), "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if typed.Message() != "Product not found" {
		t.Fatalf("expected upstream message to be preserved, got %q", typed.Message())
	}
	if typed.UpstreamStatus() != http.StatusNotFound {
		t.Fatalf("expected upstream status 404, got %d", typed.UpstreamStatus())
	}
}

func TestLoginMapsUnauthorized(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"success":false,"error":"Invalid credentials"}`), nil
	})

	_, err := client.Login(context.Background(), "a@b.c", "nope")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginReturnsTokenAndUser(t *testing.T) {
	var body map[string]string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/auth/login" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"success":true,"token":"api-token","user":{"_id":"u1","username":"ali","email":"ali@example.com","role":"admin"}}`), nil
	})

	result, err := client.Login(context.Background(), " ali@example.com ", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if body["email"] != "ali@example.com" || body["password"] != "secret" {
		t.Fatalf("unexpected login body %+v", body)
	}
	if result.Token != "api-token" || result.User.Role != enums.RoleAdmin {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCurrentUserSendsBearer(t *testing.T) {
	var auth string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Get("Authorization")
		return jsonResponse(http.StatusOK, `{"success":true,"data":{"_id":"u1","username":"ali","role":"customer"}}`), nil
	})

	user, err := client.CurrentUser(context.Background(), "api-token")
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if auth != "Bearer api-token" {
		t.Fatalf("unexpected authorization header %q", auth)
	}
	if user.Username != "ali" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestCreateOrderSendsPayloadAndIdempotencyKey(t *testing.T) {
	var (
		key     string
		payload map[string]any
	)
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		key = req.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(http.StatusCreated, `{"success":true,"data":{"_id":"ORD1"}}`), nil
	})

	order := OrderPayload{
		OrderItems: []OrderItem{{Name: "Samosa", Qty: 2, Price: decimal.RequireFromString("120.50"), Product: "p1"}},
		ShippingAddress: ShippingAddress{
			Address: "12 Mall Rd", City: "Khanewal", Phone: "0300", PostalCode: "N/A",
		},
		PaymentMethod: enums.PaymentMethodWhatsApp,
		TotalPrice:    decimal.RequireFromString("241"),
	}
	result, err := client.CreateOrder(context.Background(), "api-token", "idem-1", order)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if result.ID != "ORD1" {
		t.Fatalf("unexpected order id %q", result.ID)
	}
	if key != "idem-1" {
		t.Fatalf("expected idempotency key header, got %q", key)
	}
	if payload["paymentMethod"] != "WhatsApp" {
		t.Fatalf("unexpected payment method %v", payload["paymentMethod"])
	}
	if payload["totalPrice"] != float64(241) {
		t.Fatalf("expected numeric total, got %#v", payload["totalPrice"])
	}
	items := payload["orderItems"].([]any)
	first := items[0].(map[string]any)
	if first["price"] != 120.5 || first["qty"] != float64(2) {
		t.Fatalf("unexpected order item %+v", first)
	}
	shipping := payload["shippingAddress"].(map[string]any)
	if shipping["postalCode"] != "N/A" {
		t.Fatalf("unexpected shipping %+v", shipping)
	}
}

func TestCreateOrderRejectedBody(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":false,"error":"out of stock"}`), nil
	})

	_, err := client.CreateOrder(context.Background(), "tok", "", OrderPayload{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency || typed.Message() != "out of stock" {
		t.Fatalf("expected dependency error with upstream text, got %v", err)
	}
}

func TestUploadImageMultipart(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			t.Fatalf("unexpected content type %q", req.Header.Get("Content-Type"))
		}
		reader := multipart.NewReader(req.Body, params["boundary"])
		part, err := reader.NextPart()
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		if part.FormName() != "image" || part.FileName() != "nuggets.jpg" {
			t.Fatalf("unexpected part %s/%s", part.FormName(), part.FileName())
		}
		return jsonResponse(http.StatusOK, `{"success":true,"image":"/uploads/nuggets.jpg"}`), nil
	})

	path, err := client.UploadImage(context.Background(), "tok", "/tmp/nuggets.jpg", strings.NewReader("jpeg"))
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}
	if path != "/uploads/nuggets.jpg" {
		t.Fatalf("unexpected image path %q", path)
	}
}

func TestBreakerOpensAfterServerErrors(t *testing.T) {
	calls := 0
	rec := &recorderStub{}
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusBadGateway, `{"error":"upstream down"}`), nil
	}, WithBreaker(BreakerSettings{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureCount: 2}), WithRecorder(rec))

	for i := 0; i < 2; i++ {
		if _, err := client.ListCategories(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			t.Fatalf("call %d: expected dependency error, got %v", i, err)
		}
	}
	if client.BreakerState() != "open" {
		t.Fatalf("expected breaker to be open, got %s", client.BreakerState())
	}

	_, err := client.ListCategories(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error from open breaker, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("open breaker should short-circuit, transport saw %d calls", calls)
	}
	if len(rec.states) == 0 || rec.states[len(rec.states)-1] != 2 {
		t.Fatalf("expected recorder to see open state, got %v", rec.states)
	}
	if got := rec.calls["list_categories"]; len(got) != 3 || got[0] {
		t.Fatalf("unexpected recorded outcomes %v", got)
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"message":"name is required"}`), nil
	}, WithBreaker(BreakerSettings{FailureCount: 1, Timeout: time.Minute}))

	for i := 0; i < 3; i++ {
		_, err := client.CreateCategory(context.Background(), "tok", CategoryInput{})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation || typed.Message() != "name is required" {
			t.Fatalf("expected validation error, got %v", err)
		}
	}
	if client.BreakerState() != "closed" {
		t.Fatalf("expected breaker to stay closed, got %s", client.BreakerState())
	}
}

func TestNetworkErrorIsDependency(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	_, err := client.CurrentUser(context.Background(), "tok")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewClientRejectsBadScheme(t *testing.T) {
	if _, err := NewClient("ftp://api.test"); err == nil {
		t.Fatal("expected non-http base url to fail")
	}
	client, err := NewClient("")
	if err != nil {
		t.Fatalf("empty base url should default, got %v", err)
	}
	if client.buildURL("/products") != "http://localhost:5000/api/products" {
		t.Fatalf("unexpected default url %q", client.buildURL("/products"))
	}
}
