package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	intconfig "busbooking/internal/config"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	h "busbooking/internal/http/handlers"
	"busbooking/internal/seatmap"
	"busbooking/internal/services"
	"busbooking/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "router-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

var testJourney = models.Journey{ID: 7, BusID: "KA-01", RouteFrom: "Bengaluru", RouteTo: "Hubballi", TripDate: "2026-05-01", DepartureTime: "10:15", ArrivalTime: "14:00"}

type fakeJourneys struct{}

func (fakeJourneys) Search(ctx context.Context, from, to, date string) ([]models.Journey, error) {
	return []models.Journey{testJourney}, nil
}

func (fakeJourneys) GetByID(ctx context.Context, id int64) (models.Journey, error) {
	if id != testJourney.ID {
		return models.Journey{}, domain.NotFoundError{Resource: "journey"}
	}
	return testJourney, nil
}

func (fakeJourneys) ListPoints(ctx context.Context, journeyID int64) (models.JourneyPoints, error) {
	return models.JourneyPoints{
		Boarding: []models.Point{{ID: 1, Kind: models.PointBoarding, Name: "Majestic", Time: "10:15"}},
		Dropping: []models.Point{{ID: 2, Kind: models.PointDropping, Name: "Hubballi", Time: "14:00"}},
	}, nil
}

type fakeLayouts struct{ saved int }

func (f *fakeLayouts) FetchLayout(ctx context.Context, busID string) (*seatmap.Payload, error) {
	p := &seatmap.Payload{}
	for r := 0; r < 2; r++ {
		for c := 0; c < seatmap.Columns; c++ {
			p.Lower.Set(r, c, 0, 75000)
			p.Upper.Set(r, c, 0, 90000)
		}
	}
	p.Lower.Set(0, 1, int(seatmap.Sold), 75000)
	return p, nil
}

func (f *fakeLayouts) SaveLayout(ctx context.Context, busID string, p *seatmap.Payload) (int, error) {
	f.saved++
	return 6, nil
}

type fakeBookings struct{ stored []models.Booking }

func (f *fakeBookings) Create(ctx context.Context, ref string, p models.BookingPayload) (models.Booking, error) {
	b := models.Booking{Ref: ref, JourneyID: p.JourneyID, TripDate: p.TripDate, Contact: p.Contact, Total: p.Total, Seats: p.Seats,
		Passengers: p.Passengers, PaymentStatus: models.PaymentPending, BoardingPoint: p.Boarding.Name, DroppingPoint: p.Dropping.Name}
	f.stored = append(f.stored, b)
	return b, nil
}

func (f *fakeBookings) GetByRef(ctx context.Context, ref string) (models.Booking, error) {
	for _, b := range f.stored {
		if b.Ref == ref {
			return b, nil
		}
	}
	return models.Booking{}, domain.NotFoundError{Resource: "booking"}
}

func (f *fakeBookings) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return []models.Booking{}, nil
}

func (f *fakeBookings) ListByPhone(ctx context.Context, phone string) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range f.stored {
		if b.Contact.Phone == phone {
			out = append(out, b)
		}
	}
	return out, nil
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	layouts  *fakeLayouts
	bookings *fakeBookings
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	layouts := &fakeLayouts{}
	bookings := &fakeBookings{}
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	mgr := session.NewManager(session.ManagerOptions{
		Journeys: fakeJourneys{},
		Layouts:  layouts,
		Config:   session.Config{Interval: time.Hour, Clock: func() time.Time { return now }},
	})
	t.Cleanup(mgr.Shutdown)

	bookingSvc := services.BookingService{Bookings: bookings, Journeys: fakeJourneys{}}
	a := &h.API{
		Sessions: mgr,
		Journeys: fakeJourneys{},
		Layouts:  layouts,
		Checkout: services.CheckoutService{Bookings: bookings, GatewayURL: "https://pay.example"},
		Bookings: bookingSvc,
		Docs:     services.DocsService{Bookings: bookingSvc},
		Location: time.UTC,
	}
	env := intconfig.Env{JWTSecret: testSecret, CORSOrigins: []string{"http://localhost:5173"}}
	return &testServer{t: t, router: NewRouter(env, a), layouts: layouts, bookings: bookings}
}

func (s *testServer) do(method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	out := map[string]any{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func token(t *testing.T, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBookingFlowEndToEnd(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(http.MethodPost, "/api/sessions", gin.H{"journey_id": 7}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", w.Code, w.Body.String())
	}
	id, _ := body["session_id"].(string)
	if id == "" || body["default_layout"] != false {
		t.Fatalf("snapshot = %v", body)
	}
	base := "/api/sessions/" + id

	if w, body = s.do(http.MethodPost, base+"/seats", gin.H{"seat_id": "lower-0-1"}, ""); w.Code != http.StatusConflict || body["code"] != "seat_unavailable" {
		t.Fatalf("sold seat: %d %v", w.Code, body)
	}
	if w, body = s.do(http.MethodPost, base+"/steps/next", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("next without seats: %d %v", w.Code, body)
	}
	if w, body = s.do(http.MethodPost, base+"/seats", gin.H{"seat_id": "lower-0-0"}, ""); w.Code != http.StatusOK || body["added"] != true {
		t.Fatalf("select seat: %d %v", w.Code, body)
	}
	if w, _ = s.do(http.MethodPost, base+"/steps/next", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("next to points: %d", w.Code)
	}
	if w, _ = s.do(http.MethodPost, base+"/steps/passenger_info", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("skip to passengers without points: %d", w.Code)
	}
	if w, _ = s.do(http.MethodPut, base+"/points", gin.H{"boarding_point_id": 1, "dropping_point_id": 2}, ""); w.Code != http.StatusOK {
		t.Fatalf("points: %d", w.Code)
	}
	if w, body = s.do(http.MethodPost, base+"/steps/next", nil, ""); w.Code != http.StatusOK || body["step"] != "passenger_info" {
		t.Fatalf("next to passengers: %d %v", w.Code, body)
	}

	bad := gin.H{
		"contact":    gin.H{"name": "Meera", "phone": "12345", "email": "meera@example.com"},
		"passengers": []gin.H{{"seat_id": "lower-0-0", "name": "Meera", "age": 30, "gender": "female"}},
	}
	w, body = s.do(http.MethodPost, base+"/checkout", bad, "")
	details, _ := body["details"].(map[string]any)
	if w.Code != http.StatusBadRequest || details["contact.phone"] == nil {
		t.Fatalf("bad phone: %d %v", w.Code, body)
	}

	good := gin.H{
		"contact":    gin.H{"name": "Meera", "phone": "9876543210", "email": "meera@example.com"},
		"passengers": []gin.H{{"seat_id": "lower-0-0", "name": "Meera", "age": 30, "gender": "female"}},
	}
	w, body = s.do(http.MethodPost, base+"/checkout", good, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout: %d %s", w.Code, w.Body.String())
	}
	ref, _ := body["booking_ref"].(string)
	if ref == "" || body["amount"] != float64(75000) || !strings.HasPrefix(body["redirect_url"].(string), "https://pay.example?") {
		t.Fatalf("handoff = %v", body)
	}
	if w, _ = s.do(http.MethodGet, base, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("session should end after checkout: %d", w.Code)
	}

	if w, body = s.do(http.MethodGet, "/api/bookings?phone=9876543210", nil, ""); w.Code != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("history: %d %v", w.Code, body)
	}
	guest := body["bookings"].([]any)[0].(map[string]any)
	contact := guest["contact"].(map[string]any)
	if contact["email"] != "" || contact["phone"] != "" || contact["name"] != "M." || len(guest["passengers"].([]any)) != 0 {
		t.Fatalf("guest history leaks personal data: %v", guest)
	}
	if guest["trip_date"] != "2026-05-01" || guest["booking_ref"] != ref {
		t.Fatalf("guest history entry = %v", guest)
	}
	w, _ = s.do(http.MethodGet, "/api/bookings/"+ref+"/e-ticket", nil, "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("e-ticket: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if w, _ = s.do(http.MethodGet, "/api/bookings/nope", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing booking: %d", w.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	s := newTestServer(t)

	if w, _ := s.do(http.MethodPost, "/api/sessions", gin.H{"journey_id": 99}, ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown journey: %d", w.Code)
	}
	if w, _ := s.do(http.MethodPost, "/api/sessions", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("empty body: %d", w.Code)
	}
	if w, _ := s.do(http.MethodGet, "/api/sessions/missing", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing session: %d", w.Code)
	}

	_, body := s.do(http.MethodPost, "/api/sessions", gin.H{"journey_id": 7}, "")
	base := "/api/sessions/" + body["session_id"].(string)

	if w, _ := s.do(http.MethodPost, base+"/seats", gin.H{"seat_id": "middle-0-0"}, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad seat id: %d", w.Code)
	}
	if w, _ := s.do(http.MethodDelete, base+"/seats/lower-1-1", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("deselect unselected: %d", w.Code)
	}
	if w, _ := s.do(http.MethodPut, base+"/auto-refresh", gin.H{}, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("auto-refresh without flag: %d", w.Code)
	}
	if w, body := s.do(http.MethodPut, base+"/auto-refresh", gin.H{"enabled": false}, ""); w.Code != http.StatusOK || body["auto_refresh"] != false {
		t.Fatalf("pause: %d %v", w.Code, body)
	}
	if w, _ := s.do(http.MethodPost, base+"/steps/9", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown step: %d", w.Code)
	}
	if w, _ := s.do(http.MethodDelete, base, nil, ""); w.Code != http.StatusNoContent {
		t.Fatalf("close: %d", w.Code)
	}
}

func TestJourneyRoutes(t *testing.T) {
	s := newTestServer(t)

	if w, body := s.do(http.MethodGet, "/api/journeys?from=Bengaluru&date=2026-05-01", nil, ""); w.Code != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("search: %d %v", w.Code, body)
	}
	if w, _ := s.do(http.MethodGet, "/api/journeys?date=01-05-2026", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", w.Code)
	}
	if w, body := s.do(http.MethodGet, "/api/journeys/7", nil, ""); w.Code != http.StatusOK || body["points"] == nil {
		t.Fatalf("journey: %d %v", w.Code, body)
	}
	if w, _ := s.do(http.MethodGet, "/api/journeys/abc", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", w.Code)
	}
}

func TestAdminPushSeats(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(http.MethodPost, "/api/sessions", gin.H{"journey_id": 7}, "")
	sessionPath := "/api/sessions/" + body["session_id"].(string)

	push := gin.H{"lower": gin.H{"seats": gin.H{"0": gin.H{"0": 1}}, "prices": gin.H{"0": gin.H{"0": "₹800"}}}}

	if w, _ := s.do(http.MethodPost, "/api/admin/buses/KA-01/seats", push, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("guest push: %d", w.Code)
	}
	if w, _ := s.do(http.MethodPost, "/api/admin/buses/KA-01/seats", push, token(t, "customer")); w.Code != http.StatusForbidden {
		t.Fatalf("customer push: %d", w.Code)
	}
	w, body := s.do(http.MethodPost, "/api/admin/buses/KA-01/seats", push, token(t, "admin"))
	if w.Code != http.StatusOK || body["sessions_updated"] != float64(1) || s.layouts.saved != 1 {
		t.Fatalf("admin push: %d %v", w.Code, body)
	}

	_, snap := s.do(http.MethodGet, sessionPath, nil, "")
	lower := snap["lower_deck"].([]any)
	cell := lower[0].([]any)[0].(map[string]any)
	if cell["status"] != "sold" || cell["price"] != float64(80000) {
		t.Fatalf("pushed cell = %v", cell)
	}
}

func TestHealthAndRoutes(t *testing.T) {
	s := newTestServer(t)
	if w, _ := s.do(http.MethodGet, "/api/health", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	if w, _ := s.do(http.MethodGet, "/api/db-check", nil, ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("db-check without db: %d", w.Code)
	}
	if w, body := s.do(http.MethodGet, "/api/routes", nil, ""); w.Code != http.StatusOK || len(body["routes"].([]any)) == 0 {
		t.Fatalf("routes: %d", w.Code)
	}
	if w, _ := s.do(http.MethodGet, "/api/nowhere", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("no route: %d", w.Code)
	}
}
