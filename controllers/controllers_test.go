package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"

	"businessboard/backend/database"
	"businessboard/backend/domain"
	"businessboard/backend/models"
	"businessboard/backend/routes"
)

type env struct {
	r     *gin.Engine
	store *database.MemoryStore
	svc   *domain.Service
}

func newEnv(t *testing.T) env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := database.NewMemoryStore()
	logger, _ := test.NewNullLogger()
	svc := domain.NewService(st, domain.Options{Logger: logger})
	t.Cleanup(svc.Wait)
	r := gin.New()
	routes.Register(r, svc)
	return env{r: r, store: st, svc: svc}
}

func (e env) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d: %s", w.Code, want, w.Body.String())
	}
}

func TestBoardScenario(t *testing.T) {
	e := newEnv(t)
	bt, err := e.store.InsertBusinessType(context.Background(), "Technology")
	if err != nil {
		t.Fatalf("insert type: %v", err)
	}

	w := e.do(t, http.MethodPost, "/api/users", `{"name":"Ana","email":"ana@x.com"}`)
	expectStatus(t, w, http.StatusCreated)
	user := decode[models.User](t, w)
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("password leaked: %s", w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/api/states", `{"name":"New"}`)
	expectStatus(t, w, http.StatusCreated)
	newState := decode[models.StateResponse](t, w)
	if newState.Message != "State created successfully." {
		t.Fatalf("message = %q", newState.Message)
	}
	w = e.do(t, http.MethodPost, "/api/states", `{"name":"Closed"}`)
	expectStatus(t, w, http.StatusCreated)
	closed := decode[models.StateResponse](t, w).State

	body, _ := json.Marshal(map[string]any{
		"name": "Acme Deal", "business_type_id": bt.ID, "user_id": user.ID,
		"state_id": newState.State.ID, "value": 2500.00,
	})
	w = e.do(t, http.MethodPost, "/api/businesses", string(body))
	expectStatus(t, w, http.StatusCreated)
	if !strings.Contains(w.Body.String(), `"value":"2500.00"`) {
		t.Fatalf("value not rendered with two decimals: %s", w.Body.String())
	}
	biz := decode[models.Business](t, w)

	w = e.do(t, http.MethodPut, "/api/businesses/"+itoa(biz.ID), `{"state_id":`+itoa(closed.ID)+`}`)
	expectStatus(t, w, http.StatusOK)
	moved := decode[models.Business](t, w)
	if moved.StateID != closed.ID || moved.Value.String() != "2500.00" || moved.Name != "Acme Deal" {
		t.Fatalf("unexpected move result %+v", moved)
	}
	if moved.State == nil || moved.State.Name != "Closed" {
		t.Fatalf("state relation missing: %s", w.Body.String())
	}

	w = e.do(t, http.MethodDelete, "/api/states/"+itoa(newState.State.ID), "")
	expectStatus(t, w, http.StatusOK)
	if decode[models.MessageResponse](t, w).Message != "State deleted successfully." {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = e.do(t, http.MethodDelete, "/api/states/"+itoa(closed.ID), "")
	expectStatus(t, w, http.StatusBadRequest)
	if got := decode[errorBody](t, w).Error; got != "You cannot delete a state that has businesses associated with it." {
		t.Fatalf("error = %q", got)
	}

	w = e.do(t, http.MethodGet, "/api/board", "")
	expectStatus(t, w, http.StatusOK)
	board := decode[models.Board](t, w)
	if len(board.Businesses) != 1 || len(board.States) != 1 || len(board.Users) != 1 || len(board.BusinessTypes) != 1 {
		t.Fatalf("unexpected board %s", w.Body.String())
	}

	w = e.do(t, http.MethodDelete, "/api/businesses/"+itoa(biz.ID), "")
	expectStatus(t, w, http.StatusOK)
	if decode[models.MessageResponse](t, w).Message != "Business removed successfully." {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestCreateBusinessValidation(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/businesses", "")
	expectStatus(t, w, http.StatusUnprocessableEntity)
	body := decode[errorBody](t, w)
	if len(body.Errors) != 5 || body.Message != "The name field is required. (and 4 more errors)" {
		t.Fatalf("unexpected body %+v", body)
	}

	w = e.do(t, http.MethodPost, "/api/businesses", `{"name":"X","business_type_id":"abc"}`)
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if got := decode[errorBody](t, w).Errors["business_type_id"]; len(got) != 1 || got[0] != "The business_type_id field must be an integer." {
		t.Fatalf("errors = %v", got)
	}

	w = e.do(t, http.MethodPost, "/api/businesses", `{"value":"lots"}`)
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if got := decode[errorBody](t, w).Errors["value"]; len(got) != 1 || got[0] != "The value field must be a number." {
		t.Fatalf("errors = %v", got)
	}

	w = e.do(t, http.MethodPost, "/api/businesses", `{"name":`)
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if _, ok := decode[errorBody](t, w).Errors["body"]; !ok {
		t.Fatalf("expected body error: %s", w.Body.String())
	}
}

func TestUpdateBusinessRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bt, _ := e.store.InsertBusinessType(ctx, "Retail")
	u, _ := e.store.InsertUser(ctx, models.User{Name: "Ana", Email: "ana@x.com"})
	st, _ := e.store.InsertState(ctx, "New")
	b, err := e.store.InsertBusiness(ctx, models.Business{Name: "Acme", BusinessTypeID: bt.ID, UserID: u.ID, StateID: st.ID, Value: models.MustMoney("1")})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	w := e.do(t, http.MethodPut, "/api/businesses/"+itoa(b.ID), `{"name":"Renamed"}`)
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if got := decode[errorBody](t, w).Errors["state_id"]; len(got) != 1 || got[0] != "The state_id field is required." {
		t.Fatalf("errors = %v", got)
	}

	w = e.do(t, http.MethodPut, "/api/businesses/9999", `{"name":"Renamed"}`)
	expectStatus(t, w, http.StatusNotFound)
	if decode[errorBody](t, w).Message != "Business not found." {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = e.do(t, http.MethodPut, "/api/businesses/abc", `{"state_id":1}`)
	expectStatus(t, w, http.StatusNotFound)

	w = e.do(t, http.MethodPut, "/api/businesses/"+itoa(b.ID), `{"state_id":9999}`)
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if got := decode[errorBody](t, w).Errors["state_id"]; len(got) != 1 || got[0] != "The selected state_id is invalid." {
		t.Fatalf("errors = %v", got)
	}

	w = e.do(t, http.MethodPut, "/api/businesses/"+itoa(b.ID), `{"state_id":`+itoa(st.ID)+`,"name":"Renamed"}`)
	expectStatus(t, w, http.StatusOK)
	if got := decode[models.Business](t, w); got.Name != "Renamed" || got.Value.String() != "1.00" {
		t.Fatalf("unexpected %+v", got)
	}

	w = e.do(t, http.MethodDelete, "/api/businesses/9999", "")
	expectStatus(t, w, http.StatusNotFound)
}

func TestStateEndpoints(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/states", `{"name":"  "}`)
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if got := decode[errorBody](t, w).Errors["name"]; len(got) != 1 || got[0] != "State name is required." {
		t.Fatalf("errors = %v", got)
	}

	st := decode[models.StateResponse](t, e.do(t, http.MethodPost, "/api/states", `{"name":"New"}`)).State
	w = e.do(t, http.MethodPost, "/api/states", `{"name":"New"}`)
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if got := decode[errorBody](t, w); got.Message != "A state with this name already exists." || len(got.Errors["name"]) != 1 {
		t.Fatalf("unexpected body %+v", got)
	}

	w = e.do(t, http.MethodPut, "/api/states/"+itoa(st.ID), `{"name":"New"}`)
	expectStatus(t, w, http.StatusOK)
	if got := decode[models.StateResponse](t, w).Message; got != "No changes were made. The state name remains the same." {
		t.Fatalf("message = %q", got)
	}

	w = e.do(t, http.MethodPut, "/api/states/"+itoa(st.ID), `{"name":"Fresh"}`)
	expectStatus(t, w, http.StatusOK)
	res := decode[models.StateResponse](t, w)
	if res.Message != "State updated successfully." || res.State.Name != "Fresh" {
		t.Fatalf("unexpected %+v", res)
	}

	w = e.do(t, http.MethodGet, "/api/states", "")
	expectStatus(t, w, http.StatusOK)
	if list := decode[[]models.State](t, w); len(list) != 1 || list[0].Name != "Fresh" {
		t.Fatalf("unexpected list %+v", list)
	}

	expectStatus(t, e.do(t, http.MethodDelete, "/api/states/9999", ""), http.StatusNotFound)
}

func TestUserEndpoints(t *testing.T) {
	e := newEnv(t)
	expectStatus(t, e.do(t, http.MethodPost, "/api/users", `{"name":"Ana","email":"ana@x.com"}`), http.StatusCreated)

	w := e.do(t, http.MethodPost, "/api/users", `{"name":"Other","email":"ana@x.com"}`)
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if got := decode[errorBody](t, w).Errors["email"]; len(got) != 1 || got[0] != "The email has already been taken." {
		t.Fatalf("errors = %v", got)
	}

	w = e.do(t, http.MethodPost, "/api/users", `{"name":"Bad","email":"nope"}`)
	expectStatus(t, w, http.StatusUnprocessableEntity)

	w = e.do(t, http.MethodGet, "/api/users", "")
	expectStatus(t, w, http.StatusOK)
	if list := decode[[]models.User](t, w); len(list) != 1 {
		t.Fatalf("unexpected list %+v", list)
	}

	w = e.do(t, http.MethodGet, "/api/business-types", "")
	expectStatus(t, w, http.StatusOK)
	if w.Body.String() != "[]" {
		t.Fatalf("business types = %s", w.Body.String())
	}
}

func TestExportsAndHealth(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bt, _ := e.store.InsertBusinessType(ctx, "Retail")
	u, _ := e.store.InsertUser(ctx, models.User{Name: "Ana", Email: "ana@x.com"})
	st, _ := e.store.InsertState(ctx, "New")
	if _, err := e.store.InsertBusiness(ctx, models.Business{Name: "Acme", BusinessTypeID: bt.ID, UserID: u.ID, StateID: st.ID, Value: models.MustMoney("10")}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	w := e.do(t, http.MethodGet, "/api/board/export", "")
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/vnd.openxmlformats") {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), ".xlsx") || !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatal("not an xlsx attachment")
	}

	w = e.do(t, http.MethodGet, "/api/board/report?business_type_id="+itoa(bt.ID), "")
	expectStatus(t, w, http.StatusOK)
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("not a pdf")
	}

	expectStatus(t, e.do(t, http.MethodGet, "/api/board/export?business_type_id=x", ""), http.StatusUnprocessableEntity)

	w = e.do(t, http.MethodGet, "/api/health", "")
	expectStatus(t, w, http.StatusOK)
	if w.Body.String() != `{"status":"ok"}` {
		t.Fatalf("health = %s", w.Body.String())
	}
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
