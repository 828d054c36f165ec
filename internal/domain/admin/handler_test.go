package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homa/homa/internal/domain/identity"
	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/auth"
)

func newTestServer() (*echo.Echo, *testDeps) {
	svc, deps := newTestService()
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(zerolog.Nop())
	root := e.Group("")
	NewHandler(svc).RegisterRoutes(root, root.Group("/api/v1"))
	return e, deps
}

func serve(e *echo.Echo, method, path, body, contentType string, actor *auth.Actor) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if actor != nil {
		req = req.WithContext(auth.WithActor(context.Background(), actor))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var adminActor = &auth.Actor{UserID: 100, Role: auth.RoleAdmin}

func TestHandler_CreateDepartment_Form(t *testing.T) {
	e, deps := newTestServer()

	rec := serve(e, http.MethodPost, "/admin/add/department", "name=Cardiology&description=Heart",
		echo.MIMEApplicationForm, adminActor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(deps.depts.depts) != 1 {
		t.Errorf("expected 1 department, got %d", len(deps.depts.depts))
	}

	rec = serve(e, http.MethodPost, "/admin/add/department", "name=Cardiology",
		echo.MIMEApplicationForm, adminActor)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate, got %d", rec.Code)
	}
}

func TestHandler_RoleGate(t *testing.T) {
	e, deps := newTestServer()

	tests := []struct {
		name  string
		actor *auth.Actor
		want  int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"patient", &auth.Actor{UserID: 2, Role: auth.RolePatient, PatientID: 1}, http.StatusForbidden},
		{"doctor", &auth.Actor{UserID: 3, Role: auth.RoleDoctor, DoctorID: 1}, http.StatusForbidden},
		{"blocked admin", &auth.Actor{UserID: 4, Role: auth.RoleAdmin, Blocked: true}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/admin/add/department", "name=X", echo.MIMEApplicationForm, tt.actor)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
	if len(deps.depts.depts) != 0 {
		t.Error("expected no department created by rejected callers")
	}
}

func TestHandler_CreateDoctorAPI(t *testing.T) {
	e, deps := newTestServer()
	deps.depts.Create(context.Background(), &Department{Name: "Cardiology", IsActive: true})

	body := `{"email":"house@homa.com","password":"doc123","full_name":"Gregory House","department_id":1}`
	rec := serve(e, http.MethodPost, "/api/v1/doctors", body, echo.MIMEApplicationJSON, adminActor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["code"] != "DOC-1-1" {
		t.Errorf("expected code DOC-1-1, got %v", resp["code"])
	}

	patient := &auth.Actor{UserID: 5, Role: auth.RolePatient, PatientID: 1}
	rec = serve(e, http.MethodPost, "/api/v1/doctors", body, echo.MIMEApplicationJSON, patient)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for patient, got %d", rec.Code)
	}
}

func TestHandler_Blacklist(t *testing.T) {
	e, deps := newTestServer()
	u := &identity.User{Email: "p@homa.com", Role: auth.RolePatient}
	deps.users.Create(context.Background(), u)

	rec := serve(e, http.MethodGet, "/admin/blacklist/1", "", "", adminActor)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !deps.users.users[u.ID].Blocked {
		t.Error("expected user blocked")
	}

	rec = serve(e, http.MethodGet, "/admin/blacklist/abc", "", "", adminActor)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestHandler_DoctorForm(t *testing.T) {
	e, deps := newTestServer()
	deps.depts.Create(context.Background(), &Department{Name: "Cardiology", IsActive: true})

	rec := serve(e, http.MethodGet, "/admin/add/doctors", "", "", adminActor)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var form DoctorForm
	json.Unmarshal(rec.Body.Bytes(), &form)
	if len(form.Departments) != 1 || form.DefaultQualification != "MBBS" {
		t.Errorf("unexpected form: %+v", form)
	}
}
