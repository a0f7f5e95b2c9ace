package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oaklinebank/oakline-backend/internal/accounts"
	pkgerrors "github.com/oaklinebank/oakline-backend/pkg/errors"
)

type stubAccountsService struct {
	user       *accounts.UserDTO
	err        error
	deletedIDs []uuid.UUID
}

func (s *stubAccountsService) Register(ctx context.Context, req accounts.RegisterRequest) (*accounts.UserDTO, error) {
	return s.user, s.err
}

func (s *stubAccountsService) Get(ctx context.Context, id uuid.UUID) (*accounts.UserDTO, error) {
	return s.user, s.err
}

func (s *stubAccountsService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deletedIDs = append(s.deletedIDs, id)
	return nil
}

func (s *stubAccountsService) Restore(ctx context.Context, id uuid.UUID) (*accounts.UserDTO, error) {
	return s.user, s.err
}

const registerBody = `{
	"first_name": "Jamie",
	"last_name": "Rivera",
	"email": "jamie@example.com",
	"security_question": "birth_city",
	"security_answer": "tulsa",
	"password": "Secret123!",
	"confirm_password": "Secret123!"
}`

func TestAccountsRegisterCreated(t *testing.T) {
	user := &accounts.UserDTO{ID: uuid.New(), Email: "jamie@example.com"}
	handler := AccountsRegister(&stubAccountsService{user: user}, nil)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte(registerBody)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User.Email != "jamie@example.com" {
		t.Fatalf("unexpected user %q", envelope.Data.User.Email)
	}
}

func TestAccountsRegisterValidation(t *testing.T) {
	handler := AccountsRegister(&stubAccountsService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte(`{"email":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountsRegisterPasswordMismatchMessage(t *testing.T) {
	svc := &stubAccountsService{err: pkgerrors.New(pkgerrors.CodePasswordMismatch, "password confirmation does not match")}
	handler := AccountsRegister(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte(registerBody)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodePasswordMismatch) {
		t.Fatalf("unexpected code %q", envelope.Error.Code)
	}
	if envelope.Error.Message != "Passwords do not match." {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func routedRequest(t *testing.T, method, path string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.MethodFunc(method, "/accounts/{accountID}", handler)
	r.MethodFunc(method, "/accounts/{accountID}/restore", handler)

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAccountsDeleteSuccess(t *testing.T) {
	svc := &stubAccountsService{}
	id := uuid.New()

	rec := routedRequest(t, http.MethodDelete, "/accounts/"+id.String(), AccountsDelete(svc, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.deletedIDs) != 1 || svc.deletedIDs[0] != id {
		t.Fatalf("expected delete call for %s, got %v", id, svc.deletedIDs)
	}
}

func TestAccountsDeleteInvalidID(t *testing.T) {
	rec := routedRequest(t, http.MethodDelete, "/accounts/not-a-uuid", AccountsDelete(&stubAccountsService{}, nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountsRestoreStateConflict(t *testing.T) {
	svc := &stubAccountsService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "account is not deleted")}

	rec := routedRequest(t, http.MethodPost, "/accounts/"+uuid.NewString()+"/restore", AccountsRestore(svc, nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
