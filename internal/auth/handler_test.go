package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/motorlot/dealerd/internal"
	"github.com/motorlot/dealerd/internal/auth"
	"github.com/motorlot/dealerd/internal/permission"
	"github.com/motorlot/dealerd/internal/user"
)

type mockAuthService struct {
	principal *auth.Principal
	loginErr  error
	changeErr error
	resetErr  error
}

func (m *mockAuthService) Login(username, password string) (*auth.Principal, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.principal, nil
}

func (m *mockAuthService) ChangePassword(dto auth.ChangePasswordDTO) error {
	return m.changeErr
}

func (m *mockAuthService) RequestPasswordReset(dto auth.ResetRequestDTO) error {
	return m.resetErr
}

var _ = Describe("Auth Handler", func() {
	var (
		handler *auth.Handler
		mockSvc *mockAuthService
	)

	BeforeEach(func() {
		perms := permission.NewSet(map[string]bool{permission.SellVehicle: true}, false)
		mockSvc = &mockAuthService{
			principal: &auth.Principal{
				UserID:        2,
				Username:      "bob",
				Role:          user.RoleSalesperson,
				RoleName:      "Salesperson",
				Name:          "Bob Seller",
				Active:        true,
				Permissions:   perms,
				PermissionMap: perms.Map(),
			},
		}
		handler = auth.NewHandler(mockSvc)
	})

	Describe("POST /auth/login", func() {
		It("should return the principal without the password hash", func() {
			body := `{"username": "bob", "password": "correct_password"}`
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

			var response map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
			Expect(response["username"]).To(Equal("bob"))
			Expect(response["role"]).To(Equal("Salesperson"))
			Expect(response).NotTo(HaveKey("password"))

			perms, ok := response["permissions"].(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(perms["SELL_VEHICLE"]).To(Equal(true))
		})

		It("should reject a body with missing fields", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username": "bob"}`))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should map a lockout to 403 with the lockout message", func() {
			mockSvc.loginErr = internal.ErrAccountLocked

			body := `{"username": "bob", "password": "wrong"}`
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Body.String()).To(ContainSubstring("locked"))
		})

		It("should map invalid credentials to 401", func() {
			mockSvc.loginErr = internal.ErrInvalidCredentials

			body := `{"username": "bob", "password": "wrong"}`
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("POST /auth/change-password", func() {
		It("should acknowledge a successful change", func() {
			body := `{"username": "bob", "current_password": "old", "new_password": "new"}`
			req := httptest.NewRequest(http.MethodPost, "/auth/change-password", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.ChangePassword(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("POST /auth/reset-request", func() {
		It("should accept a request for a known username", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/reset-request", strings.NewReader(`{"username": "bob"}`))
			w := httptest.NewRecorder()

			handler.RequestPasswordReset(w, req)

			Expect(w.Code).To(Equal(http.StatusAccepted))
		})

		It("should report an unknown username", func() {
			mockSvc.resetErr = internal.ErrUserNotFound

			req := httptest.NewRequest(http.MethodPost, "/auth/reset-request", strings.NewReader(`{"username": "nobody"}`))
			w := httptest.NewRecorder()

			handler.RequestPasswordReset(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
