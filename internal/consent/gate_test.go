package consent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/signlyhq/signly/internal/auth"
	"github.com/signlyhq/signly/internal/models"
	"github.com/stretchr/testify/require"
)

const testLegalVersion = "2025-07-01"

type fakeUserService struct {
	user     *models.User
	accepted []string
}

func (f *fakeUserService) GetOrCreate(ctx context.Context, userID, email, firstName, lastName, provider string) (*models.User, error) {
	return f.user, nil
}

func (f *fakeUserService) EnsureCustomer(ctx context.Context, user *models.User) (string, error) {
	return "", nil
}

func (f *fakeUserService) AcceptConsent(ctx context.Context, userID, legalVersion string) error {
	f.accepted = append(f.accepted, legalVersion)
	return nil
}

func consentedUser(version string) *models.User {
	now := time.Now()
	return &models.User{
		ID:                "u1",
		Email:             "u1@example.com",
		AuthProvider:      auth.ProviderKakao,
		TermsAcceptedAt:   &now,
		TermsVersion:      version,
		PrivacyAcceptedAt: &now,
		PrivacyVersion:    version,
	}
}

func TestStateFor(t *testing.T) {
	kakaoUser := &auth.User{ID: "u1", Provider: auth.ProviderKakao}

	tests := []struct {
		name     string
		authUser *auth.User
		dbUser   *models.User
		want     State
	}{
		{name: "anonymous", want: StateUnauthenticated},
		{
			name:     "first-party login needs no consent",
			authUser: &auth.User{ID: "u1"},
			want:     StateNoConsentRequired,
		},
		{
			name:     "kakao without record",
			authUser: kakaoUser,
			dbUser:   &models.User{ID: "u1"},
			want:     StateConsentPending,
		},
		{
			name:     "kakao with current consent",
			authUser: kakaoUser,
			dbUser:   consentedUser(testLegalVersion),
			want:     StateConsentGiven,
		},
		{
			name:     "kakao with outdated consent",
			authUser: kakaoUser,
			dbUser:   consentedUser("2024-01-01"),
			want:     StateConsentPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, StateFor(tt.authUser, tt.dbUser, testLegalVersion))
		})
	}
}

func gatedRequest(t *testing.T, gate *Gate, path string, authUser *auth.User) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authUser != nil {
		req = req.WithContext(context.WithValue(req.Context(), auth.UserContextKey, authUser))
	}
	rec := httptest.NewRecorder()
	gate.Middleware(next).ServeHTTP(rec, req)
	return rec
}

func TestGateRedirectsAnonymousFromProtected(t *testing.T) {
	gate := NewGate(&fakeUserService{}, testLegalVersion)

	rec := gatedRequest(t, gate, "/dashboard", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestGateBouncesAuthenticatedFromLogin(t *testing.T) {
	gate := NewGate(&fakeUserService{user: &models.User{ID: "u1"}}, testLegalVersion)

	rec := gatedRequest(t, gate, "/login", &auth.User{ID: "u1"})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, DashboardPath, rec.Header().Get("Location"))
}

func TestGateRedirectsPendingConsent(t *testing.T) {
	gate := NewGate(&fakeUserService{user: &models.User{ID: "u1"}}, testLegalVersion)
	kakaoUser := &auth.User{ID: "u1", Provider: auth.ProviderKakao}

	rec := gatedRequest(t, gate, "/dashboard", kakaoUser)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/consent?next=%2Fdashboard", rec.Header().Get("Location"))
}

func TestGatePassesConsentedUser(t *testing.T) {
	gate := NewGate(&fakeUserService{user: consentedUser(testLegalVersion)}, testLegalVersion)
	kakaoUser := &auth.User{ID: "u1", Provider: auth.ProviderKakao}

	rec := gatedRequest(t, gate, "/dashboard", kakaoUser)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGateExemptsConsentFlowItself(t *testing.T) {
	gate := NewGate(&fakeUserService{user: &models.User{ID: "u1"}}, testLegalVersion)
	kakaoUser := &auth.User{ID: "u1", Provider: auth.ProviderKakao}

	rec := gatedRequest(t, gate, "/consent", kakaoUser)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGatePassesAnonymousOnPublic(t *testing.T) {
	gate := NewGate(&fakeUserService{}, testLegalVersion)

	rec := gatedRequest(t, gate, "/pricing", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
