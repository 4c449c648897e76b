package auth

const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"

	// ProviderKakao marks users who signed in through Kakao OAuth. These
	// users must pass the legal-consent gate before reaching protected
	// routes.
	ProviderKakao = "kakao"

	DefaultRedirectAfterLogin = "/"
)
