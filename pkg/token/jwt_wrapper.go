package token

import "focushub/pkg/config"

// Overridden in tests
var (
	GenerateJWTFunc = GenerateJWT
	ParseJWTFunc    = ParseJWT
)

// GenerateJWTWrapper lets the member use case tests swap token issuance
func GenerateJWTWrapper(memberID, email, role string) (string, error) {
	return GenerateJWTFunc(memberID, email, role, config.EnvConfig.MemberService)
}

// ParseJWTWrapper lets use case tests swap token parsing
func ParseJWTWrapper(t string) (*Claims, error) {
	return ParseJWTFunc(t)
}
