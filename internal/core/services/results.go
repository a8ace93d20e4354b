package services

// ServiceResult is the outcome of an operation that can fail for more than
// one reason at once. Errors is the complete, ordered list of what failed;
// it is empty on success and may also be empty on low-detail failures
// (wrong password on login).
type ServiceResult struct {
	Succeeded bool     `json:"succeeded"`
	Errors    []string `json:"errors,omitempty"`
}

// AuthResult is a ServiceResult that additionally carries a freshly issued
// token pair on success.
type AuthResult struct {
	ServiceResult
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

func failure(errors ...string) *ServiceResult {
	return &ServiceResult{Succeeded: false, Errors: errors}
}

func authFailure(errors ...string) *AuthResult {
	return &AuthResult{ServiceResult: ServiceResult{Succeeded: false, Errors: errors}}
}
