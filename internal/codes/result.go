package codes

import "errors"

// UploadCheckResult is the wire form of a check: exactly one of
// ActivationCodes or ErrorMessage is set.
type UploadCheckResult struct {
	ActivationCodes []string `json:"activationCodes,omitempty"`
	ErrorMessage    string   `json:"errorMessage,omitempty"`
}

// NewResult converts the outcome of Check or CheckCodes.
func NewResult(codes []string, err error) UploadCheckResult {
	if err != nil {
		var ce *CheckError
		if errors.As(err, &ce) {
			return UploadCheckResult{ErrorMessage: ce.Message}
		}
		return UploadCheckResult{ErrorMessage: err.Error()}
	}
	return UploadCheckResult{ActivationCodes: codes}
}

// OK reports whether the result carries codes.
func (r UploadCheckResult) OK() bool {
	return r.ErrorMessage == ""
}
