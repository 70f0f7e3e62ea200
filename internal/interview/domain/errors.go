package domain

import "errors"

var (
	// ErrNotFound は対象の面接記録が存在しない、または参照権限がない場合に返す。
	ErrNotFound = errors.New("interview record not found")
	// ErrForbidden は操作権限がない場合に返す。
	ErrForbidden = errors.New("forbidden")
	// ErrCandidateNameRequired は候補者名が空のまま保存・分析しようとした場合に返す。
	ErrCandidateNameRequired = &ValidationError{Field: "candidateName", Message: "지원자 이름을 입력해주세요."}
)

// ValidationError is a user-facing input error. No state is mutated when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
