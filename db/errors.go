package db

import "errors"

// 业务侧可预期的结果，controller 层用 errors.Is 映射为 HTTP 状态码。
// 只有存储层连接类故障原样往上抛。
var (
	// not found
	ErrPersonNotFound   = errors.New("person not found")
	ErrKeyNotFound      = errors.New("key not found")
	ErrLoanNotFound     = errors.New("loan not found")
	ErrLocationNotFound = errors.New("location not found")
	ErrOperatorNotFound = errors.New("operator not found")

	// conflict（唯一性）
	ErrDuplicateExternalID = errors.New("external id already registered")
	ErrDuplicateName       = errors.New("name already in use")

	// invalid state（生命周期不允许）
	ErrKeyUnavailable = errors.New("key already checked out")
	ErrKeyInactive    = errors.New("key is not active")
	ErrHasOpenLoans   = errors.New("person has open loans")
	ErrHasActiveKeys  = errors.New("location has active keys")
	ErrKeyOnLoan      = errors.New("key is on loan")

	// unauthorized
	ErrInvalidPIN = errors.New("pin mismatch")

	// bad input
	ErrPINFormat = errors.New("pin must be 4 to 6 digits")
)
