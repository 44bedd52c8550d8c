package runner

import (
	"time"

	"github.com/f3rmion/frostrelay/bench"
)

// KeygenResult is the outcome of one key generation run.
type KeygenResult struct {
	Success bool `json:"success"`

	// KeyShare is the serialized key share; the caller stores it.
	KeyShare []byte `json:"key_share,omitempty"`

	// PublicKey is the 32-byte x-only group key.
	PublicKey []byte `json:"public_key,omitempty"`

	Error    string  `json:"error,omitempty"`
	Duration float64 `json:"duration_secs"`

	Err error `json:"-"`
}

// SigningResult is the outcome of one signing run.
type SigningResult struct {
	Success   bool              `json:"success"`
	Signature *SchnorrSignature `json:"signature,omitempty"`
	Error     string            `json:"error,omitempty"`
	Duration  float64           `json:"duration_secs"`
	Benchmark *bench.Report     `json:"benchmark,omitempty"`

	Err error `json:"-"`
}

func keygenFailure(err error, elapsed time.Duration) KeygenResult {
	return KeygenResult{
		Error:    err.Error(),
		Duration: elapsed.Seconds(),
		Err:      err,
	}
}

func signingFailure(err error, elapsed time.Duration, report *bench.Report) SigningResult {
	return SigningResult{
		Error:     err.Error(),
		Duration:  elapsed.Seconds(),
		Benchmark: report,
		Err:       err,
	}
}
