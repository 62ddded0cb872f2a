package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/heromatch/score"
	"github.com/viant/heromatch/vector"
	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterFunctions registers hero_l2 and match_score with the driver so
// they are available on connections opened after this call. It is safe to
// call more than once.
//
//	hero_l2(a BLOB, b BLOB)   -> REAL  Euclidean distance of encoded vectors
//	match_score(distance REAL) -> REAL score in [0,100]
func RegisterFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("hero_l2", 2, heroL2Impl); err != nil {
			registerErr = err
			return
		}
		registerErr = sqlite.RegisterDeterministicScalarFunction("match_score", 1, matchScoreImpl)
	})
	return registerErr
}

func asVector(arg driver.Value) ([]float64, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.Decode(v)
	default:
		return nil, fmt.Errorf("hero_l2: unsupported argument type %T; want BLOB", arg)
	}
}

func heroL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("hero_l2: expected 2 arguments, got %d", len(args))
	}
	a, err := asVector(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asVector(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	return vector.L2Distance(a, b)
}

func matchScoreImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("match_score: expected 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case float64:
		return score.Score(v), nil
	case int64:
		return score.Score(float64(v)), nil
	default:
		return nil, fmt.Errorf("match_score: unsupported argument type %T; want REAL", v)
	}
}
