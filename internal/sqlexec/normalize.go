package sqlexec

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"
)

// normalize maps driver values onto int64, float64, string, bool, time.Time
// or nil so results compare the same across engines.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int64:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return strconv.FormatUint(x, 10)
		}
		return int64(x)
	case uint:
		return normalize(uint64(x))
	case float32:
		return float64(x)
	case float64, bool, string, time.Time:
		return x
	case []byte:
		return string(x)
	case *big.Int:
		if x == nil {
			return nil
		}
		if x.IsInt64() {
			return x.Int64()
		}
		return x.String()
	case interface{ Float64() float64 }:
		return x.Float64()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
