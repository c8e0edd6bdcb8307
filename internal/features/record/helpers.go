package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrUnknownCollection = errors.New("unknown collection")

// DateLayout is how dates appear in merge output and reports.
const DateLayout = "01/02/2006"

// ParseInt64 parses a string or number into an int64
func ParseInt64(val interface{}, defaultVal int64) int64 {
	if val == nil {
		return defaultVal
	}
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
	}
	return defaultVal
}

// Stringify converts a stored value into its display string. Missing values
// become "", dates use DateLayout, ids their hex form.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(DateLayout)
	case primitive.DateTime:
		return val.Time().UTC().Format(DateLayout)
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Decimal128:
		return val.String()
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int, int32, int64:
		return fmt.Sprintf("%d", val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// idFilter matches either an ObjectID or a plain string _id.
func idFilter(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}
