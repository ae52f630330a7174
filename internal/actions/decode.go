package actions

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"nightclub_backoffice/pkg/utils"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

// jsonTextToSliceHook lets nested collections be posted as a JSON string field.
func jsonTextToSliceHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Slice {
			return data, nil
		}
		raw := strings.TrimSpace(fmt.Sprint(data))
		if !strings.HasPrefix(raw, "[") {
			return data, nil
		}
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		var out []interface{}
		if err := dec.Decode(&out); err != nil {
			return nil, errors.New("must be a valid JSON array")
		}
		return out, nil
	}
}

func decimalHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != decimalType {
			return data, nil
		}
		switch v := data.(type) {
		case decimal.Decimal:
			return v, nil
		case json.Number:
			return decimal.NewFromString(v.String())
		case string:
			d, err := decimal.NewFromString(strings.TrimSpace(v))
			if err != nil {
				return nil, errors.New("must be a number")
			}
			return d, nil
		case float64:
			return decimal.NewFromFloat(v), nil
		case float32:
			return decimal.NewFromFloat32(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		}
		return data, nil
	}
}

func formBoolHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.Bool || f.Kind() != reflect.String {
			return data, nil
		}
		b, err := utils.ParseOptionalBool(fmt.Sprint(data))
		if err != nil {
			return nil, errors.New("must be true or false")
		}
		return b != nil && *b, nil
	}
}

// dateOnlyHook accepts YYYY-MM-DD where a time is expected; RFC 3339 is handled further down the chain.
func dateOnlyHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != timeType || f.Kind() != reflect.String {
			return data, nil
		}
		s := strings.TrimSpace(fmt.Sprint(data))
		if d, err := time.Parse("2006-01-02", s); err == nil {
			return d, nil
		}
		return s, nil
	}
}

var formDecodeHook = mapstructure.ComposeDecodeHookFunc(
	jsonTextToSliceHook(),
	decimalHook(),
	formBoolHook(),
	dateOnlyHook(),
	mapstructure.StringToTimeHookFunc(time.RFC3339),
)

// decode maps a flat Input onto a request struct using its json tags.
// Blank strings count as absent. Failures come back keyed by field.
func decode(in Input, out interface{}) map[string]string {
	cleaned := make(map[string]interface{}, len(in))
	for k, v := range in {
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		cleaned[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       formDecodeHook,
		Result:           out,
		TagName:          "json",
		Squash:           true,
	})
	if err != nil {
		return map[string]string{"_": err.Error()}
	}
	if err := dec.Decode(cleaned); err != nil {
		return decodeFieldErrors(err)
	}
	return nil
}

func decodeFieldErrors(err error) map[string]string {
	var msErr *mapstructure.Error
	messages := []string{err.Error()}
	if errors.As(err, &msErr) {
		messages = msErr.Errors
	}
	fields := make(map[string]string, len(messages))
	for _, msg := range messages {
		fields[fieldFromMessage(msg)] = "has an invalid value"
	}
	return fields
}

// fieldFromMessage extracts the first quoted name from a mapstructure error,
// e.g. "cannot parse 'items[0].quantity' as int: ..." -> "items[0].quantity".
func fieldFromMessage(msg string) string {
	start := strings.Index(msg, "'")
	if start < 0 {
		return "_"
	}
	end := strings.Index(msg[start+1:], "'")
	if end <= 0 {
		return "_"
	}
	return msg[start+1 : start+1+end]
}

// PageQuery is embedded in listing queries.
type PageQuery struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p PageQuery) normalized() (int, int) {
	page, size := p.Page, p.PageSize
	if page < 1 {
		page = defaultPage
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func optional(s string) *string {
	return utils.NewNullString(s)
}
