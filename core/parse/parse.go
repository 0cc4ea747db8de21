package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStringAs attempts to parse a string into the specified type T.
// For primitive types (string, bool, int, uint, float), it performs direct
// conversion after trimming surrounding whitespace. For complex types
// (structs, maps, slices), it attempts JSON unmarshaling and, if that fails,
// repairs the JSON string using jsonrepair and retries once.
//
// Example usage:
//
//	amount, err := ParseStringAs[int64]("3")
//
//	type Properties struct {
//	    Name string `json:"name"`
//	}
//	props, err := ParseStringAs[Properties](`{name: 'gpu-a100'}`)
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch reflect.TypeFor[T]().Kind() {
	case reflect.String:
		target.SetString(content)
		return result, nil

	case reflect.Bool:
		val, err := strconv.ParseBool(strings.TrimSpace(content))
		if err != nil {
			return result, fmt.Errorf("failed to parse content as bool: %w", err)
		}
		target.SetBool(val)
		return result, nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as float: %w", err)
		}
		target.SetFloat(val)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(strings.TrimSpace(content), 10, target.Type().Bits())
		if err != nil {
			return result, fmt.Errorf("failed to parse content as int: %w", err)
		}
		target.SetInt(val)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(strings.TrimSpace(content), 10, target.Type().Bits())
		if err != nil {
			return result, fmt.Errorf("failed to parse content as uint: %w", err)
		}
		target.SetUint(val)
		return result, nil

	default:
		err := json.Unmarshal([]byte(content), &result)
		if err == nil {
			return result, nil
		}

		repairedJSON, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
		}

		result = *new(T)
		if err := json.Unmarshal([]byte(repairedJSON), &result); err != nil {
			return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", result, err)
		}
		return result, nil
	}
}

// decodeValue decodes exactly one JSON value from text, keeping numbers as
// [json.Number] so that large integers survive untouched. When repair is set
// and the first decode fails, text is passed through jsonrepair and decoded
// again; the original error is returned if that also fails.
func decodeValue(text string, repair bool) (any, error) {
	v, err := decodeStrict(text)
	if err == nil || !repair {
		return v, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(text)
	if repairErr != nil {
		return nil, err
	}
	if v, retryErr := decodeStrict(repaired); retryErr == nil {
		return v, nil
	}
	return nil, err
}

func decodeStrict(text string) (any, error) {
	var v any
	if err := decodeStrictInto(text, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeInto is the typed form of [decodeValue]: text must hold exactly one
// JSON value, and repair only runs after a failed first decode. Whatever T
// is, text is always treated as JSON.
func decodeInto[T any](text string, repair bool) (T, error) {
	var result T
	err := decodeStrictInto(text, &result)
	if err == nil || !repair {
		return result, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(text)
	if repairErr != nil {
		return *new(T), err
	}
	result = *new(T)
	if retryErr := decodeStrictInto(repaired, &result); retryErr != nil {
		return *new(T), err
	}
	return result, nil
}

func decodeStrictInto(text string, target any) error {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	if err := dec.Decode(target); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
	}
	return nil
}
