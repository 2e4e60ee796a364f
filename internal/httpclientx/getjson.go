package httpclientx

//
// getjson.go - GET a JSON response.
//

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/pia-wg/pia-wg/internal/model"
)

// ErrIsNil indicates that the server returned a literal JSON "null".
var ErrIsNil = errors.New("httpx: nil map, pointer, or slice")

// GetJSON sends a GET request and reads a JSON response.
//
// Arguments:
//
// - ctx is the cancellable context;
//
// - epnt is the HTTP [*Endpoint] to use;
//
// - config contains the config.
//
// This function either returns an error or a valid Output. Errors
// decoding the body match [model.ErrParse].
func GetJSON[Output any](ctx context.Context, epnt *Endpoint, config *Config) (Output, error) {
	var output Output

	// read the raw body
	rawrespbody, err := GetRaw(ctx, epnt, config)
	if err != nil {
		return output, err
	}

	// parse the response body as JSON
	if err := json.Unmarshal(rawrespbody, &output); err != nil {
		var zero Output
		return zero, fmt.Errorf("%w: %s", model.ErrParse, err)
	}

	// make sure we're not processing a literal JSON "null"
	switch rv := reflect.ValueOf(output); rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice:
		if rv.IsNil() {
			var zero Output
			return zero, fmt.Errorf("%w: %w", model.ErrParse, ErrIsNil)
		}
	}

	return output, nil
}
