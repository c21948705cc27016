// Package params reads and writes the digilib request parameters that
// describe a view: document, page, display size, zoom area, user regions and
// mode flags.
package params

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"digilib-viewer/pkg/geometry"
)

// Parameter names.
const (
	KeyFn = "fn"
	KeyPn = "pn"
	KeyDw = "dw"
	KeyDh = "dh"
	KeyWx = "wx"
	KeyWy = "wy"
	KeyWw = "ww"
	KeyWh = "wh"
	KeyRg = "rg"
	KeyMo = "mo"
)

// AllKeys lists every parameter in canonical order.
var AllKeys = []string{KeyFn, KeyPn, KeyDw, KeyDh, KeyWx, KeyWy, KeyWw, KeyWh, KeyRg, KeyMo}

// ErrInvalidParam is returned for parameter values that do not parse.
var ErrInvalidParam = errors.New("invalid parameter")

// ParamError reports a bad parameter value.
type ParamError struct {
	Key   string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %s=%q: %v", e.Key, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParamError) Unwrap() error {
	return e.Err
}

// Params is the view state carried in a request.
type Params struct {
	Fn   string
	Pn   int
	Dw   int
	Dh   int
	Area geometry.Rectangle
	// Rg is the packed user region list; see the regions package.
	Rg string
	Mo []string
}

// Default returns the parameters of the first page shown whole.
func Default() Params {
	return Params{Pn: 1, Area: geometry.FullArea}
}

// Parse reads parameters from a query string. Missing parameters keep their
// defaults.
func Parse(query string) (Params, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return Params{}, &ParamError{Key: "query", Value: query, Err: err}
	}
	return FromValues(v)
}

// FromValues reads parameters from decoded query values. The zoom area is
// clipped to the image and rejected when it clips to nothing.
func FromValues(v url.Values) (Params, error) {
	p := Default()
	p.Fn = v.Get(KeyFn)
	p.Rg = v.Get(KeyRg)

	var err error
	if p.Pn, err = intParam(v, KeyPn, p.Pn); err != nil {
		return Params{}, err
	}
	if p.Dw, err = intParam(v, KeyDw, 0); err != nil {
		return Params{}, err
	}
	if p.Dh, err = intParam(v, KeyDh, 0); err != nil {
		return Params{}, err
	}

	a := p.Area
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{KeyWx, &a.X}, {KeyWy, &a.Y}, {KeyWw, &a.Width}, {KeyWh, &a.Height},
	} {
		if *f.dst, err = floatParam(v, f.key, *f.dst); err != nil {
			return Params{}, err
		}
	}
	clipped := a.ClipTo(geometry.FullArea)
	if clipped.Area() <= 0 {
		return Params{}, &ParamError{Key: "wx,wy,ww,wh", Value: PackFloats(",", a.X, a.Y, a.Width, a.Height), Err: ErrInvalidParam}
	}
	p.Area = clipped

	if mo := v.Get(KeyMo); mo != "" {
		for _, m := range strings.Split(mo, ",") {
			if m = strings.TrimSpace(m); m != "" {
				p.Mo = append(p.Mo, m)
			}
		}
	}
	return p, nil
}

func intParam(v url.Values, key string, def int) (int, error) {
	s := v.Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &ParamError{Key: key, Value: s, Err: ErrInvalidParam}
	}
	return n, nil
}

func floatParam(v url.Values, key string, def float64) (float64, error) {
	s := v.Get(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParamError{Key: key, Value: s, Err: geometry.ErrInvalidInput}
	}
	return f, nil
}

// HasMode reports whether the mode flag m is set.
func (p Params) HasMode(m string) bool {
	for _, x := range p.Mo {
		if x == m {
			return true
		}
	}
	return false
}

// Values returns the given keys (all keys when none are given) as query
// values, omitting those equal to their default.
func (p Params) Values(keys ...string) url.Values {
	if len(keys) == 0 {
		keys = AllKeys
	}
	def := Default()
	v := url.Values{}
	for _, k := range keys {
		switch k {
		case KeyFn:
			setIf(v, k, p.Fn, p.Fn != "")
		case KeyPn:
			setIf(v, k, strconv.Itoa(p.Pn), p.Pn != def.Pn)
		case KeyDw:
			setIf(v, k, strconv.Itoa(p.Dw), p.Dw > 0)
		case KeyDh:
			setIf(v, k, strconv.Itoa(p.Dh), p.Dh > 0)
		case KeyWx:
			setIf(v, k, FormatFloat(p.Area.X), p.Area.X != def.Area.X)
		case KeyWy:
			setIf(v, k, FormatFloat(p.Area.Y), p.Area.Y != def.Area.Y)
		case KeyWw:
			setIf(v, k, FormatFloat(p.Area.Width), p.Area.Width != def.Area.Width)
		case KeyWh:
			setIf(v, k, FormatFloat(p.Area.Height), p.Area.Height != def.Area.Height)
		case KeyRg:
			setIf(v, k, p.Rg, p.Rg != "")
		case KeyMo:
			setIf(v, k, strings.Join(p.Mo, ","), len(p.Mo) > 0)
		}
	}
	return v
}

func setIf(v url.Values, key, value string, ok bool) {
	if ok {
		v.Set(key, value)
	}
}

// Encode returns Values(keys...) as a query string with keys in canonical
// order.
func (p Params) Encode(keys ...string) string {
	v := p.Values(keys...)
	order := make(map[string]int, len(AllKeys))
	for i, k := range AllKeys {
		order[k] = i
	}
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return order[names[i]] < order[names[j]] })

	var b strings.Builder
	for i, k := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(escape(v.Get(k)))
	}
	return b.String()
}

// escape is url.QueryEscape, keeping the separators used by rg and mo readable.
func escape(s string) string {
	s = url.QueryEscape(s)
	return strings.NewReplacer("%2F", "/", "%2C", ",").Replace(s)
}

// FormatFloat crops v to four decimals and drops trailing zeros.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// PackFloats formats vs with FormatFloat and joins them with sep.
func PackFloats(sep string, vs ...float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = FormatFloat(v)
	}
	return strings.Join(parts, sep)
}
