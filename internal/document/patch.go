package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/ziadkadry99/onepage/internal/apperr"
)

// Op is a patch operation.
type Op string

const (
	OpReplace Op = "replace"
	OpAppend  Op = "append"
	OpRemove  Op = "remove"
)

// Patch is a path-addressed partial update. Paths use the JSON field names of
// the Document with bracketed indices, e.g. "media[0].url" or
// "tabs.overview.features[1]".
type Patch struct {
	Op    Op              `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Replace builds a replace patch for path with v encoded as JSON.
func Replace(path string, v any) Patch {
	raw, _ := json.Marshal(v)
	return Patch{Op: OpReplace, Path: path, Value: raw}
}

// Append builds a patch appending v to the slice at path.
func Append(path string, v any) Patch {
	raw, _ := json.Marshal(v)
	return Patch{Op: OpAppend, Path: path, Value: raw}
}

// Remove builds a patch deleting the indexed element at path.
func Remove(path string) Patch {
	return Patch{Op: OpRemove, Path: path}
}

// PatchError is returned when a patch cannot be applied. The target Document
// is left untouched.
type PatchError struct {
	Op     Op
	Path   string
	Reason string
	Err    error
}

func (e *PatchError) Error() string {
	msg := fmt.Sprintf("patch %s %q: %s", e.Op, e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PatchError) Unwrap() error { return e.Err }

// ErrorKind classifies PatchError for the API layer.
func (e *PatchError) ErrorKind() apperr.Kind { return apperr.KindPatchRejected }

// Apply returns a copy of d with every patch applied, in order. If any patch
// fails the returned error is a *PatchError and d is not modified.
func Apply(d Document, patches ...Patch) (Document, error) {
	next := d.Clone()
	root := reflect.ValueOf(&next).Elem()
	for _, p := range patches {
		if err := applyOne(root, p); err != nil {
			return d, err
		}
	}
	if err := next.check(); err != nil {
		last := Patch{}
		if len(patches) > 0 {
			last = patches[len(patches)-1]
		}
		return d, &PatchError{Op: last.Op, Path: last.Path, Reason: "result is invalid", Err: err}
	}
	return next, nil
}

// Apply patches d in place with copy-modify-swap semantics.
func (d *Document) Apply(patches ...Patch) error {
	next, err := Apply(*d, patches...)
	if err != nil {
		return err
	}
	*d = next
	return nil
}

// check enforces value-range invariants that the type system cannot.
func (d Document) check() error {
	if d.AppInfo.Rating < 0 || d.AppInfo.Rating > 5 {
		return fmt.Errorf("appInfo.rating %.1f out of range 0-5", d.AppInfo.Rating)
	}
	if d.AppInfo.ReviewCount < 0 {
		return fmt.Errorf("appInfo.reviewCount must be non-negative")
	}
	for i, m := range d.Media {
		if m.Type != MediaImage && m.Type != MediaVideo {
			return fmt.Errorf("media[%d].type %q must be image or video", i, m.Type)
		}
	}
	return nil
}

type segment struct {
	name    string
	index   int
	isIndex bool
}

func (s segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.name
}

func parsePath(path string) ([]segment, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	var segs []segment
	for i := 0; i < len(path); {
		switch c := path[i]; {
		case c == '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated index at offset %d", i)
			}
			n, err := strconv.Atoi(path[i+1 : i+end])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid index %q", path[i+1:i+end])
			}
			segs = append(segs, segment{index: n, isIndex: true})
			i += end + 1
		case c == '.':
			if i == 0 || i == len(path)-1 || path[i+1] == '.' || path[i+1] == '[' {
				return nil, fmt.Errorf("misplaced '.' at offset %d", i)
			}
			i++
		default:
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				if path[j] == ']' {
					return nil, fmt.Errorf("unexpected ']' at offset %d", j)
				}
				j++
			}
			if len(segs) > 0 && i > 0 && path[i-1] != '.' {
				return nil, fmt.Errorf("missing '.' before %q", path[i:j])
			}
			segs = append(segs, segment{name: path[i:j]})
			i = j
		}
	}
	if segs[0].isIndex {
		return nil, fmt.Errorf("path must start with a field name")
	}
	return segs, nil
}

func applyOne(root reflect.Value, p Patch) error {
	fail := func(reason string, err error) error {
		return &PatchError{Op: p.Op, Path: p.Path, Reason: reason, Err: err}
	}

	segs, err := parsePath(p.Path)
	if err != nil {
		return fail("malformed path", err)
	}

	switch p.Op {
	case OpReplace, "":
		target, err := resolve(root, segs)
		if err != nil {
			return fail("unresolvable path", err)
		}
		v, err := decodeValue(p.Value, target.Type())
		if err != nil {
			return fail("invalid value", err)
		}
		target.Set(v)

	case OpAppend:
		target, err := resolve(root, segs)
		if err != nil {
			return fail("unresolvable path", err)
		}
		if target.Kind() != reflect.Slice {
			return fail("append target is not a list", nil)
		}
		v, err := decodeValue(p.Value, target.Type().Elem())
		if err != nil {
			return fail("invalid value", err)
		}
		target.Set(reflect.Append(target, v))

	case OpRemove:
		last := segs[len(segs)-1]
		if !last.isIndex {
			return fail("remove requires an indexed path", nil)
		}
		list, err := resolve(root, segs[:len(segs)-1])
		if err != nil {
			return fail("unresolvable path", err)
		}
		if list.Kind() != reflect.Slice {
			return fail("remove target is not a list", nil)
		}
		if last.index >= list.Len() {
			return fail("index out of range", fmt.Errorf("index %d, length %d", last.index, list.Len()))
		}
		out := reflect.MakeSlice(list.Type(), 0, list.Len()-1)
		out = reflect.AppendSlice(out, list.Slice(0, last.index))
		out = reflect.AppendSlice(out, list.Slice(last.index+1, list.Len()))
		list.Set(out)

	default:
		return fail("unknown op", nil)
	}
	return nil
}

func resolve(v reflect.Value, segs []segment) (reflect.Value, error) {
	for _, s := range segs {
		if s.isIndex {
			if v.Kind() != reflect.Slice {
				return reflect.Value{}, fmt.Errorf("%s: not a list", s)
			}
			if s.index >= v.Len() {
				return reflect.Value{}, fmt.Errorf("%s: index out of range (length %d)", s, v.Len())
			}
			v = v.Index(s.index)
			continue
		}
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("%s: not an object", s)
		}
		f, ok := fieldByJSONName(v, s.name)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field %q", s.name)
		}
		v = f
	}
	return v, nil
}

func fieldByJSONName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		if n, _, _ := strings.Cut(tag, ","); n == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func decodeValue(raw json.RawMessage, t reflect.Type) (reflect.Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return reflect.Value{}, fmt.Errorf("value is required")
	}
	ptr := reflect.New(t)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	if dec.More() {
		return reflect.Value{}, fmt.Errorf("trailing data after value")
	}
	return ptr.Elem(), nil
}
