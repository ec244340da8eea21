package content

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/tidwall/gjson"

	"github.com/xenking/orbit-storefront/internal/domain/catalog"
)

// records decodes the array found at one of paths, trying them in order.
// A missing or non-array value yields no records; array elements that are
// not objects are skipped.
func records(body []byte, paths ...string) ([]catalog.Fields, error) {
	for _, path := range paths {
		res := gjson.GetBytes(body, path)
		if !res.IsArray() {
			continue
		}
		return decodeArray([]byte(res.Raw))
	}
	return nil, nil
}

// object decodes the object at path. A missing or non-object value yields
// empty fields.
func object(body []byte, path string) (catalog.Fields, error) {
	res := gjson.GetBytes(body, path)
	if !res.IsObject() {
		return catalog.Fields{}, nil
	}
	return decodeObject(jx.DecodeBytes([]byte(res.Raw)))
}

func decodeArray(raw []byte) ([]catalog.Fields, error) {
	var out []catalog.Fields
	d := jx.DecodeBytes(raw)
	if err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return d.Skip()
		}
		f, err := decodeObject(d)
		if err != nil {
			return err
		}
		out = append(out, f)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode records")
	}
	return out, nil
}

func decodeObject(d *jx.Decoder) (catalog.Fields, error) {
	f := catalog.Fields{}
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		v, err := d.Raw()
		if err != nil {
			return err
		}
		f[string(key)] = append(jx.Raw(nil), v...)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode object")
	}
	return f, nil
}
