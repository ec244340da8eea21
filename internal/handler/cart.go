package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/orbit-storefront/internal/domain/cart"
)

const maxCartBody = 64 << 10

// ListCart returns the cart of the email query parameter.
func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	entries, err := h.cart.List(r.Context(), email)
	if err != nil {
		fail(w, r, err)
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.ArrStart()
			for _, entry := range entries {
				e.Obj(func(e *jx.Encoder) {
					e.Field("line", func(e *jx.Encoder) { encodeLine(e, &entry.Line) })
					e.Field("product", func(e *jx.Encoder) {
						if entry.Product == nil {
							e.Null()
							return
						}
						h.encodeItem(e, *entry.Product)
					})
				})
			}
			e.ArrEnd()
		})
		e.Field("count", func(e *jx.Encoder) { e.Int(len(entries)) })
	})
	writeJSON(w, http.StatusOK, &e)
}

// AddToCart adds one unit of a product. Body: {"email": "...", "productId": ...}.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCartRequest(io.LimitReader(r.Body, maxCartBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.cart.Add(r.Context(), req.email, req.productID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeCartResult(w, res)
}

// RemoveFromCart removes one unit of the productId query parameter from the
// cart of the email query parameter.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.cart.Remove(r.Context(), q.Get("email"), q.Get("productId"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeCartResult(w, res)
}

func writeCartResult(w http.ResponseWriter, res *cart.Result) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("action", func(e *jx.Encoder) { e.Str(string(res.Action)) })
		e.Field("line", func(e *jx.Encoder) { encodeLine(e, res.Line) })
	})
	status := http.StatusOK
	if res.Action == cart.ActionAdded {
		status = http.StatusCreated
	}
	writeJSON(w, status, &e)
}

type cartRequest struct {
	email     string
	productID string
}

// decodeCartRequest reads the cart body. productId may be a JSON string or
// number.
func decodeCartRequest(body io.Reader) (cartRequest, error) {
	var req cartRequest
	d := jx.Decode(body, 512)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "email":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "email")
			}
			req.email = s
		case "productId", "product_id":
			switch d.Next() {
			case jx.Number:
				n, err := d.Num()
				if err != nil {
					return errors.Wrap(err, "productId")
				}
				req.productID = n.String()
			case jx.String:
				s, err := d.Str()
				if err != nil {
					return errors.Wrap(err, "productId")
				}
				req.productID = s
			default:
				return errors.New("productId must be a string or number")
			}
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return cartRequest{}, errors.Wrap(err, "invalid request body")
	}
	return req, nil
}
