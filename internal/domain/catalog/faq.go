package catalog

import "github.com/samber/lo"

// FAQ is a question attached to a product or a service.
type FAQ struct {
	ID          string
	ProductID   string
	ServiceID   string
	Title       string
	Description string
	Fields      Fields
}

// FAQFromFields builds a FAQ, defaulting missing fields.
func FAQFromFields(f Fields) FAQ {
	return FAQ{
		ID:          f.String("id"),
		ProductID:   f.String("product_id"),
		ServiceID:   f.String("service_id"),
		Title:       f.String("title"),
		Description: f.String("description"),
		Fields:      f,
	}
}

// FAQsFor returns the FAQs attached to the item of the given kind and source
// id. Ids are compared in their string form.
func FAQsFor(faqs []FAQ, kind Kind, id string) []FAQ {
	if id == "" {
		return nil
	}
	return lo.Filter(faqs, func(f FAQ, _ int) bool {
		switch kind {
		case KindProduct:
			return f.ProductID == id
		case KindService:
			return f.ServiceID == id
		default:
			return false
		}
	})
}
