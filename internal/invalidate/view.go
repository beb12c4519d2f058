package invalidate

// View names a cached presentation view that a mutation can make stale.
type View string

const (
	ViewProductList View = "products"
	ViewCategories  View = "categories"
	ViewShipping    View = "shipping_rules"
	ViewSlideshow   View = "slideshow"
	ViewHome        View = "home"
)

// ProductDetail is the detail page of one product.
func ProductDetail(slug string) View {
	return View("product:" + slug)
}

// CategoryPage is the listing of one category.
func CategoryPage(slug string) View {
	return View("category:" + slug)
}

func (v View) String() string {
	return string(v)
}

// Result carries the value of a mutation and the views it invalidated.
type Result[T any] struct {
	Value       T      `json:"value"`
	Invalidated []View `json:"invalidated"`
}

// Merge returns the union of the given view lists, preserving first-seen order.
func Merge(lists ...[]View) []View {
	seen := map[View]bool{}
	var out []View
	for _, l := range lists {
		for _, v := range l {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Strings converts views for logging and wire payloads.
func Strings(views []View) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.String()
	}
	return out
}
